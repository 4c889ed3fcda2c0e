package session

import "errors"

// ErrNestedMulti mirrors redis-server's "MULTI calls can not be nested"
// error text.
var ErrNestedMulti = errors.New("ERR MULTI calls can not be nested")
