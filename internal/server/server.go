// Package server implements the TCP accept loop and per-connection
// command loop spec.md §6 places outside the core: "the actual TCP
// listener, connection lifecycle, and RESP protocol encoding/decoding
// belong to a server layer built around the core, not the core itself."
// It wires internal/resp's framer to internal/dispatch's Execute and
// internal/store's Pub/Sub mailbox, and supervises that listener
// alongside the admin HTTP surface.
package server

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nimbusdb/nimbusdb/internal/dispatch"
	"github.com/nimbusdb/nimbusdb/internal/resp"
	"github.com/nimbusdb/nimbusdb/internal/session"
	"github.com/nimbusdb/nimbusdb/internal/store"
)

// Server accepts RESP2 connections and routes each parsed command to a
// shared Dispatcher, the way the teacher's http.Server routes requests
// to a shared gin.Engine.
type Server struct {
	log        *zap.Logger
	store      *store.Store
	dispatcher *dispatch.Dispatcher

	closeOnce sync.Once
	closeErr  error

	mu    sync.Mutex
	ln    net.Listener
	conns map[net.Conn]struct{}
}

// New builds a Server bound to st and d; Serve performs the actual listen.
func New(st *store.Store, d *dispatch.Dispatcher, log *zap.Logger) *Server {
	return &Server{
		log:        log.Named("server"),
		store:      st,
		dispatcher: d,
		conns:      make(map[net.Conn]struct{}),
	}
}

// Serve listens on addr and accepts connections until ctx is canceled or
// a non-temporary Accept error occurs. It returns nil on a clean
// ctx-driven shutdown.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.log.Info("accepting RESP connections", zap.String("addr", addr))

	go func() {
		<-ctx.Done()
		s.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.log.Warn("temporary accept error", zap.Error(err))
				continue
			}
			return err
		}
		s.trackConn(conn)
		go s.handleConn(conn)
	}
}

func (s *Server) trackConn(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrackConn(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// handleConn drives one client's request/response loop plus a second
// goroutine delivering any Pub/Sub messages that arrive for it, the two
// producers Writer.Push serializes against each other.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	defer s.untrackConn(conn)

	w := resp.NewWriter(conn)
	c := session.New(w)
	r := resp.NewReader(conn)

	sub := c.Subscriber(s.store.PubSub())
	defer s.store.PubSub().UnsubscribeAll(sub)
	done := make(chan struct{})
	defer close(done)
	go s.deliverPubSub(w, sub, done)

	for {
		cmd, err := r.ReadCommand()
		if err != nil {
			return
		}
		if cmd.Arity() == 0 {
			continue
		}
		if strings.EqualFold(cmd.Name, "QUIT") {
			w.WriteResponse(dispatch.OK())
			return
		}
		reply := s.dispatcher.Execute(c, cmd)
		if err := w.WriteResponse(reply); err != nil {
			return
		}
	}
}

// deliverPubSub forwards every message the client's mailbox receives as
// a "message"/"pmessage" push, until the connection's handleConn returns.
func (s *Server) deliverPubSub(w *resp.Writer, sub *store.Subscriber, done <-chan struct{}) {
	for {
		select {
		case m, ok := <-sub.C():
			if !ok {
				return
			}
			if m.Pattern != "" {
				w.Push("pmessage", m.Pattern, m.Channel, string(m.Payload))
			} else {
				w.Push("message", m.Channel, string(m.Payload))
			}
		case <-done:
			return
		}
	}
}

// Close stops accepting new connections and closes every tracked one.
// Safe to call more than once — both the ctx-driven shutdown watcher in
// Serve and an external caller may reach it.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.ln != nil {
			s.closeErr = s.ln.Close()
		}
		for conn := range s.conns {
			s.closeErr = multierr.Append(s.closeErr, conn.Close())
		}
	})
	return s.closeErr
}

// Supervisor runs the RESP server and an arbitrary set of auxiliary
// goroutines (the admin HTTP surface included) under one errgroup, so a
// fatal error in either tears down both — mirroring how the teacher's
// single http.Server.ListenAndServe call is the one thing main blocks on,
// generalized to more than one listener.
type Supervisor struct {
	g   *errgroup.Group
	ctx context.Context
}

// NewSupervisor derives a cancelable group from parent; canceling ctx (or
// any supervised function returning an error) shuts down every member.
func NewSupervisor(parent context.Context) (*Supervisor, context.Context) {
	g, ctx := errgroup.WithContext(parent)
	return &Supervisor{g: g, ctx: ctx}, ctx
}

// Go adds fn to the supervised set.
func (sv *Supervisor) Go(fn func() error) { sv.g.Go(fn) }

// Wait blocks until every supervised function has returned, and reports
// the first non-nil error (multierr.Combine collapses a nil-only set to
// nil, matching errgroup.Wait's own contract).
func (sv *Supervisor) Wait() error {
	return multierr.Combine(sv.g.Wait())
}
