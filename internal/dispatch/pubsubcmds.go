package dispatch

import (
	"strconv"

	"github.com/nimbusdb/nimbusdb/internal/command"
	"github.com/nimbusdb/nimbusdb/internal/session"
)

// dispatchPubSub implements SUBSCRIBE/UNSUBSCRIBE/PSUBSCRIBE/PUNSUBSCRIBE/
// PUBLISH/PUBSUB. The subscribe family pushes its acknowledgement frames
// straight to the client's reply sink and yields NoReply (spec.md §4.3:
// "These do not return a normal reply ... the dispatcher instead pushes
// one frame per channel directly onto the client's connection").
func (d *Dispatcher) dispatchPubSub(c *session.Client, cmd command.Command) Response {
	ps := d.store.PubSub()
	switch cmd.Name {
	case "SUBSCRIBE":
		sub := c.Subscriber(ps)
		for i := 1; i < cmd.Arity(); i++ {
			ch := cmd.Str(i)
			ps.Subscribe(sub, ch)
			total := c.TrackChannel(ch)
			c.ReplySink.Push("subscribe", ch, strconv.Itoa(total))
		}
		return NoReply()

	case "UNSUBSCRIBE":
		sub := c.Subscriber(ps)
		channels := c.Channels()
		if cmd.Arity() > 1 {
			channels = make([]string, cmd.Arity()-1)
			for i := 1; i < cmd.Arity(); i++ {
				channels[i-1] = cmd.Str(i)
			}
		}
		if len(channels) == 0 {
			c.ReplySink.Push("unsubscribe", "", strconv.Itoa(c.SubscriptionCount()))
			return NoReply()
		}
		for _, ch := range channels {
			ps.Unsubscribe(sub, ch)
			total := c.UntrackChannel(ch)
			c.ReplySink.Push("unsubscribe", ch, strconv.Itoa(total))
		}
		return NoReply()

	case "PSUBSCRIBE":
		sub := c.Subscriber(ps)
		for i := 1; i < cmd.Arity(); i++ {
			pat := cmd.Str(i)
			ps.PSubscribe(sub, pat)
			total := c.TrackPattern(pat)
			c.ReplySink.Push("psubscribe", pat, strconv.Itoa(total))
		}
		return NoReply()

	case "PUNSUBSCRIBE":
		sub := c.Subscriber(ps)
		patterns := c.Patterns()
		if cmd.Arity() > 1 {
			patterns = make([]string, cmd.Arity()-1)
			for i := 1; i < cmd.Arity(); i++ {
				patterns[i-1] = cmd.Str(i)
			}
		}
		if len(patterns) == 0 {
			c.ReplySink.Push("punsubscribe", "", strconv.Itoa(c.SubscriptionCount()))
			return NoReply()
		}
		for _, pat := range patterns {
			ps.PUnsubscribe(sub, pat)
			total := c.UntrackPattern(pat)
			c.ReplySink.Push("punsubscribe", pat, strconv.Itoa(total))
		}
		return NoReply()

	case "PUBLISH":
		n := ps.Publish(cmd.Str(1), cmd.Arg(2))
		return Int(int64(n))

	case "PUBSUB":
		return d.cmdPubSubIntrospect(ps, cmd)
	}
	return Errf("ERR unknown command '%s'", cmd.Name)
}

func (d *Dispatcher) cmdPubSubIntrospect(ps pubsubIntrospector, cmd command.Command) Response {
	if cmd.Arity() < 2 {
		return Errf("ERR wrong number of arguments for 'pubsub' command")
	}
	switch cmd.Str(1) {
	case "CHANNELS":
		filter := ""
		if cmd.Arity() > 2 {
			filter = cmd.Str(2)
		}
		return BulkStringsFromStrings(ps.Channels(filter))
	case "NUMSUB":
		children := make([]Response, 0, (cmd.Arity()-2)*2)
		for i := 2; i < cmd.Arity(); i++ {
			ch := cmd.Str(i)
			children = append(children, BulkString(ch), Int(int64(ps.NumSub(ch))))
		}
		return Array(children...)
	case "NUMPAT":
		return Int(int64(ps.NumPat()))
	}
	return Errf("ERR Unknown PUBSUB subcommand or wrong number of arguments")
}

// pubsubIntrospector narrows *store.PubSub to the read-only surface PUBSUB
// needs, kept local to this file so it doubles as test seam documentation.
type pubsubIntrospector interface {
	Channels(filter string) []string
	NumSub(channel string) int
	NumPat() int
}
