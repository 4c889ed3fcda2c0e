package store

import (
	"sync"

	"github.com/nimbusdb/nimbusdb/internal/pattern"
)

// Message is one PUBLISH delivery, fanned out to every matching
// subscriber. Pattern is empty for a direct SUBSCRIBE match and carries
// the matched pattern for a PSUBSCRIBE match (mirroring the pmessage vs.
// message reply kinds).
type Message struct {
	Channel string
	Pattern string
	Payload []byte
}

// Subscriber is a client's pub/sub mailbox. Buffered so Publish never
// blocks on a slow reader; a full mailbox drops the oldest pending
// message rather than stall the publisher, since this store has no
// backpressure channel back to a TCP peer (that lives in the external
// internal/resp collaborator).
type Subscriber struct {
	ch chan Message
}

func newSubscriber() *Subscriber {
	return &Subscriber{ch: make(chan Message, 256)}
}

// C returns the channel new messages arrive on.
func (s *Subscriber) C() <-chan Message { return s.ch }

func (s *Subscriber) deliver(m Message) {
	select {
	case s.ch <- m:
	default:
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- m:
		default:
		}
	}
}

// PubSub is the server-wide channel/pattern subscription table (pub/sub
// has no SELECT-scoping in the wire protocol, unlike the keyspace).
type PubSub struct {
	mu       sync.RWMutex
	channels map[string]map[*Subscriber]struct{}
	patterns map[string]map[*Subscriber]struct{}
}

func newPubSub() *PubSub {
	return &PubSub{
		channels: make(map[string]map[*Subscriber]struct{}),
		patterns: make(map[string]map[*Subscriber]struct{}),
	}
}

// NewSubscriber allocates a mailbox for a client entering subscribe mode.
func (p *PubSub) NewSubscriber() *Subscriber { return newSubscriber() }

// Subscribe enrolls sub in channel, returning the new subscriber count for
// that channel.
func (p *PubSub) Subscribe(sub *Subscriber, channel string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.channels[channel]
	if !ok {
		set = make(map[*Subscriber]struct{})
		p.channels[channel] = set
	}
	set[sub] = struct{}{}
	return len(set)
}

// Unsubscribe removes sub from channel, returning the remaining count.
func (p *PubSub) Unsubscribe(sub *Subscriber, channel string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.channels[channel]
	if !ok {
		return 0
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(p.channels, channel)
		return 0
	}
	return len(set)
}

// PSubscribe enrolls sub in pattern, returning the new subscriber count.
func (p *PubSub) PSubscribe(sub *Subscriber, pat string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.patterns[pat]
	if !ok {
		set = make(map[*Subscriber]struct{})
		p.patterns[pat] = set
	}
	set[sub] = struct{}{}
	return len(set)
}

// PUnsubscribe removes sub from pattern, returning the remaining count.
func (p *PubSub) PUnsubscribe(sub *Subscriber, pat string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.patterns[pat]
	if !ok {
		return 0
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(p.patterns, pat)
		return 0
	}
	return len(set)
}

// UnsubscribeAll tears down every channel/pattern registration for sub,
// called when a client disconnects.
func (p *PubSub) UnsubscribeAll(sub *Subscriber) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ch, set := range p.channels {
		delete(set, sub)
		if len(set) == 0 {
			delete(p.channels, ch)
		}
	}
	for pat, set := range p.patterns {
		delete(set, sub)
		if len(set) == 0 {
			delete(p.patterns, pat)
		}
	}
}

// Publish fans payload out to every direct subscriber of channel and every
// pattern subscriber whose pattern matches it, returning the total number
// of receiving clients (PUBLISH's return value).
func (p *PubSub) Publish(channel string, payload []byte) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for sub := range p.channels[channel] {
		sub.deliver(Message{Channel: channel, Payload: payload})
		n++
	}
	for pat, set := range p.patterns {
		if !pattern.Match(pat, channel) {
			continue
		}
		for sub := range set {
			sub.deliver(Message{Channel: channel, Pattern: pat, Payload: payload})
			n++
		}
	}
	return n
}

// Channels lists active channels, optionally filtered by glob pattern
// (PUBSUB CHANNELS [pattern]).
func (p *PubSub) Channels(filter string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.channels))
	for ch := range p.channels {
		if filter == "" || pattern.Match(filter, ch) {
			out = append(out, ch)
		}
	}
	return out
}

// NumSub returns the direct-subscriber count for channel (PUBSUB NUMSUB).
func (p *PubSub) NumSub(channel string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.channels[channel])
}

// NumPat returns the total number of registered patterns (PUBSUB NUMPAT).
func (p *PubSub) NumPat() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.patterns)
}
