package store

import "testing"

func TestPublishDeliversToDirectSubscriber(t *testing.T) {
	p := newPubSub()
	sub := p.NewSubscriber()
	p.Subscribe(sub, "news")

	n := p.Publish("news", []byte("hello"))
	if n != 1 {
		t.Fatalf("Publish receiver count = %d, want 1", n)
	}
	msg := <-sub.C()
	if msg.Channel != "news" || string(msg.Payload) != "hello" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestPSubscribeMatchesPattern(t *testing.T) {
	p := newPubSub()
	sub := p.NewSubscriber()
	p.PSubscribe(sub, "news.*")

	n := p.Publish("news.sports", []byte("goal"))
	if n != 1 {
		t.Fatalf("Publish receiver count = %d, want 1", n)
	}
	msg := <-sub.C()
	if msg.Pattern != "news.*" || msg.Channel != "news.sports" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestUnsubscribeAllRemovesEverySubscription(t *testing.T) {
	p := newPubSub()
	sub := p.NewSubscriber()
	p.Subscribe(sub, "a")
	p.PSubscribe(sub, "b.*")
	p.UnsubscribeAll(sub)

	if n := p.Publish("a", []byte("x")); n != 0 {
		t.Fatalf("expected no receivers after UnsubscribeAll, got %d", n)
	}
	if n := p.Publish("b.c", []byte("x")); n != 0 {
		t.Fatalf("expected no pattern receivers after UnsubscribeAll, got %d", n)
	}
}

func TestNumSubAndNumPat(t *testing.T) {
	p := newPubSub()
	a, b := p.NewSubscriber(), p.NewSubscriber()
	p.Subscribe(a, "ch")
	p.Subscribe(b, "ch")
	p.PSubscribe(a, "p.*")

	if p.NumSub("ch") != 2 {
		t.Fatalf("NumSub = %d, want 2", p.NumSub("ch"))
	}
	if p.NumPat() != 1 {
		t.Fatalf("NumPat = %d, want 1", p.NumPat())
	}
}
