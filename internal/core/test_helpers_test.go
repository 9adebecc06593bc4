package core

import (
	"testing"
	"time"
)

// driver exercises the hub state machine synchronously, the same way the
// Run loop does: one envelope at a time. Events land in the client buffers
// and are drained with nextEvent/noEvent.
type driver struct {
	h      *Hub
	nextID int64
}

func newDriver() *driver {
	return &driver{h: NewHub(nil)}
}

func (d *driver) connect(id string) *Client {
	c := NewClient(id)
	d.h.handle(envelope{kind: envelopeRegister, client: c})
	return c
}

func (d *driver) authenticate(c *Client, name string) {
	d.nextID++
	d.h.handle(envelope{kind: envelopeCommand, client: c, cmd: &Command{
		Kind:     CommandAuthenticate,
		Identity: &Identity{ID: d.nextID, Name: name},
	}})
}

func (d *driver) join(c *Client, role Role) {
	d.h.handle(envelope{kind: envelopeCommand, client: c, cmd: &Command{
		Kind: CommandJoinQueue,
		Role: role,
	}})
}

func (d *driver) send(c *Client, room, text string) {
	d.h.handle(envelope{kind: envelopeCommand, client: c, cmd: &Command{
		Kind: CommandSendMessage,
		Room: room,
		Text: text,
	}})
}

func (d *driver) disconnect(c *Client) {
	d.h.handle(envelope{kind: envelopeDisconnect, client: c})
}

// nextEvent pops the oldest buffered event or fails the test.
func nextEvent(t *testing.T, c *Client) *Event {
	t.Helper()

	select {
	case ev, ok := <-c.Events:
		if !ok {
			t.Fatalf("events channel for %s closed", c.ID)
		}
		return ev
	default:
		t.Fatalf("expected an event for %s, got none", c.ID)
	}
	return nil
}

// noEvent asserts the client's event buffer is empty.
func noEvent(t *testing.T, c *Client) {
	t.Helper()

	select {
	case ev, ok := <-c.Events:
		if ok {
			t.Fatalf("unexpected event for %s: %+v", c.ID, ev)
		}
	default:
	}
}

// mustPaired reads the next event and asserts it is a pairing with the
// given role, returning the room id.
func mustPaired(t *testing.T, c *Client, role Role) string {
	t.Helper()

	ev := nextEvent(t, c)
	if ev.Kind != EventPaired {
		t.Fatalf("expected paired event for %s, got %+v", c.ID, ev)
	}
	if ev.Role != role {
		t.Fatalf("expected role %q for %s, got %q", role, c.ID, ev.Role)
	}
	if ev.Room == "" {
		t.Fatalf("paired event for %s carries no room id", c.ID)
	}
	return ev.Room
}

// mustErrorCode reads the next event and asserts it is a domain error with
// the given code.
func mustErrorCode(t *testing.T, c *Client, code string) {
	t.Helper()

	ev := nextEvent(t, c)
	if ev.Kind != EventError || ev.Error == nil {
		t.Fatalf("expected error event for %s, got %+v", c.ID, ev)
	}
	if ev.Error.Code != code {
		t.Fatalf("expected error code %q for %s, got %q", code, c.ID, ev.Error.Code)
	}
}

// mustEvent waits for an event of the given kind on a live hub.
func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("events channel closed while waiting for kind %v", kind)
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}
