package core

import (
	"context"
	"testing"
	"time"
)

func TestPairWaitingUserWithListener(t *testing.T) {
	d := newDriver()

	u1 := d.connect("u1")
	d.join(u1, RoleUser)
	noEvent(t, u1) // queue empty, enqueued silently

	l1 := d.connect("l1")
	d.authenticate(l1, "Sarah")
	if ev := nextEvent(t, l1); ev.Kind != EventLoginSuccess || ev.Name != "Sarah" {
		t.Fatalf("unexpected login event: %+v", ev)
	}

	d.join(l1, RoleListener)

	roomL := mustPaired(t, l1, RoleListener)
	roomU := mustPaired(t, u1, RoleUser)
	if roomL != roomU {
		t.Fatalf("sides got different rooms: %q vs %q", roomL, roomU)
	}
}

func TestPairWaitingListenerWithUser(t *testing.T) {
	d := newDriver()

	l1 := d.connect("l1")
	d.authenticate(l1, "Mike")
	nextEvent(t, l1) // login_success
	d.join(l1, RoleListener)
	noEvent(t, l1)

	u1 := d.connect("u1")
	d.join(u1, RoleUser)

	mustPaired(t, l1, RoleListener)
	mustPaired(t, u1, RoleUser)
}

func TestQueueIsFIFO(t *testing.T) {
	d := newDriver()

	users := []*Client{d.connect("u1"), d.connect("u2"), d.connect("u3")}
	for _, u := range users {
		d.join(u, RoleUser)
	}

	for i, u := range users {
		l := d.connect("l" + string(rune('1'+i)))
		d.authenticate(l, "listener")
		nextEvent(t, l) // login_success
		d.join(l, RoleListener)

		room := mustPaired(t, l, RoleListener)
		got := mustPaired(t, u, RoleUser)
		if got != room {
			t.Fatalf("listener %d paired with wrong user: room %q vs %q", i, room, got)
		}
	}
}

func TestListenerJoinRequiresAuthentication(t *testing.T) {
	d := newDriver()

	imposter := d.connect("imposter")
	d.join(imposter, RoleListener)
	mustErrorCode(t, imposter, ErrCodeAuthRequired)

	// The rejected join must not have touched the listener queue: the next
	// user pairs with a real listener, not the imposter.
	l1 := d.connect("l1")
	d.authenticate(l1, "Sarah")
	nextEvent(t, l1)
	d.join(l1, RoleListener)

	u1 := d.connect("u1")
	d.join(u1, RoleUser)

	mustPaired(t, l1, RoleListener)
	mustPaired(t, u1, RoleUser)
	noEvent(t, imposter)
}

func TestDuplicateJoinCreatesNoDuplicateQueueEntry(t *testing.T) {
	d := newDriver()

	u1 := d.connect("u1")
	d.join(u1, RoleUser)
	d.join(u1, RoleUser) // duplicate, deduped silently
	noEvent(t, u1)

	l1 := d.connect("l1")
	d.authenticate(l1, "Sarah")
	nextEvent(t, l1)
	d.join(l1, RoleListener)
	mustPaired(t, l1, RoleListener)
	mustPaired(t, u1, RoleUser)

	// A second listener must wait: u1's duplicate entry must not pair it twice.
	l2 := d.connect("l2")
	d.authenticate(l2, "Mike")
	nextEvent(t, l2)
	d.join(l2, RoleListener)
	noEvent(t, l2)
	noEvent(t, u1)
}

func TestJoinWhileInRoomIsRejected(t *testing.T) {
	d := newDriver()

	u1 := d.connect("u1")
	d.join(u1, RoleUser)
	l1 := d.connect("l1")
	d.authenticate(l1, "Sarah")
	nextEvent(t, l1)
	d.join(l1, RoleListener)
	mustPaired(t, l1, RoleListener)
	mustPaired(t, u1, RoleUser)

	d.join(u1, RoleUser)
	mustErrorCode(t, u1, ErrCodeAlreadyPaired)
	noEvent(t, l1)
}

func TestUnknownRoleIsRejected(t *testing.T) {
	d := newDriver()

	u1 := d.connect("u1")
	d.join(u1, Role("admin"))
	mustErrorCode(t, u1, ErrCodeBadRequest)
}

func TestWaitingListenerCanSwitchToUserRole(t *testing.T) {
	d := newDriver()

	l1 := d.connect("l1")
	d.authenticate(l1, "Sarah")
	nextEvent(t, l1)
	d.join(l1, RoleListener)
	noEvent(t, l1)

	// Changing sides removes the old queue entry.
	d.join(l1, RoleUser)
	noEvent(t, l1)

	l2 := d.connect("l2")
	d.authenticate(l2, "Mike")
	nextEvent(t, l2)
	d.join(l2, RoleListener)

	mustPaired(t, l2, RoleListener)
	mustPaired(t, l1, RoleUser)
}

func TestRelayReachesOnlyTheRoomPartner(t *testing.T) {
	d := newDriver()

	// Two independent pairs.
	u1, u2 := d.connect("u1"), d.connect("u2")
	d.join(u1, RoleUser)
	d.join(u2, RoleUser)

	l1, l2 := d.connect("l1"), d.connect("l2")
	d.authenticate(l1, "Sarah")
	nextEvent(t, l1)
	d.join(l1, RoleListener)
	room1 := mustPaired(t, l1, RoleListener)
	mustPaired(t, u1, RoleUser)

	d.authenticate(l2, "Mike")
	nextEvent(t, l2)
	d.join(l2, RoleListener)
	mustPaired(t, l2, RoleListener)
	mustPaired(t, u2, RoleUser)

	d.send(u1, room1, "hi")

	ev := nextEvent(t, l1)
	if ev.Kind != EventMessage || ev.Text != "hi" || ev.Room != room1 {
		t.Fatalf("unexpected relay event: %+v", ev)
	}
	noEvent(t, u1) // never echoed to sender
	noEvent(t, l2)
	noEvent(t, u2)
}

func TestRelayFromNonMemberIsDroppedSilently(t *testing.T) {
	d := newDriver()

	u1 := d.connect("u1")
	d.join(u1, RoleUser)
	l1 := d.connect("l1")
	d.authenticate(l1, "Sarah")
	nextEvent(t, l1)
	d.join(l1, RoleListener)
	room := mustPaired(t, l1, RoleListener)
	mustPaired(t, u1, RoleUser)

	outsider := d.connect("outsider")
	d.send(outsider, room, "let me in")

	// Dropped without a response: answering would confirm the room exists.
	noEvent(t, outsider)
	noEvent(t, l1)
	noEvent(t, u1)

	d.send(u1, "no-such-room", "hello?")
	noEvent(t, u1)
	noEvent(t, l1)
}

func TestDisconnectNotifiesPartnerAndDestroysRoom(t *testing.T) {
	d := newDriver()

	u1 := d.connect("u1")
	d.join(u1, RoleUser)
	l1 := d.connect("l1")
	d.authenticate(l1, "Sarah")
	nextEvent(t, l1)
	d.join(l1, RoleListener)
	room := mustPaired(t, l1, RoleListener)
	mustPaired(t, u1, RoleUser)

	d.disconnect(l1)

	ev := nextEvent(t, u1)
	if ev.Kind != EventPartnerDisconnected || ev.Room != room {
		t.Fatalf("unexpected partner notice: %+v", ev)
	}
	noEvent(t, u1) // exactly one notification

	// The room is gone: sending into it reaches nobody.
	d.send(u1, room, "are you there?")
	noEvent(t, u1)

	// And u1 is free to queue again.
	d.join(u1, RoleUser)
	l2 := d.connect("l2")
	d.authenticate(l2, "Mike")
	nextEvent(t, l2)
	d.join(l2, RoleListener)
	mustPaired(t, l2, RoleListener)
	mustPaired(t, u1, RoleUser)
}

func TestDisconnectWhileWaitingLeavesQueue(t *testing.T) {
	d := newDriver()

	u1 := d.connect("u1")
	d.join(u1, RoleUser)
	d.disconnect(u1)

	l1 := d.connect("l1")
	d.authenticate(l1, "Sarah")
	nextEvent(t, l1)
	d.join(l1, RoleListener)
	noEvent(t, l1) // nobody waiting anymore

	u2 := d.connect("u2")
	d.join(u2, RoleUser)
	mustPaired(t, l1, RoleListener)
	mustPaired(t, u2, RoleUser)
}

func TestDuplicateDisconnectIsBenign(t *testing.T) {
	d := newDriver()

	u1 := d.connect("u1")
	d.join(u1, RoleUser)
	d.disconnect(u1)
	d.disconnect(u1) // transports may deliver disconnects twice
}

func TestAuthenticateIsIdempotent(t *testing.T) {
	d := newDriver()

	l1 := d.connect("l1")
	d.authenticate(l1, "Sarah")
	nextEvent(t, l1)
	d.authenticate(l1, "Sarah")
	if ev := nextEvent(t, l1); ev.Kind != EventLoginSuccess {
		t.Fatalf("expected login_success on re-auth, got %+v", ev)
	}

	d.join(l1, RoleListener)
	noEvent(t, l1)
}

// TestRunLoopEndToEnd drives the hub through its public API: registered
// clients, pumped command channels, disconnect via Close. The pump delivers
// the disconnect after the commands that preceded it, so the final relay
// attempt below observes the destroyed room.
func TestRunLoopEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	user := NewClient("user")
	listener := NewClient("listener")
	hub.RegisterClient(user)
	hub.RegisterClient(listener)

	user.Commands <- &Command{Kind: CommandJoinQueue, Role: RoleUser}
	listener.Commands <- &Command{Kind: CommandAuthenticate, Identity: &Identity{ID: 1, Name: "Sarah"}}
	mustEvent(t, listener.Events, EventLoginSuccess)

	listener.Commands <- &Command{Kind: CommandJoinQueue, Role: RoleListener}

	pairedL := mustEvent(t, listener.Events, EventPaired)
	pairedU := mustEvent(t, user.Events, EventPaired)
	if pairedL.Role != RoleListener || pairedU.Role != RoleUser {
		t.Fatalf("roles wrong: listener=%q user=%q", pairedL.Role, pairedU.Role)
	}
	if pairedL.Room != pairedU.Room {
		t.Fatalf("room mismatch: %q vs %q", pairedL.Room, pairedU.Room)
	}

	user.Commands <- &Command{Kind: CommandSendMessage, Room: pairedU.Room, Text: "hi"}
	msg := mustEvent(t, listener.Events, EventMessage)
	if msg.Text != "hi" {
		t.Fatalf("unexpected message: %+v", msg)
	}

	listener.Close()
	notice := mustEvent(t, user.Events, EventPartnerDisconnected)
	if notice.Room != pairedU.Room {
		t.Fatalf("unexpected disconnect notice: %+v", notice)
	}
}

// TestShutdownReleasesPumps checks that once Run returns, registered pumps
// and late RegisterClient calls give up instead of blocking on the inbox.
func TestShutdownReleasesPumps(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())

	runDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(runDone)
	}()

	c := NewClient("c")
	hub.RegisterClient(c)

	cancel()
	select {
	case <-runDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}

	// Fill the inbox so a blocked sender would actually block.
	for i := 0; i < cap(hub.inbox); i++ {
		select {
		case hub.inbox <- envelope{kind: envelopeDisconnect, client: c}:
		default:
		}
	}

	released := make(chan struct{})
	go func() {
		hub.RegisterClient(NewClient("late"))
		c.Close() // pump drains Commands and must exit, not block
		close(released)
	}()

	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("sender blocked after shutdown")
	}
}
