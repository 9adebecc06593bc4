package core

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// session is the per-connection state tracked by the hub: whether the
// connection authenticated as a listener and which room, if any, it is in.
// A connection is never in a waiting queue and a room at the same time.
type session struct {
	client   *Client
	identity *Identity
	room     string // empty unless paired
}

type envelopeKind int

const (
	envelopeRegister envelopeKind = iota
	envelopeDisconnect
	envelopeCommand
)

type envelope struct {
	kind   envelopeKind
	client *Client
	cmd    *Command
}

// Hub owns all matchmaking state: sessions, the two waiting queues, and the
// room table. A single goroutine (Run) drains the inbox and mutates state,
// so every pairing and every disconnect cleanup is one atomic unit. Nothing
// outside this file touches these maps.
type Hub struct {
	log   *zerolog.Logger
	inbox chan envelope
	done  chan struct{} // closed when Run exits; releases blocked senders

	sessions         map[string]*session
	waitingListeners waitQueue
	waitingUsers     waitQueue
	rooms            map[string]*room
}

// NewHub creates a hub. A nil logger disables logging.
func NewHub(logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		log:      logger,
		inbox:    make(chan envelope, 64),
		done:     make(chan struct{}),
		sessions: make(map[string]*session),
		rooms:    make(map[string]*room),
	}
}

// RegisterClient announces a new connection and starts pumping its commands
// into the hub. When the client is closed, the pump delivers the disconnect
// after any commands already sent, so a disconnect can never overtake the
// connection's own traffic.
func (h *Hub) RegisterClient(c *Client) {
	if !h.deliver(envelope{kind: envelopeRegister, client: c}) {
		return
	}
	go func() {
		for cmd := range c.Commands {
			if !h.deliver(envelope{kind: envelopeCommand, client: c, cmd: cmd}) {
				return
			}
		}
		h.deliver(envelope{kind: envelopeDisconnect, client: c})
	}()
}

// deliver enqueues an envelope, giving up once the hub has shut down so
// pump goroutines never block on a drained inbox.
func (h *Hub) deliver(env envelope) bool {
	select {
	case h.inbox <- env:
		return true
	case <-h.done:
		return false
	}
}

// Run processes commands until the context is canceled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-h.inbox:
			h.handle(env)
		}
	}
}

func (h *Hub) handle(env envelope) {
	switch env.kind {
	case envelopeRegister:
		h.handleRegister(env.client)
	case envelopeDisconnect:
		h.handleDisconnect(env.client.ID)
	case envelopeCommand:
		s := h.sessions[env.client.ID]
		if s == nil {
			h.log.Debug().Str("client_id", env.client.ID).Msg("command from unknown connection dropped")
			return
		}
		switch env.cmd.Kind {
		case CommandAuthenticate:
			h.handleAuthenticate(s, env.cmd.Identity)
		case CommandJoinQueue:
			h.handleJoinQueue(s, env.cmd.Role)
		case CommandSendMessage:
			h.handleSendMessage(s, env.cmd.Room, env.cmd.Text)
		}
	}
}

func (h *Hub) handleRegister(c *Client) {
	if _, exists := h.sessions[c.ID]; exists {
		h.log.Warn().Str("client_id", c.ID).Msg("duplicate register ignored")
		return
	}
	h.sessions[c.ID] = &session{client: c}
	h.log.Debug().Str("client_id", c.ID).Msg("client connected")
}

// handleAuthenticate records a verified listener identity. Idempotent; a
// re-login simply overwrites the identity. The success event is emitted
// here rather than by the transport so that any join_queue sent after the
// client sees login_success is guaranteed to observe the authenticated state.
func (h *Hub) handleAuthenticate(s *session, identity *Identity) {
	if identity == nil {
		return
	}
	s.identity = identity
	h.emit(s.client, &Event{Kind: EventLoginSuccess, Name: identity.Name})
	h.log.Info().Str("client_id", s.client.ID).Str("listener", identity.Name).Msg("listener authenticated")
}

// handleJoinQueue pairs the connection with the oldest opposite-role waiter,
// or enqueues it. Strict FIFO, no preference matching.
func (h *Hub) handleJoinQueue(s *session, role Role) {
	if s.room != "" {
		h.emitError(s.client, coreError(ErrCodeAlreadyPaired, "already in a conversation"))
		return
	}

	switch role {
	case RoleListener:
		if s.identity == nil {
			h.emitError(s.client, coreError(ErrCodeAuthRequired, "authentication required"))
			return
		}
		// A listener that was waiting as a user switches sides cleanly.
		h.waitingUsers.remove(s.client.ID)
		if partner := h.popWaiting(&h.waitingUsers); partner != nil {
			h.pair(s, partner)
			return
		}
		if !h.waitingListeners.push(s.client.ID) {
			h.log.Debug().Str("client_id", s.client.ID).Msg("already waiting as listener")
		}
	case RoleUser:
		h.waitingListeners.remove(s.client.ID)
		if partner := h.popWaiting(&h.waitingListeners); partner != nil {
			h.pair(partner, s)
			return
		}
		if !h.waitingUsers.push(s.client.ID) {
			h.log.Debug().Str("client_id", s.client.ID).Msg("already waiting as user")
		}
	default:
		h.emitError(s.client, coreError(ErrCodeBadRequest, "unknown user_type"))
	}
}

// popWaiting returns the session of the oldest waiter, skipping ids whose
// session vanished. Disconnect cleanup removes waiters from the queues, so
// a stale entry here is unexpected but harmless.
func (h *Hub) popWaiting(q *waitQueue) *session {
	for {
		id, ok := q.popFront()
		if !ok {
			return nil
		}
		if s := h.sessions[id]; s != nil {
			return s
		}
		h.log.Warn().Str("client_id", id).Msg("stale queue entry skipped")
	}
}

// pair creates a room for one listener and one user, binds both sessions to
// it, and tells each side its server-assigned role.
func (h *Hub) pair(listener, user *session) {
	id := uuid.NewString()
	h.rooms[id] = &room{id: id, listener: listener.client.ID, user: user.client.ID}
	listener.room = id
	user.room = id

	h.emit(listener.client, &Event{Kind: EventPaired, Room: id, Role: RoleListener})
	h.emit(user.client, &Event{Kind: EventPaired, Room: id, Role: RoleUser})

	h.log.Info().
		Str("room_id", id).
		Str("listener_id", listener.client.ID).
		Str("user_id", user.client.ID).
		Msg("matched pair")
}

// handleSendMessage forwards text to the sender's room partner. Messages
// referencing rooms the sender is not a member of are dropped without a
// response; answering would let clients probe for live room ids.
func (h *Hub) handleSendMessage(s *session, roomID, text string) {
	r := h.rooms[roomID]
	if r == nil {
		h.log.Debug().Str("client_id", s.client.ID).Str("room_id", roomID).Msg("message for unknown room dropped")
		return
	}
	partnerID, ok := r.other(s.client.ID)
	if !ok {
		h.log.Debug().Str("client_id", s.client.ID).Str("room_id", roomID).Msg("message from non-member dropped")
		return
	}
	partner := h.sessions[partnerID]
	if partner == nil {
		h.log.Debug().Str("room_id", roomID).Msg("partner already gone")
		return
	}
	h.emit(partner.client, &Event{Kind: EventMessage, Room: roomID, Text: text})
}

// handleDisconnect removes every trace of the connection: session, queue
// entries, room. Cleanup is total; missing entries at any step don't stop
// the rest.
func (h *Hub) handleDisconnect(id string) {
	s := h.sessions[id]
	if s == nil {
		// Transports may deliver duplicate disconnects.
		h.log.Debug().Str("client_id", id).Msg("disconnect for unknown connection")
		return
	}
	delete(h.sessions, id)

	if s.room != "" {
		if r := h.rooms[s.room]; r != nil {
			if partnerID, ok := r.other(id); ok {
				if partner := h.sessions[partnerID]; partner != nil {
					partner.room = ""
					h.emit(partner.client, &Event{Kind: EventPartnerDisconnected, Room: r.id})
				}
			}
			delete(h.rooms, r.id)
		}
	}

	h.waitingListeners.remove(id)
	h.waitingUsers.remove(id)

	close(s.client.Events)
	h.log.Debug().Str("client_id", id).Msg("client cleaned up")
}

// emit delivers an event without blocking the hub. Slow consumers lose
// events rather than stalling matchmaking for everyone else.
func (h *Hub) emit(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		h.log.Warn().Str("client_id", c.ID).Int("kind", int(ev.Kind)).Msg("event dropped for slow consumer")
	}
}

func (h *Hub) emitError(c *Client, err *CoreError) {
	h.emit(c, &Event{Kind: EventError, Error: err})
}
