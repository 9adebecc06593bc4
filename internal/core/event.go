package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventLoginSuccess confirms listener authentication.
	EventLoginSuccess EventKind = iota
	// EventPaired tells a client it has been matched into a room.
	EventPaired
	// EventMessage delivers a chat message from the room partner.
	EventMessage
	// EventPartnerDisconnected tells a client its room partner left.
	EventPartnerDisconnected
	// EventError notifies clients about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind  EventKind
	Room  string
	Role  Role   // for EventPaired
	Text  string // for EventMessage
	Name  string // for EventLoginSuccess
	Error *CoreError
}
