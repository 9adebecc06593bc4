package core

// Role is a participant role inside a room. The wire protocol calls the
// help-seeker side "normal".
type Role string

const (
	// RoleListener is the authenticated volunteer side of a pair.
	RoleListener Role = "listener"
	// RoleUser is the anonymous help-seeker side of a pair.
	RoleUser Role = "normal"
)

// ParseRole maps a wire user_type to a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleListener:
		return RoleListener, true
	case RoleUser:
		return RoleUser, true
	default:
		return "", false
	}
}

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandAuthenticate marks the connection as a verified listener.
	// Credential checking happens outside the hub; only the result enters.
	CommandAuthenticate CommandKind = iota
	// CommandJoinQueue asks to be paired, or to wait for a partner.
	CommandJoinQueue
	// CommandSendMessage relays a chat message to the room partner.
	CommandSendMessage
)

// Command represents an action requested by a client.
type Command struct {
	Kind     CommandKind
	Role     Role
	Room     string
	Text     string
	Identity *Identity
}

// Identity is the verified listener identity attached to a session.
type Identity struct {
	ID   int64
	Name string
}
