package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeListenerLogin = "listener_login"
	InboundTypeJoinQueue     = "join_queue"
	InboundTypeSendMessage   = "send_message"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventLoginSuccess        = "login_success"
	EventLoginError          = "login_error"
	EventPaired              = "paired"
	EventReceiveMessage      = "receive_message"
	EventPartnerDisconnected = "partner_disconnected"
)

// ListenerLoginData carries listener credentials, or a previously issued
// session token instead.
type ListenerLoginData struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

// JoinQueueData requests to be paired as the given user type.
type JoinQueueData struct {
	UserType string `json:"user_type"`
}

// SendMessageData is a chat message scoped to a room.
type SendMessageData struct {
	Room string `json:"room"`
	Text string `json:"text"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventLoginSuccessData confirms listener authentication.
type EventLoginSuccessData struct {
	Name string `json:"name"`
}

// EventLoginErrorData reports a failed login attempt. The message is kept
// generic on purpose.
type EventLoginErrorData struct {
	Message string `json:"message"`
}

// EventPairedData tells the client which room it was matched into and which
// role the server assigned it.
type EventPairedData struct {
	RoomID string `json:"room_id"`
	Role   string `json:"role"`
}

// EventReceiveMessageData delivers a chat message from the room partner.
type EventReceiveMessageData struct {
	Text string `json:"text"`
}

// EventPartnerDisconnectedData tells the client its partner left.
type EventPartnerDisconnectedData struct {
	RoomID string `json:"room_id"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
