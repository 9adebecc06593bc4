package http

import (
	"encoding/json"

	"github.com/quietline/quietline-server/internal/core"
	"github.com/quietline/quietline-server/internal/proto"
)

// inboundToCommand maps a wire message to a core command, or to a protocol
// error answered on the connection. A malformed payload fails that request
// only; it never brings the connection down.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeJoinQueue:
		var join proto.JoinQueueData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed join_queue payload"}
		}
		role, ok := core.ParseRole(join.UserType)
		if !ok {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "user_type must be listener or normal"}
		}
		return &core.Command{
			Kind: core.CommandJoinQueue,
			Role: role,
		}, nil
	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed send_message payload"}
		}
		if msg.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}
		}
		return &core.Command{
			Kind: core.CommandSendMessage,
			Room: msg.Room,
			Text: msg.Text,
		}, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventLoginSuccess:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventLoginSuccess,
			Data:  proto.EventLoginSuccessData{Name: event.Name},
		}
	case core.EventPaired:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventPaired,
			Data: proto.EventPairedData{
				RoomID: event.Room,
				Role:   string(event.Role),
			},
		}
	case core.EventMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventReceiveMessage,
			Data:  proto.EventReceiveMessageData{Text: event.Text},
		}
	case core.EventPartnerDisconnected:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventPartnerDisconnected,
			Data:  proto.EventPartnerDisconnectedData{RoomID: event.Room},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
