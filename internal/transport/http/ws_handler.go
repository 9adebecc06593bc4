package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/quietline/quietline-server/internal/auth"
	"github.com/quietline/quietline-server/internal/core"
	"github.com/quietline/quietline-server/internal/proto"
	"github.com/quietline/quietline-server/internal/utils"
)

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub         *core.Hub
	auth        *auth.Service
	authTimeout time.Duration
	log         *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, authService *auth.Service, authTimeout time.Duration, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, auth: authService, authTimeout: authTimeout, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := core.NewClient(utils.NewID())
	h.hub.RegisterClient(client)
	defer client.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		if inbound.Type == proto.InboundTypeListenerLogin {
			if err := h.handleLogin(ctx, conn, client, inbound.Data); err != nil {
				return err
			}
			continue
		}

		cmd, protoErr := inboundToCommand(inbound)
		if protoErr != nil {
			if writeErr := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: protoErr,
			}); writeErr != nil {
				return writeErr
			}
			continue
		}
		if cmd != nil {
			client.Commands <- cmd
		}
	}
}

// handleLogin verifies credentials on this connection's goroutine, bounded
// by the auth timeout, and hands only the fast mark-authenticated mutation
// to the hub. The hub replies with login_success; failures are answered
// here directly since no shared state is involved.
func (h *WSHandler) handleLogin(ctx context.Context, conn *websocket.Conn, client *core.Client, data json.RawMessage) error {
	var login proto.ListenerLoginData
	if err := json.Unmarshal(data, &login); err != nil {
		return wsjson.Write(ctx, conn, proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed listener_login payload"},
		})
	}

	identity, err := h.verify(ctx, login)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.log.Error().Err(err).Str("client_id", client.ID).Msg("authenticator error")
		}
		// One generic message for every failure mode.
		return wsjson.Write(ctx, conn, proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventLoginError,
			Data:  proto.EventLoginErrorData{Message: "invalid email or password"},
		})
	}

	client.Commands <- &core.Command{
		Kind:     core.CommandAuthenticate,
		Identity: &core.Identity{ID: identity.ID, Name: identity.Name},
	}
	return nil
}

func (h *WSHandler) verify(ctx context.Context, login proto.ListenerLoginData) (*auth.Identity, error) {
	if login.Token != "" {
		return h.auth.VerifyToken(login.Token)
	}

	authCtx, cancel := context.WithTimeout(ctx, h.authTimeout)
	defer cancel()
	return h.auth.Login(authCtx, login.Email, login.Password)
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
