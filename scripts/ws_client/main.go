// Command ws_client is a minimal interactive client for manual testing.
// It speaks the quietline wire protocol: optional listener login, queue
// join, then free-text chat once paired.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/quietline/quietline-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_client: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	email := flag.String("email", "", "listener email (empty to connect as help-seeker)")
	password := flag.String("password", "", "listener password")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, data any) {
		payload, marshalErr := json.Marshal(data)
		if marshalErr != nil {
			cancel()
			log.Printf("marshal %s: %v", typ, marshalErr)
			return
		}
		if writeErr := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	userType := "normal"
	if *email != "" {
		userType = "listener"
		send(proto.InboundTypeListenerLogin, proto.ListenerLoginData{Email: *email, Password: *password})
	}
	send(proto.InboundTypeJoinQueue, proto.JoinQueueData{UserType: userType})

	fmt.Printf("Connected to %s as %s, waiting for a partner...\n", *addr, userType)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	// roomCh carries the room id from the read loop to the write loop once
	// the server pairs us.
	roomCh := make(chan string, 1)

	go func() {
		defer cancel()
		readLoop(ctx, conn, roomCh)
	}()

	writeLoop(ctx, conn, roomCh)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn, roomCh chan<- string) {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if outbound.Type == proto.OutboundTypeError && outbound.Error != nil {
			fmt.Printf("error: %s (%s)\n", outbound.Error.Msg, outbound.Error.Code)
			continue
		}

		switch outbound.Event {
		case proto.EventLoginSuccess:
			var evt proto.EventLoginSuccessData
			if decodeEvent(outbound.Data, &evt) {
				fmt.Printf("logged in as %s\n", evt.Name)
			}
		case proto.EventLoginError:
			var evt proto.EventLoginErrorData
			if decodeEvent(outbound.Data, &evt) {
				fmt.Printf("login failed: %s\n", evt.Message)
			}
		case proto.EventPaired:
			var evt proto.EventPairedData
			if decodeEvent(outbound.Data, &evt) {
				fmt.Printf("paired as %s in room %s\n", evt.Role, evt.RoomID)
				select {
				case roomCh <- evt.RoomID:
				default:
				}
			}
		case proto.EventReceiveMessage:
			var evt proto.EventReceiveMessageData
			if decodeEvent(outbound.Data, &evt) {
				fmt.Printf("partner: %s\n", evt.Text)
			}
		case proto.EventPartnerDisconnected:
			fmt.Println("partner disconnected")
		default:
			fmt.Printf("event=%s data=%v\n", outbound.Event, outbound.Data)
		}
	}
}

func decodeEvent(data any, dst any) bool {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("marshal outbound data: %v", err)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Printf("unmarshal event: %v", err)
		return false
	}
	return true
}

func writeLoop(ctx context.Context, conn *websocket.Conn, roomCh <-chan string) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	room := ""
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-roomCh:
			room = id
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if room == "" {
				fmt.Println("not paired yet")
				continue
			}

			payload, err := json.Marshal(proto.SendMessageData{Room: room, Text: text})
			if err != nil {
				log.Printf("marshal msg: %v", err)
				return
			}
			if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeSendMessage, Data: payload}); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
