// Package main is a command-line WebSocket client for the Daily Hero server.
//
//	hero-client STATE FIGHT          send actions in order and print the replies
//	hero-client -clients 50 -duration 30s   run a load test instead
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/DailyHero/server/internal/network"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/config"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	serverURL := flag.String("url", cfg.ServerURL, "WebSocket server URL")
	timeout := flag.Duration("timeout", cfg.Timeout, "Wait for each reply at most this long")
	numClients := flag.Int("clients", 0, "Run a load test with this many concurrent clients")
	interval := flag.Duration("interval", 100*time.Millisecond, "Action interval per load test client")
	duration := flag.Duration("duration", 30*time.Second, "Load test duration")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *numClients > 0 {
		load := LoadConfig{
			ServerURL:      *serverURL,
			NumClients:     *numClients,
			ActionInterval: *interval,
			TestDuration:   *duration,
		}
		if !runLoadTest(ctx, load) {
			os.Exit(1)
		}
		return
	}

	actions := flag.Args()
	if len(actions) == 0 {
		actions = []string{network.ActionState}
	}
	if err := runSession(ctx, *serverURL, *timeout, actions); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runSession sends each action and waits for its direct reply. Broadcast
// events that arrive meanwhile are printed too.
func runSession(ctx context.Context, serverURL string, timeout time.Duration, actions []string) error {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, serverURL, nil)
	if err != nil {
		return fmt.Errorf("connect %s: %w", serverURL, err)
	}
	defer conn.Close()

	for _, a := range actions {
		action := network.PlayerAction{Type: strings.ToUpper(a)}
		if err := conn.WriteJSON(action); err != nil {
			return fmt.Errorf("send %s: %w", action.Type, err)
		}
		if err := awaitReply(conn, timeout); err != nil {
			return fmt.Errorf("%s: %w", action.Type, err)
		}
	}
	return conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func awaitReply(conn *websocket.Conn, timeout time.Duration) error {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		replied := false
		// The server batches queued frames into one message, one per line.
		for _, frame := range bytes.Split(data, []byte{'\n'}) {
			if len(bytes.TrimSpace(frame)) == 0 {
				continue
			}
			var msg struct {
				Type    network.MessageType `json:"type"`
				Payload json.RawMessage     `json:"payload"`
			}
			if err := json.Unmarshal(frame, &msg); err != nil {
				return fmt.Errorf("decode frame: %w", err)
			}
			printFrame(msg.Type, msg.Payload)
			if msg.Type != network.MsgTypeEvent {
				replied = true
			}
		}
		if replied {
			return nil
		}
	}
}

func printFrame(t network.MessageType, payload json.RawMessage) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "   ", "  "); err != nil {
		pretty.Reset()
		pretty.Write(payload)
	}
	fmt.Printf("[%s] %s\n", t, pretty.String())
}
