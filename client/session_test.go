package client_test

import (
	"bufio"
	"context"
	"io"
	"log"
	"net"
	"testing"
	"time"

	"lexigrid/client"
	"lexigrid/wire"
)

// fakeServer listens on an ephemeral port and hands back the first accepted
// connection, already past TCP accept but before any protocol exchange.
func fakeServer(t *testing.T) (net.Listener, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	return ln, ln.Addr().String()
}

func accept(t *testing.T, ln net.Listener) (net.Conn, *bufio.Reader) {
	t.Helper()
	type result struct {
		nc  net.Conn
		err error
	}
	ch := make(chan result, 1)
	go func() {
		nc, err := ln.Accept()
		ch <- result{nc, err}
	}()
	select {
	case r := <-ch:
		if r.err != nil {
			t.Fatalf("accept: %v", r.err)
		}
		t.Cleanup(func() { r.nc.Close() })
		return r.nc, bufio.NewReader(r.nc)
	case <-time.After(2 * time.Second):
		t.Fatal("accept: timed out")
		return nil, nil
	}
}

func collectUpdates(n int) (client.OnUpdate, func(*testing.T) []wire.Message) {
	ch := make(chan wire.Message, n)
	onUpdate := func(m wire.Message, text string) {
		select {
		case ch <- m:
		default:
		}
	}
	wait := func(t *testing.T) []wire.Message {
		t.Helper()
		out := make([]wire.Message, 0, n)
		for i := 0; i < n; i++ {
			select {
			case m := <-ch:
				out = append(out, m)
			case <-time.After(2 * time.Second):
				t.Fatalf("timed out waiting for update %d/%d", i+1, n)
			}
		}
		return out
	}
	return onUpdate, wait
}

func TestStartSendsJoinAndAppliesJoinOk(t *testing.T) {
	ln, addr := fakeServer(t)
	onUpdate, wait := collectUpdates(1)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s, err := client.Config{Log: log.New(io.Discard, "", 0), OnUpdate: onUpdate}.Start(ctx, addr, "Alice")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	nc, r := accept(t, ln)
	nc.SetReadDeadline(time.Now().Add(2 * time.Second))
	join, err := wire.Decode(r)
	if err != nil {
		t.Fatalf("decode Join: %v", err)
	}
	if join.Tag != wire.TagJoin || join.Name != "Alice" {
		t.Fatalf("got %+v, want Join(Alice)", join)
	}
	if err := wire.Encode(nc, wire.Message{Tag: wire.TagJoinOk, SelfID: 3, Players: []wire.PlayerInfo{{ID: 3, Name: "Alice"}}}); err != nil {
		t.Fatalf("encode JoinOk: %v", err)
	}

	msgs := wait(t)
	if msgs[0].Tag != wire.TagJoinOk {
		t.Fatalf("got %v, want JoinOk delivered via OnUpdate", msgs[0].Tag)
	}
	if got := s.Game().SelfID(); got != 3 {
		t.Errorf("SelfID = %d, want 3", got)
	}
}

func TestStartTurnExitsLobbyAndReportsWhoseTurn(t *testing.T) {
	ln, addr := fakeServer(t)
	collect, wait := collectUpdates(2)
	turnText := make(chan string, 1)
	onUpdate := func(m wire.Message, text string) {
		if m.Tag == wire.TagStartTurn {
			turnText <- text
		}
		collect(m, text)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s, err := client.Config{Log: log.New(io.Discard, "", 0), OnUpdate: onUpdate}.Start(ctx, addr, "Alice")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	nc, r := accept(t, ln)
	nc.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := wire.Decode(r); err != nil {
		t.Fatalf("decode Join: %v", err)
	}
	if err := wire.Encode(nc, wire.Message{Tag: wire.TagJoinOk, SelfID: 0, Players: []wire.PlayerInfo{{ID: 0, Name: "Alice"}, {ID: 1, Name: "Bob"}}}); err != nil {
		t.Fatalf("encode JoinOk: %v", err)
	}
	if err := wire.Encode(nc, wire.Message{Tag: wire.TagStartTurn, TurnID: 1, TilesLeft: 86}); err != nil {
		t.Fatalf("encode StartTurn: %v", err)
	}

	msgs := wait(t)
	if msgs[1].Tag != wire.TagStartTurn {
		t.Fatalf("got %v, want StartTurn", msgs[1].Tag)
	}
	if text := <-turnText; text != "Bob's turn!" {
		t.Errorf("text = %q, want %q", text, "Bob's turn!")
	}
	if s.Game().Board() == nil {
		t.Error("Board() = nil, want a fresh board once StartTurn leaves the lobby")
	}
}

func TestActionRejectedSurfacesReasonAsText(t *testing.T) {
	ln, addr := fakeServer(t)
	ch := make(chan string, 1)
	onUpdate := func(m wire.Message, text string) {
		if m.Tag == wire.TagActionRejected {
			ch <- text
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	_, err := client.Config{Log: log.New(io.Discard, "", 0), OnUpdate: onUpdate}.Start(ctx, addr, "Alice")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	nc, r := accept(t, ln)
	nc.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := wire.Decode(r); err != nil {
		t.Fatalf("decode Join: %v", err)
	}
	if err := wire.Encode(nc, wire.Message{Tag: wire.TagActionRejected, Text: "Not player's turn!"}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	select {
	case text := <-ch:
		if text != "Not player's turn!" {
			t.Errorf("text = %q, want %q", text, "Not player's turn!")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ActionRejected")
	}
}
