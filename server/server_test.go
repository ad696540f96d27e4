package server_test

import (
	"bufio"
	"context"
	"io"
	"log"
	"net"
	"strings"
	"testing"
	"time"

	"lexigrid/dictionary"
	"lexigrid/engine"
	"lexigrid/server"
	"lexigrid/wire"
)

func newTestServer(t *testing.T) (*server.Server, context.Context) {
	t.Helper()
	dict, err := dictionary.New(strings.NewReader("HI"))
	if err != nil {
		t.Fatalf("dictionary.New: %v", err)
	}
	g, err := engine.Config{Log: log.New(io.Discard, "", 0), Dictionary: dict}.New()
	if err != nil {
		t.Fatalf("engine.Config.New: %v", err)
	}
	s, err := server.Config{Addr: "127.0.0.1:0", Log: log.New(io.Discard, "", 0)}.New(g)
	if err != nil {
		t.Fatalf("server.Config.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.Run(ctx)
	waitForAddr(t, s)
	return s, ctx
}

func waitForAddr(t *testing.T, s *server.Server) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Addr() != nil {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("server never started listening")
}

func dial(t *testing.T, s *server.Server) net.Conn {
	t.Helper()
	nc, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { nc.Close() })
	return nc
}

// decodeWithTimeout reads exactly one message. It is only ever called once
// per connection in these tests, so a fresh bufio.Reader each call is safe.
func decodeWithTimeout(t *testing.T, nc net.Conn) wire.Message {
	t.Helper()
	nc.SetReadDeadline(time.Now().Add(2 * time.Second))
	m, err := wire.Decode(bufio.NewReader(nc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return m
}

func TestJoinHandshakeAdmits(t *testing.T) {
	s, _ := newTestServer(t)
	nc := dial(t, s)
	if err := wire.Encode(nc, wire.Message{Tag: wire.TagJoin, Name: "Alice"}); err != nil {
		t.Fatalf("encode Join: %v", err)
	}
	m := decodeWithTimeout(t, nc)
	if m.Tag != wire.TagJoinOk {
		t.Fatalf("got %v, want JoinOk", m.Tag)
	}
	if len(m.Players) != 1 || m.Players[0].Name != "Alice" {
		t.Fatalf("got players %+v, want one player named Alice", m.Players)
	}
}

func TestNonJoinFirstMessageClosesSocketWithNoReply(t *testing.T) {
	s, _ := newTestServer(t)
	nc := dial(t, s)
	if err := wire.Encode(nc, wire.Message{Tag: wire.TagChat, Text: "hi"}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	nc.SetReadDeadline(time.Now().Add(2 * time.Second))
	var b [1]byte
	if _, err := nc.Read(b[:]); err != io.EOF {
		t.Fatalf("got %v, want io.EOF (server closes the socket with no reply)", err)
	}
}

func TestServerFullRejectsFifth(t *testing.T) {
	s, _ := newTestServer(t)
	for i := 0; i < engine.MaxClients; i++ {
		nc := dial(t, s)
		if err := wire.Encode(nc, wire.Message{Tag: wire.TagJoin, Name: "p"}); err != nil {
			t.Fatalf("encode Join %d: %v", i, err)
		}
		if m := decodeWithTimeout(t, nc); m.Tag != wire.TagJoinOk {
			t.Fatalf("client %d: got %v, want JoinOk", i, m.Tag)
		}
	}
	nc := dial(t, s)
	if err := wire.Encode(nc, wire.Message{Tag: wire.TagJoin, Name: "fifth"}); err != nil {
		t.Fatalf("encode Join: %v", err)
	}
	m := decodeWithTimeout(t, nc)
	if m.Tag != wire.TagActionRejected || m.Text != "Server is full" {
		t.Fatalf("got %+v, want ActionRejected(Server is full)", m)
	}
}

func TestStopBroadcastsShutdown(t *testing.T) {
	s, _ := newTestServer(t)
	nc := dial(t, s)
	if err := wire.Encode(nc, wire.Message{Tag: wire.TagJoin, Name: "Alice"}); err != nil {
		t.Fatalf("encode Join: %v", err)
	}
	r := bufio.NewReader(nc)
	nc.SetReadDeadline(time.Now().Add(2 * time.Second))
	if m, err := wire.Decode(r); err != nil || m.Tag != wire.TagJoinOk {
		t.Fatalf("got %v, %v, want JoinOk", m.Tag, err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	m, err := wire.Decode(r)
	if err != nil {
		t.Fatalf("decode after Stop: %v", err)
	}
	if m.Tag != wire.TagShutdown {
		t.Fatalf("got %v, want Shutdown", m.Tag)
	}
}
