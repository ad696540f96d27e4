// Package client runs the local session that mirrors the server's game view
// for a single connected player: a read loop applies each inbound message to
// local state under one mutex, then hands the update to the caller's view.
package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"

	"lexigrid/transport"
	"lexigrid/wire"
)

type (
	// OnUpdate is invoked after every inbound message is applied to local
	// state. text is the empty string for silent updates (e.g. JoinOk).
	OnUpdate func(m wire.Message, text string)

	// Config describes how to build a Session.
	Config struct {
		// Log receives connection errors. Required.
		Log *log.Logger
		// OnUpdate is called after each processed inbound message. Required.
		OnUpdate OnUpdate
	}

	// Session is one player's connection to the server plus the local game
	// mirror it drives.
	Session struct {
		cfg     Config
		conn    *transport.Conn
		game    *LocalGame
		run     runOnce
		inbound chan transport.Envelope
		done    chan struct{}
	}

	// runOnce is a thread-safe guard ensuring a Session is only ever
	// started once.
	runOnce struct {
		mu      sync.Mutex
		running bool
		done    bool
	}
)

func (r *runOnce) start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running || r.done {
		return errors.New("client: already running or finished, can only run once")
	}
	r.running = true
	return nil
}

func (r *runOnce) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	r.done = true
}

// Start dials addr, sends Join with name, and begins the session's read and
// dispatch loops. The returned Session is usable once Start returns; Join's
// JoinOk reply arrives asynchronously through OnUpdate like any other message.
func (cfg Config) Start(ctx context.Context, addr, name string) (*Session, error) {
	if cfg.Log == nil {
		return nil, errors.New("client: log required")
	}
	if cfg.OnUpdate == nil {
		return nil, errors.New("client: OnUpdate required")
	}
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", addr, err)
	}
	s := &Session{
		cfg:     cfg,
		conn:    transport.New(nc, transport.ClientDirection, cfg.Log),
		game:    newLocalGame(),
		inbound: make(chan transport.Envelope),
		done:    make(chan struct{}),
	}
	if err := s.run.start(); err != nil {
		nc.Close()
		return nil, err
	}
	go s.conn.Run(ctx, s.inbound)
	go s.dispatchLoop()
	s.Send(wire.Message{Tag: wire.TagJoin, Name: name})
	return s, nil
}

// Game returns the session's local game mirror.
func (s *Session) Game() *LocalGame {
	return s.game
}

// Send enqueues an outbound message.
func (s *Session) Send(m wire.Message) {
	s.conn.Send(m)
}

// Stop enqueues Leave and waits for the read/dispatch loops to drain.
func (s *Session) Stop() {
	s.Send(wire.Message{Tag: wire.TagLeave})
	<-s.done
}

// dispatchLoop is the single consumer of inbound: it applies each message to
// the local game mirror under its own mutex, then invokes OnUpdate.
func (s *Session) dispatchLoop() {
	defer close(s.done)
	defer s.run.finish()
	for env := range s.inbound {
		if env.Message == nil {
			return
		}
		m := *env.Message
		text := s.game.apply(m)
		s.cfg.OnUpdate(m, text)
		if m.Tag == wire.TagShutdown {
			return
		}
	}
}
