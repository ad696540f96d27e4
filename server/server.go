// Package server runs the TCP front that accepts connections, performs the
// join handshake, and admits or rejects each one into the engine.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"

	"lexigrid/engine"
	"lexigrid/transport"
	"lexigrid/wire"
)

type (
	// Config describes how to build a Server.
	Config struct {
		// Addr is the TCP address to listen on, e.g. ":7070".
		Addr string
		// Log receives connection and admission errors. Required.
		Log *log.Logger
		// Debug causes every accepted/rejected connection to be logged.
		Debug bool
	}

	// Server accepts connections and hands admitted ones off to a Game.
	Server struct {
		cfg  Config
		game *engine.Game
		lnMu sync.Mutex
		ln   net.Listener
		run  runOnce
	}

	// runOnce is a thread-safe guard ensuring Server.Run is only ever
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
		return errors.New("server: already running or finished, can only run once")
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

// New validates cfg and builds a Server bound to game. Listen is deferred to Run.
func (cfg Config) New(game *engine.Game) (*Server, error) {
	if cfg.Log == nil {
		return nil, errors.New("server: log required")
	}
	if game == nil {
		return nil, errors.New("server: game required")
	}
	return &Server{cfg: cfg, game: game}, nil
}

// Run starts the engine loop, opens the listening socket, and accepts
// connections until ctx is done or Stop is called. It blocks until the
// accept loop exits and returns any listen error.
func (s *Server) Run(ctx context.Context) error {
	if err := s.run.start(); err != nil {
		return err
	}
	defer s.run.finish()
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	s.lnMu.Lock()
	s.ln = ln
	s.lnMu.Unlock()
	s.cfg.Log.Printf("server: listening on %v", ln.Addr())
	go s.game.Run(ctx)
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	return s.acceptLoop(ctx, ln)
}

// Addr returns the listener's bound address. Valid only once Run has started
// listening; useful when Config.Addr requests an ephemeral port (":0").
func (s *Server) Addr() net.Addr {
	s.lnMu.Lock()
	defer s.lnMu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Stop broadcasts Shutdown to every seated client, then closes the listening
// socket, unblocking Run's accept loop. The caller must still cancel the
// context passed to Run once satisfied that Shutdown sends have drained, so
// the engine's Run loop and every connection's loops can themselves exit.
func (s *Server) Stop() error {
	s.game.Shutdown()
	s.lnMu.Lock()
	ln := s.ln
	s.lnMu.Unlock()
	if ln == nil {
		return nil
	}
	return ln.Close()
}

// acceptLoop spawns one connection handler per accepted socket until the
// listener is closed.
func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("server: accept: %w", err)
		}
		go s.handleConn(ctx, nc)
	}
}

// handleConn performs the join handshake and, on success, starts the
// connection's read/write loops against the engine's inbound channel.
func (s *Server) handleConn(ctx context.Context, nc net.Conn) {
	conn := transport.New(nc, transport.ServerDirection, s.cfg.Log)
	m, err := conn.Handshake()
	if err != nil {
		if s.cfg.Debug {
			s.cfg.Log.Printf("server: handshake failed for %v: %v", nc.RemoteAddr(), err)
		}
		nc.Close()
		return
	}
	if m.Tag != wire.TagJoin {
		if s.cfg.Debug {
			s.cfg.Log.Printf("server: closing %v: first message was %v, not Join", nc.RemoteAddr(), m.Tag)
		}
		nc.Close()
		return
	}
	res := s.game.Admit(conn, m.Name)
	if res.Rejected != "" {
		if s.cfg.Debug {
			s.cfg.Log.Printf("server: rejected %v: %s", nc.RemoteAddr(), res.Rejected)
		}
		s.reject(nc, res.Rejected)
		return
	}
	if s.cfg.Debug {
		s.cfg.Log.Printf("server: admitted player %d (%s) from %v", res.PlayerID, m.Name, nc.RemoteAddr())
	}
	if err := wire.Encode(nc, res.JoinOk); err != nil {
		s.cfg.Log.Printf("server: writing JoinOk to %v: %v", nc.RemoteAddr(), err)
		nc.Close()
		return
	}
	conn.Run(ctx, s.game.Inbound())
}

// reject writes an ActionRejected with reason directly to nc and closes it.
func (s *Server) reject(nc net.Conn, reason string) {
	wire.Encode(nc, wire.Message{Tag: wire.TagActionRejected, Text: reason})
	nc.Close()
}
