// Package engine runs the single-consumer game loop that owns all mutable
// lobby and in-game state: seated clients, the tile bag, the board, turn
// order, and scoring.
package engine

import (
	"context"
	"errors"
	"log"
	"sync"

	"lexigrid/board"
	"lexigrid/dictionary"
	"lexigrid/tile"
	"lexigrid/transport"
	"lexigrid/wire"
)

// MaxClients is the largest number of clients that may be seated at once.
const MaxClients = 4

type (
	// Config describes how to build a Game.
	Config struct {
		// Debug causes the engine to log every message it reads.
		Debug bool
		// Log receives error and (if Debug) trace output. Required.
		Log *log.Logger
		// Dictionary validates words formed by PlaceTiles. Required.
		Dictionary dictionary.Dictionary
		// ShuffleFunc shuffles a tile slice in place. A nil value leaves the
		// bag in its built or returned order, which tests rely on.
		ShuffleFunc func([]tile.Tile)
		// StartIndexFunc picks, by index into the seated client list, who
		// holds the first turn of a new game. A nil value makes the choice
		// uniformly at random, matching the original game's behavior; tests
		// that need a deterministic starting player inject a fixed index.
		StartIndexFunc func(n int) int
	}

	// Game is the lobby plus, once started, the in-progress match. It is
	// safe for concurrent use: Admit and the loop driven by Run both take
	// the same mutex.
	Game struct {
		mu                sync.Mutex
		debug             bool
		log               *log.Logger
		dict              dictionary.Dictionary
		shuffleFunc       func([]tile.Tile)
		startIndexFunc    func(n int) int
		board             *board.Board
		bag               tile.Bag
		clients           []*Client
		byConn            map[*transport.Conn]*Client
		lobby             bool
		turnPlayerID      int // -1 while undefined (lobby)
		turnsWithoutScore int
		inbound           chan transport.Envelope
	}

	// AdmitResult is the outcome of an admission attempt.
	AdmitResult struct {
		PlayerID uint8
		Rejected string      // non-empty reason if admission failed
		JoinOk   wire.Message // valid only when Rejected == ""
	}
)

// New validates cfg and builds a Game sitting in the lobby.
func (cfg Config) New() (*Game, error) {
	if cfg.Log == nil {
		return nil, errors.New("engine: log required")
	}
	if cfg.Dictionary == nil {
		return nil, errors.New("engine: dictionary required")
	}
	g := &Game{
		debug:          cfg.Debug,
		log:            cfg.Log,
		dict:           cfg.Dictionary,
		shuffleFunc:    cfg.ShuffleFunc,
		startIndexFunc: cfg.StartIndexFunc,
		byConn:         make(map[*transport.Conn]*Client),
		lobby:          true,
		turnPlayerID:   -1,
		inbound:        make(chan transport.Envelope),
	}
	return g, nil
}

// Inbound is the channel per-connection transports push envelopes onto.
func (g *Game) Inbound() chan<- transport.Envelope {
	return g.inbound
}

// Shutdown broadcasts Shutdown to every seated client. Each client's writer
// closes its socket once Shutdown is written, which causes the remote reader
// to terminate gracefully; the caller is responsible for stopping Run itself
// (by cancelling the context passed to it) once sends have drained.
func (g *Game) Shutdown() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.broadcast(wire.Message{Tag: wire.TagShutdown})
}

// Admit seats a newly connected, named client, or rejects it. The caller
// (the server front) is expected to have read the connection's Join message
// directly, before starting the connection's transport loops; on success the
// caller writes AdmitResult.JoinOk to the raw connection itself and then
// starts the loops feeding Inbound(). On rejection the caller writes an
// ActionRejected with the given reason and closes the connection.
func (g *Game) Admit(conn *transport.Conn, name string) AdmitResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch {
	case len(g.clients) >= MaxClients:
		return AdmitResult{Rejected: "Server is full"}
	case !g.lobby:
		return AdmitResult{Rejected: "Game in progress"}
	}
	id := g.lowestFreeID()
	g.broadcast(wire.Message{Tag: wire.TagPlayerJoined, PlayerID: id, Name: name})
	c := &Client{conn: conn, playerID: id, name: name}
	g.clients = append(g.clients, c)
	g.byConn[conn] = c
	return AdmitResult{
		PlayerID: id,
		JoinOk:   wire.Message{Tag: wire.TagJoinOk, SelfID: id, Players: g.playerInfos()},
	}
}

// Run is the single consumer of Inbound(); it blocks until ctx is done.
func (g *Game) Run(ctx context.Context) {
	handlers := map[wire.Tag]func(*Client, wire.Message) error{
		wire.TagReady:        g.handleReady,
		wire.TagChat:         g.handleChat,
		wire.TagTileExchange: g.handleTileExchange,
		wire.TagPlaceTiles:   g.handlePlaceTiles,
	}
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-g.inbound:
			g.handleEnvelope(env, handlers)
		}
	}
}

func (g *Game) handleEnvelope(env transport.Envelope, handlers map[wire.Tag]func(*Client, wire.Message) error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.byConn[env.Conn]
	if !ok {
		return // stale envelope for an already-removed client
	}
	if env.Message == nil || env.Message.Tag == wire.TagLeave {
		g.handleLeave(c)
		return
	}
	m := *env.Message
	if g.debug {
		g.log.Printf("engine: player %d sent %v", c.playerID, m.Tag)
	}
	h, ok := handlers[m.Tag]
	if !ok {
		g.log.Printf("engine: no handler for %v from player %d", m.Tag, c.playerID)
		return
	}
	if err := h(c, m); err != nil {
		var rej rejection
		if errors.As(err, &rej) {
			c.conn.Send(wire.Message{Tag: wire.TagActionRejected, Text: string(rej)})
			return
		}
		g.log.Printf("engine: error handling %v from player %d: %v", m.Tag, c.playerID, err)
	}
}

func (g *Game) lowestFreeID() uint8 {
	used := make(map[uint8]struct{}, len(g.clients))
	for _, c := range g.clients {
		used[c.playerID] = struct{}{}
	}
	for id := 0; id <= 255; id++ {
		if _, ok := used[uint8(id)]; !ok {
			return uint8(id)
		}
	}
	return 0 // unreachable: Admit caps seating at MaxClients
}

func (g *Game) playerInfos() []wire.PlayerInfo {
	infos := make([]wire.PlayerInfo, len(g.clients))
	for i, c := range g.clients {
		infos[i] = wire.PlayerInfo{ID: c.playerID, Ready: c.ready, Name: c.name}
	}
	return infos
}

func (g *Game) indexOfClient(c *Client) int {
	for i, other := range g.clients {
		if other == c {
			return i
		}
	}
	return -1
}

func (g *Game) indexOfPlayerID(id int) int {
	for i, c := range g.clients {
		if int(c.playerID) == id {
			return i
		}
	}
	return -1
}

func (g *Game) allReady() bool {
	for _, c := range g.clients {
		if !c.ready {
			return false
		}
	}
	return true
}

func (g *Game) broadcast(m wire.Message) {
	for _, c := range g.clients {
		c.conn.Send(m)
	}
}

func (g *Game) broadcastExcept(except *Client, m wire.Message) {
	for _, c := range g.clients {
		if c != except {
			c.conn.Send(m)
		}
	}
}
