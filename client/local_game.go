package client

import (
	"fmt"
	"sync"

	"lexigrid/board"
	"lexigrid/tile"
	"lexigrid/wire"
)

type (
	// LocalClient mirrors one seated player as known to this session.
	LocalClient struct {
		ID    uint8
		Name  string
		Ready bool
		Score int16
	}

	// LocalGame is the client-side mirror of the server's game view: enough
	// state to render a board and player list without owning any authority.
	LocalGame struct {
		mu          sync.Mutex
		selfID      uint8
		clients     []*LocalClient
		lobby       bool
		started     bool
		board       *board.Board
		turnID      uint8
		tilesLeft   uint8
		rack        []wire.RackTile
		otherCounts []wire.TileCount
	}
)

func newLocalGame() *LocalGame {
	return &LocalGame{lobby: true}
}

// SelfID returns this session's assigned player id.
func (g *LocalGame) SelfID() uint8 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selfID
}

// Clients returns a snapshot of the seated client list.
func (g *LocalGame) Clients() []LocalClient {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]LocalClient, len(g.clients))
	for i, c := range g.clients {
		out[i] = *c
	}
	return out
}

// Board returns the local board mirror, nil while in the lobby.
func (g *LocalGame) Board() *board.Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board
}

// Rack returns this session's current rack.
func (g *LocalGame) Rack() []wire.RackTile {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]wire.RackTile(nil), g.rack...)
}

// apply updates local state for one inbound message and returns the text to
// surface via OnUpdate, per the session's state-machine table.
func (g *LocalGame) apply(m wire.Message) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch m.Tag {
	case wire.TagJoinOk:
		return g.applyJoinOk(m)
	case wire.TagPlayerJoined:
		return g.applyPlayerJoined(m)
	case wire.TagPlayerLeft:
		return g.applyPlayerLeft(m)
	case wire.TagPlayerReady:
		return g.applyPlayerReady(m)
	case wire.TagStartTurn:
		return g.applyStartTurn(m)
	case wire.TagEndTurn:
		return g.applyEndTurn(m)
	case wire.TagEndGame:
		return g.applyEndGame(m)
	case wire.TagActionRejected:
		return m.Text
	case wire.TagPlayerChat:
		return fmt.Sprintf("%s: %s", g.nameOf(m.PlayerID), m.Text)
	case wire.TagNotification:
		return m.Text
	default:
		return ""
	}
}

func (g *LocalGame) applyJoinOk(m wire.Message) string {
	g.selfID = m.SelfID
	g.clients = make([]*LocalClient, len(m.Players))
	for i, p := range m.Players {
		g.clients[i] = &LocalClient{ID: p.ID, Name: p.Name, Ready: p.Ready}
	}
	return ""
}

func (g *LocalGame) applyPlayerJoined(m wire.Message) string {
	g.clients = append(g.clients, &LocalClient{ID: m.PlayerID, Name: m.Name})
	return fmt.Sprintf("%s has joined", m.Name)
}

func (g *LocalGame) applyPlayerLeft(m wire.Message) string {
	name := g.nameOf(m.PlayerID)
	idx := g.indexOf(m.PlayerID)
	if idx >= 0 {
		g.clients = append(g.clients[:idx], g.clients[idx+1:]...)
	}
	if len(g.clients) == 1 {
		g.resetToLobby()
	}
	return fmt.Sprintf("%s has left", name)
}

func (g *LocalGame) applyPlayerReady(m wire.Message) string {
	if c := g.clientOf(m.PlayerID); c != nil {
		c.Ready = !c.Ready
	}
	return ""
}

func (g *LocalGame) applyStartTurn(m wire.Message) string {
	if g.lobby {
		g.lobby = false
		g.started = true
		g.board = board.New()
	}
	g.turnID = m.TurnID
	g.tilesLeft = m.TilesLeft
	g.rack = m.Rack
	g.otherCounts = m.TileCounts
	if m.TurnID == g.selfID {
		return "Your turn!"
	}
	return fmt.Sprintf("%s's turn!", g.nameOf(m.TurnID))
}

func (g *LocalGame) applyEndTurn(m wire.Message) string {
	if c := g.clientOf(m.PlayerID); c != nil {
		c.Score = m.Score
	}
	if g.board != nil {
		for _, pt := range m.Placed {
			row, col := int(pt.Position)/board.Size, int(pt.Position)%board.Size
			var letter rune
			if len(pt.Letter) > 0 {
				letter = rune(pt.Letter[0])
			}
			g.board.Place(row, col, tile.Tile{Letter: letter, Points: int(pt.Points)})
		}
	}
	return ""
}

func (g *LocalGame) applyEndGame(m wire.Message) string {
	g.resetToLobby()
	for _, s := range m.Scores {
		if c := g.clientOf(s.ID); c != nil {
			c.Score = s.Score
		}
	}
	return "Game over!"
}

func (g *LocalGame) resetToLobby() {
	g.lobby = true
	g.started = false
	g.board = nil
	g.turnID = 0
	g.tilesLeft = 0
	g.rack = nil
	g.otherCounts = nil
	for _, c := range g.clients {
		c.Ready = false
	}
}

func (g *LocalGame) clientOf(id uint8) *LocalClient {
	idx := g.indexOf(id)
	if idx < 0 {
		return nil
	}
	return g.clients[idx]
}

func (g *LocalGame) indexOf(id uint8) int {
	for i, c := range g.clients {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (g *LocalGame) nameOf(id uint8) string {
	if c := g.clientOf(id); c != nil {
		return c.Name
	}
	return fmt.Sprintf("player %d", id)
}
