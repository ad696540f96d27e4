package engine

import (
	"fmt"
	"math/rand"

	"lexigrid/board"
	"lexigrid/tile"
	"lexigrid/wire"
)

// handleReady toggles readiness in the lobby and starts a game once more
// than one client is seated and all are ready. Ignored outside the lobby.
func (g *Game) handleReady(c *Client, m wire.Message) error {
	if !g.lobby {
		return nil
	}
	c.ready = !c.ready
	if len(g.clients) > 1 && g.allReady() {
		g.startGame()
		return nil
	}
	g.broadcast(wire.Message{Tag: wire.TagPlayerReady, PlayerID: c.playerID})
	return nil
}

// handleChat fans a chat message out to every seated client, including the
// sender.
func (g *Game) handleChat(c *Client, m wire.Message) error {
	g.broadcast(wire.Message{Tag: wire.TagPlayerChat, PlayerID: c.playerID, Text: m.Text})
	return nil
}

// handleLeave removes c from the game and reacts per its position: starting
// a game if the lobby just filled up with ready clients, ending the game if
// too few clients remain, or passing along a held turn.
func (g *Game) handleLeave(c *Client) {
	idx := g.indexOfClient(c)
	if idx < 0 {
		return
	}
	wasTurnHolder := !g.lobby && int(c.playerID) == g.turnPlayerID
	leaverState := c.state
	g.clients = append(g.clients[:idx], g.clients[idx+1:]...)
	delete(g.byConn, c.conn)
	g.broadcast(wire.Message{Tag: wire.TagPlayerLeft, PlayerID: c.playerID})

	switch {
	case g.lobby:
		if len(g.clients) >= 2 && g.allReady() {
			g.startGame()
		}
	case len(g.clients) < 2:
		g.deductRackPoints(nil)
		g.broadcastEndGame()
		g.resetToLobby()
	case wasTurnHolder:
		if leaverState != nil {
			g.bag.Return(leaverState.Rack, g.shuffleFunc)
		}
		next := g.clients[idx%len(g.clients)]
		g.turnPlayerID = int(next.playerID)
		g.sendStartTurn()
	}
}

// handleTileExchange swaps tiles for the turn holder, then ends the turn
// without scoring.
func (g *Game) handleTileExchange(c *Client, m wire.Message) error {
	if err := g.requireTurn(c); err != nil {
		return err
	}
	if g.bag.Len() < 7 {
		return rejection("There are less than 7 tiles left!")
	}
	if len(m.TileIDs) == 0 {
		return rejection("Tile exchange requires at least one selected tile!")
	}
	ids := make([]tile.ID, len(m.TileIDs))
	for i, id := range m.TileIDs {
		ids[i] = tile.ID(id)
	}
	for _, id := range ids {
		if c.state.indexOfTile(id) < 0 {
			return rejection("Selected tiles do not belong to player!")
		}
	}
	removed := c.state.removeTiles(ids)
	g.bag.Return(removed, g.shuffleFunc)
	drawn := g.bag.Draw(len(removed))
	c.state.Rack = append(c.state.Rack, drawn...)
	g.broadcastExcept(c, wire.Message{Tag: wire.TagNotification, Text: fmt.Sprintf("%s exchanged tiles", c.name)})
	c.conn.Send(wire.Message{Tag: wire.TagNotification, Text: "You exchanged tiles"})
	g.endOfScorelessTurn()
	return nil
}

// requireTurn rejects a message unless the game is running and c holds the turn.
func (g *Game) requireTurn(c *Client) error {
	if g.lobby || int(c.playerID) != g.turnPlayerID {
		return rejection("Not player's turn!")
	}
	return nil
}

// startGame deals racks to every seated client and begins the first turn.
// Grounded on the deal-and-announce step of the teacher's handleGameStart.
func (g *Game) startGame() {
	g.lobby = false
	g.board = board.New()
	g.bag = tile.NewBag(g.shuffleFunc)
	g.turnsWithoutScore = 0
	for _, c := range g.clients {
		c.state = &PlayerState{Rack: g.bag.Draw(7)}
	}
	var idx int
	if g.startIndexFunc != nil {
		idx = g.startIndexFunc(len(g.clients))
	} else {
		idx = rand.Intn(len(g.clients))
	}
	g.turnPlayerID = int(g.clients[idx].playerID)
	g.broadcast(wire.Message{Tag: wire.TagNotification, Text: "Game started!"})
	g.sendStartTurn()
}

// endOfScorelessTurn implements the shared "turn produced no score" path used
// by both TileExchange and a PlaceTiles skip.
func (g *Game) endOfScorelessTurn() {
	if g.turnsWithoutScore == 5 {
		g.broadcast(wire.Message{Tag: wire.TagNotification, Text: "Game over! Six consecutive turns without a score."})
		g.deductRackPoints(nil)
		g.broadcastEndGame()
		g.resetToLobby()
		return
	}
	g.turnsWithoutScore++
	g.broadcast(wire.Message{Tag: wire.TagEndTurn, PlayerID: uint8(g.turnPlayerID), Score: g.scoreOf(g.turnPlayerID), Placed: nil})
	g.advanceTurnNext()
	g.sendStartTurn()
}

// advanceTurnNext moves the turn to the next seated client in insertion
// order, cyclically.
func (g *Game) advanceTurnNext() {
	idx := g.indexOfPlayerID(g.turnPlayerID)
	next := (idx + 1) % len(g.clients)
	g.turnPlayerID = int(g.clients[next].playerID)
}

func (g *Game) scoreOf(playerID int) int16 {
	idx := g.indexOfPlayerID(playerID)
	if idx < 0 || g.clients[idx].state == nil {
		return 0
	}
	return g.clients[idx].state.Score
}

// sendStartTurn broadcasts a fresh StartTurn to every seated client, each
// with its own rack and the others' tile counts.
func (g *Game) sendStartTurn() {
	for _, c := range g.clients {
		g.sendStartTurnTo(c)
	}
}

func (g *Game) sendStartTurnTo(c *Client) {
	counts := make([]wire.TileCount, 0, len(g.clients)-1)
	for _, other := range g.clients {
		if other == c || other.state == nil {
			continue
		}
		counts = append(counts, wire.TileCount{ID: other.playerID, Count: uint8(len(other.state.Rack))})
	}
	c.conn.Send(wire.Message{
		Tag:        wire.TagStartTurn,
		TurnID:     uint8(g.turnPlayerID),
		TilesLeft:  uint8(g.bag.Len()),
		Rack:       rackTiles(c.state),
		TileCounts: counts,
	})
}

func rackTiles(state *PlayerState) []wire.RackTile {
	rack := make([]wire.RackTile, len(state.Rack))
	for i, t := range state.Rack {
		letter := ""
		if !t.IsBlank() {
			letter = string(t.Letter)
		}
		rack[i] = wire.RackTile{TileID: uint8(t.ID), Points: uint8(t.Points), Letter: letter}
	}
	return rack
}

// deductRackPoints subtracts each remaining seated client's (other than
// exclude) unplayed rack points from their score and notifies them of the
// deduction, returning the sum deducted.
func (g *Game) deductRackPoints(exclude *Client) int {
	total := 0
	for _, c := range g.clients {
		if c == exclude || c.state == nil {
			continue
		}
		pts := c.state.rackPoints()
		c.state.Score -= int16(pts)
		total += pts
		c.conn.Send(wire.Message{
			Tag:  wire.TagNotification,
			Text: fmt.Sprintf("You lost %d points for %d unplayed tiles", pts, len(c.state.Rack)),
		})
	}
	return total
}

func (g *Game) broadcastEndGame() {
	scores := make([]wire.PlayerScore, len(g.clients))
	for i, c := range g.clients {
		var score int16
		if c.state != nil {
			score = c.state.Score
		}
		scores[i] = wire.PlayerScore{ID: c.playerID, Score: score}
	}
	g.broadcast(wire.Message{Tag: wire.TagEndGame, Scores: scores})
}

// resetToLobby returns the engine to the lobby without tearing the Game down.
func (g *Game) resetToLobby() {
	g.lobby = true
	g.turnPlayerID = -1
	g.turnsWithoutScore = 0
	g.board = nil
	g.bag = tile.Bag{}
	for _, c := range g.clients {
		c.state = nil
		c.ready = false
	}
}
