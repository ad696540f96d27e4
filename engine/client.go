package engine

import (
	"lexigrid/tile"
	"lexigrid/transport"
)

type (
	// PlayerState is a seated client's in-game state. Nil on a Client while
	// the engine is in the lobby.
	PlayerState struct {
		Score int16
		Rack  []tile.Tile
	}

	// Client is one seated connection: its wire transport plus lobby/game state.
	Client struct {
		conn     *transport.Conn
		playerID uint8
		name     string
		ready    bool
		state    *PlayerState
	}
)

// PlayerID is the id assigned to this client at admission time.
func (c *Client) PlayerID() uint8 {
	return c.playerID
}

// Name is the display name the client joined with.
func (c *Client) Name() string {
	return c.name
}

// indexOfTile returns the index of id in the client's rack, or -1 if absent.
func (p *PlayerState) indexOfTile(id tile.ID) int {
	for i, t := range p.Rack {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// removeTiles removes the tiles with the given ids from the rack, returning
// the removed tiles in rack order. Ids not present are ignored by the
// caller's prior validation; this assumes all ids are present.
func (p *PlayerState) removeTiles(ids []tile.ID) []tile.Tile {
	removed := make([]tile.Tile, 0, len(ids))
	idSet := make(map[tile.ID]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}
	kept := p.Rack[:0:0]
	for _, t := range p.Rack {
		if _, ok := idSet[t.ID]; ok {
			removed = append(removed, t)
			continue
		}
		kept = append(kept, t)
	}
	p.Rack = kept
	return removed
}

// rackPoints sums the point value of every tile still in the rack, used for
// end-of-game score deductions.
func (p *PlayerState) rackPoints() int {
	sum := 0
	for _, t := range p.Rack {
		sum += t.Points
	}
	return sum
}
