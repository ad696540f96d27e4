package engine

import (
	"fmt"
	"sort"
	"strings"

	"lexigrid/board"
	"lexigrid/tile"
	"lexigrid/wire"
)

// resolvedTile is one square of a formed word, whether newly placed this
// turn or already committed to the board.
type resolvedTile struct {
	Row, Col int
	T        tile.Tile
	IsNew    bool
}

// newPlacement is a materialized placement before orientation is known.
type newPlacement struct {
	Row, Col int
	T        tile.Tile
}

// handlePlaceTiles validates and, if valid, commits an end-of-turn word play
// by the turn holder. On any rejection no state changes.
func (g *Game) handlePlaceTiles(c *Client, m wire.Message) error {
	if err := g.requireTurn(c); err != nil {
		return err
	}
	if len(m.Placements) == 0 {
		g.broadcastExcept(c, wire.Message{Tag: wire.TagNotification, Text: fmt.Sprintf("%s skipped", c.name)})
		c.conn.Send(wire.Message{Tag: wire.TagNotification, Text: "You skipped"})
		g.endOfScorelessTurn()
		return nil
	}

	placed, err := g.materialize(c, m.Placements)
	if err != nil {
		return err
	}
	horizontal, err := orientationOf(placed)
	if err != nil {
		return err
	}
	sortPlaced(placed, horizontal)
	placedByRC, err := placedByCoord(placed)
	if err != nil {
		return err
	}
	if err := g.checkCommitted(placedByRC); err != nil {
		return err
	}
	if err := g.checkGaps(placed, horizontal, placedByRC); err != nil {
		return err
	}
	if err := g.checkFirstMove(placed); err != nil {
		return err
	}

	mainDR, mainDC := mainDirection(horizontal)
	crossDR, crossDC := crossDirection(horizontal)
	words := [][]resolvedTile{g.extent(placed[0].Row, placed[0].Col, mainDR, mainDC, placedByRC)}
	for _, p := range placed {
		cw := g.extent(p.Row, p.Col, crossDR, crossDC, placedByRC)
		words = append(words, cw)
	}
	words = filterShortWords(words)

	if g.board.IsCommitted(board.CenterRow, board.CenterCol) && !anyTouchesExisting(words) {
		return rejection("Must connect with pre-existing tiles!")
	}
	if err := g.checkDictionary(words); err != nil {
		return err
	}

	g.commit(c, placed, words)
	return nil
}

// materialize looks up each placement's tile in the player's rack and
// assigns a letter to any blank, without mutating the rack.
func (g *Game) materialize(c *Client, placements []wire.Placement) ([]newPlacement, error) {
	used := make(map[int]bool, len(placements))
	out := make([]newPlacement, len(placements))
	for i, p := range placements {
		idx := -1
		for j, t := range c.state.Rack {
			if used[j] {
				continue
			}
			if t.ID == tile.ID(p.TileID) {
				idx = j
				break
			}
		}
		if idx < 0 {
			return nil, rejection("Placed tiles do not belong to player!")
		}
		used[idx] = true
		t := c.state.Rack[idx]
		if t.IsBlank() {
			if p.Letter == "" {
				return nil, rejection("Blank tiles must be assigned a letter!")
			}
			assigned, err := t.WithLetter(rune(p.Letter[0]))
			if err != nil {
				return nil, rejection("Blank tiles must be assigned a letter!")
			}
			t = assigned
		}
		out[i] = newPlacement{Row: int(p.Position) / board.Size, Col: int(p.Position) % board.Size, T: t}
	}
	return out, nil
}

// orientationOf reports whether placed forms a horizontal line (all share a
// row) or a vertical one (all share a column); a single placement counts as
// horizontal, matching the row-first check order.
func orientationOf(placed []newPlacement) (horizontal bool, err error) {
	sameRow, sameCol := true, true
	for _, p := range placed[1:] {
		if p.Row != placed[0].Row {
			sameRow = false
		}
		if p.Col != placed[0].Col {
			sameCol = false
		}
	}
	switch {
	case sameRow:
		return true, nil
	case sameCol:
		return false, nil
	default:
		return false, rejection("Tiles must form a horizontal or vertical line!")
	}
}

func sortPlaced(placed []newPlacement, horizontal bool) {
	sort.Slice(placed, func(i, j int) bool {
		if horizontal {
			return placed[i].Col < placed[j].Col
		}
		return placed[i].Row < placed[j].Row
	})
}

// placedByCoord indexes placed by board coordinate, rejecting duplicates and
// positions off the board.
func placedByCoord(placed []newPlacement) (map[[2]int]tile.Tile, error) {
	m := make(map[[2]int]tile.Tile, len(placed))
	for _, p := range placed {
		if !board.InBounds(p.Row, p.Col) {
			return nil, rejection("Tiles are overlapping or out of bounds!")
		}
		key := [2]int{p.Row, p.Col}
		if _, dup := m[key]; dup {
			return nil, rejection("Tiles are overlapping or out of bounds!")
		}
		m[key] = p.T
	}
	return m, nil
}

func (g *Game) checkCommitted(placedByRC map[[2]int]tile.Tile) error {
	for rc := range placedByRC {
		if g.board.IsCommitted(rc[0], rc[1]) {
			return rejection("Tiles are overlapping or out of bounds!")
		}
	}
	return nil
}

// checkGaps rejects a line with an empty square between its lowest and
// highest placed coordinate that isn't already committed on the board.
func (g *Game) checkGaps(placed []newPlacement, horizontal bool, placedByRC map[[2]int]tile.Tile) error {
	var lo, hi, fixed int
	if horizontal {
		lo, hi, fixed = placed[0].Col, placed[len(placed)-1].Col, placed[0].Row
	} else {
		lo, hi, fixed = placed[0].Row, placed[len(placed)-1].Row, placed[0].Col
	}
	for v := lo + 1; v <= hi; v++ {
		row, col := fixed, v
		if !horizontal {
			row, col = v, fixed
		}
		if _, ok := placedByRC[[2]int{row, col}]; ok {
			continue
		}
		if g.board.IsCommitted(row, col) {
			continue
		}
		return rejection("Tiles must form a single line!")
	}
	return nil
}

func (g *Game) checkFirstMove(placed []newPlacement) error {
	if g.board.IsCommitted(board.CenterRow, board.CenterCol) {
		return nil
	}
	covered := false
	for _, p := range placed {
		if p.Row == board.CenterRow && p.Col == board.CenterCol {
			covered = true
			break
		}
	}
	if !covered {
		return rejection("The center square must be populated!")
	}
	if len(placed) == 1 {
		return rejection("The first word must be at least 2 characters long!")
	}
	return nil
}

func mainDirection(horizontal bool) (dr, dc int) {
	if horizontal {
		return 0, 1
	}
	return 1, 0
}

func crossDirection(horizontal bool) (dr, dc int) {
	if horizontal {
		return 1, 0
	}
	return 0, 1
}

// extent walks outward from (row, col) along (dr, dc) while a square is
// occupied, either by a newly placed tile or an already-committed one,
// and returns the tiles of the resulting line in order.
func (g *Game) extent(row, col, dr, dc int, placedByRC map[[2]int]tile.Tile) []resolvedTile {
	lo := 0
	for {
		r, c := row+dr*(lo-1), col+dc*(lo-1)
		if !board.InBounds(r, c) {
			break
		}
		if _, ok := placedByRC[[2]int{r, c}]; ok {
			lo--
			continue
		}
		if g.board.IsCommitted(r, c) {
			lo--
			continue
		}
		break
	}
	hi := 0
	for {
		r, c := row+dr*(hi+1), col+dc*(hi+1)
		if !board.InBounds(r, c) {
			break
		}
		if _, ok := placedByRC[[2]int{r, c}]; ok {
			hi++
			continue
		}
		if g.board.IsCommitted(r, c) {
			hi++
			continue
		}
		break
	}
	tiles := make([]resolvedTile, 0, hi-lo+1)
	for k := lo; k <= hi; k++ {
		r, c := row+dr*k, col+dc*k
		if t, ok := placedByRC[[2]int{r, c}]; ok {
			tiles = append(tiles, resolvedTile{Row: r, Col: c, T: t, IsNew: true})
		} else {
			sq := g.board.At(r, c)
			tiles = append(tiles, resolvedTile{Row: r, Col: c, T: *sq.Tile, IsNew: false})
		}
	}
	return tiles
}

// filterShortWords drops formed lines shorter than two tiles: a single
// placed tile with no in-line neighbor does not form a word on its own.
func filterShortWords(words [][]resolvedTile) [][]resolvedTile {
	out := make([][]resolvedTile, 0, len(words))
	for _, w := range words {
		if len(w) >= 2 {
			out = append(out, w)
		}
	}
	return out
}

func anyTouchesExisting(words [][]resolvedTile) bool {
	for _, w := range words {
		for _, rt := range w {
			if !rt.IsNew {
				return true
			}
		}
	}
	return false
}

func wordString(w []resolvedTile) string {
	var sb strings.Builder
	for _, rt := range w {
		sb.WriteRune(rt.T.Letter)
	}
	return sb.String()
}

func (g *Game) checkDictionary(words [][]resolvedTile) error {
	var invalid []string
	seen := make(map[string]bool)
	for _, w := range words {
		s := wordString(w)
		if seen[s] {
			continue
		}
		seen[s] = true
		if !g.dict.Contains(s) {
			invalid = append(invalid, s)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	noun := "word"
	if len(invalid) > 1 {
		noun = "words"
	}
	return rejection(fmt.Sprintf("Invalid %s: %s", noun, strings.Join(invalid, ", ")))
}

// scoreWord returns a formed word's point value: the sum of its letters'
// points (doubled/tripled by a DLS/TLS under a newly placed tile) times the
// product of any DWS/TWS multipliers under newly placed tiles.
func (g *Game) scoreWord(w []resolvedTile) int {
	sum, mult := 0, 1
	for _, rt := range w {
		v := rt.T.Points
		if rt.IsNew {
			switch g.board.At(rt.Row, rt.Col).Type {
			case board.DLS:
				v *= 2
			case board.TLS:
				v *= 3
			case board.DWS:
				mult *= 2
			case board.TWS:
				mult *= 3
			}
		}
		sum += v
	}
	return sum * mult
}

// commit scores and writes placed onto the board, announces each formed
// word's score to every client, refills the rack, and advances or ends the
// game.
func (g *Game) commit(c *Client, placed []newPlacement, words [][]resolvedTile) {
	total := 0
	for _, w := range words {
		score := g.scoreWord(w)
		total += score
		g.broadcast(wire.Message{Tag: wire.TagNotification, Text: fmt.Sprintf("%s - %d points", wordString(w), score)})
	}
	if len(placed) == 7 {
		total += 50
		g.broadcast(wire.Message{Tag: wire.TagNotification, Text: "Bingo! - 50 points"})
	}

	placedIDs := make([]tile.ID, len(placed))
	endTurnPlaced := make([]wire.PlacedTile, len(placed))
	for i, p := range placed {
		g.board.Place(p.Row, p.Col, p.T)
		placedIDs[i] = p.T.ID
		endTurnPlaced[i] = wire.PlacedTile{
			Position: uint8(p.Row*board.Size + p.Col),
			Points:   uint8(p.T.Points),
			Letter:   string(p.T.Letter),
		}
	}
	c.state.removeTiles(placedIDs)
	c.state.Score += int16(total)
	g.turnsWithoutScore = 0
	g.broadcast(wire.Message{
		Tag:      wire.TagEndTurn,
		PlayerID: c.playerID,
		Score:    c.state.Score,
		Placed:   endTurnPlaced,
	})

	if g.bag.Len() > 0 {
		drawn := g.bag.Draw(min(len(placed), g.bag.Len()))
		c.state.Rack = append(c.state.Rack, drawn...)
	}
	if len(c.state.Rack) == 0 && g.bag.Len() == 0 {
		g.broadcastExcept(c, wire.Message{Tag: wire.TagNotification, Text: fmt.Sprintf("%s has played out!", c.name)})
		c.conn.Send(wire.Message{Tag: wire.TagNotification, Text: "You have played out!"})
		awarded := g.deductRackPoints(c)
		c.state.Score += int16(awarded)
		c.conn.Send(wire.Message{Tag: wire.TagNotification, Text: fmt.Sprintf("Awarded %d points", awarded)})
		g.broadcastEndGame()
		g.resetToLobby()
		return
	}
	g.advanceTurnNext()
	g.sendStartTurn()
}
