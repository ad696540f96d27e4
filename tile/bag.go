package tile

// letterCount pairs a letter (0 for blank) with its point value and how many
// tiles of that letter the bag starts with. Order matches the canonical id
// assignment: tile ids are handed out 0..99 in this table's order.
type letterCount struct {
	letter rune
	points int
	count  int
}

// distribution is the fixed English letter distribution and point values.
// There is no variant support: this is the only distribution the game plays.
var distribution = []letterCount{
	{0, 0, 2}, // blanks
	{'E', 1, 12}, {'A', 1, 9}, {'I', 1, 9}, {'O', 1, 8}, {'N', 1, 6},
	{'R', 1, 6}, {'T', 1, 6}, {'L', 1, 4}, {'S', 1, 4}, {'U', 1, 4},
	{'D', 2, 4}, {'G', 2, 3},
	{'B', 3, 2}, {'C', 3, 2}, {'M', 3, 2}, {'P', 3, 2},
	{'F', 4, 2}, {'H', 4, 2}, {'V', 4, 2}, {'W', 4, 2}, {'Y', 4, 2},
	{'K', 5, 1},
	{'J', 8, 1}, {'X', 8, 1},
	{'Q', 10, 1}, {'Z', 10, 1},
}

// Count is the number of tiles in a full bag.
const Count = 100

// Bag is the ordered sequence of undrawn tiles. Drawing takes from the
// front; returning appends to the back and reshuffles.
type Bag struct {
	tiles []Tile
}

// NewBag creates a full, shuffled 100-tile bag. shuffleFunc is applied to
// the freshly built tile slice in place, the way game.Config.ShuffleUnusedTilesFunc
// shuffles a new game's tiles.
func NewBag(shuffleFunc func([]Tile)) Bag {
	tiles := make([]Tile, 0, Count)
	id := ID(0)
	for _, lc := range distribution {
		for i := 0; i < lc.count; i++ {
			tiles = append(tiles, Tile{ID: id, Letter: lc.letter, Points: lc.points})
			id++
		}
	}
	if shuffleFunc != nil {
		shuffleFunc(tiles)
	}
	return Bag{tiles: tiles}
}

// Len returns the number of tiles remaining in the bag.
func (b Bag) Len() int {
	return len(b.tiles)
}

// Draw removes and returns up to n tiles from the front of the bag.
// Fewer than n tiles are returned if the bag does not have enough.
func (b *Bag) Draw(n int) []Tile {
	if n > len(b.tiles) {
		n = len(b.tiles)
	}
	drawn := make([]Tile, n)
	copy(drawn, b.tiles[:n])
	b.tiles = b.tiles[n:]
	return drawn
}

// Return appends tiles to the back of the bag and reshuffles the whole bag.
func (b *Bag) Return(tiles []Tile, shuffleFunc func([]Tile)) {
	b.tiles = append(b.tiles, tiles...)
	if shuffleFunc != nil {
		shuffleFunc(b.tiles)
	}
}
