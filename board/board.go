// Package board stores the 15x15 grid of squares that players place tiles on.
package board

import (
	"errors"

	"lexigrid/tile"
)

type (
	// SquareType is the kind of premium (or lack of one) a square carries.
	SquareType int

	// Square is a single cell of the board.
	Square struct {
		Type SquareType
		Tile *tile.Tile // nil until a tile is committed here
	}
)

const (
	// Normal is a square with no premium.
	Normal SquareType = iota
	// DLS doubles the letter value of a newly placed tile.
	DLS
	// TLS triples the letter value of a newly placed tile.
	TLS
	// DWS doubles the value of a word a newly placed tile is part of.
	DWS
	// TWS triples the value of a word a newly placed tile is part of.
	TWS
)

// Size is the number of rows and columns on the board.
const Size = 15

// CenterRow and CenterCol locate the mandatory first-move square.
const (
	CenterRow = 7
	CenterCol = 7
)

// Board is the 15x15 grid shared by all players in a game.
type Board struct {
	squares [Size][Size]Square
}

// New creates an empty board with the canonical premium-square layout.
func New() *Board {
	b := &Board{}
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			b.squares[row][col] = Square{Type: premiumLayout[row][col]}
		}
	}
	return b
}

// InBounds reports whether row and col are valid board coordinates.
func InBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

// At returns the square at row, col. Callers must check InBounds first.
func (b *Board) At(row, col int) Square {
	return b.squares[row][col]
}

// IsCommitted reports whether a tile has already been placed at row, col.
func (b *Board) IsCommitted(row, col int) bool {
	return b.squares[row][col].Tile != nil
}

// Place commits a tile to a square. It is an error to place onto a square
// that already carries a committed tile: squares are never cleared once
// populated.
func (b *Board) Place(row, col int, t tile.Tile) error {
	if !InBounds(row, col) {
		return errors.New("board: position out of bounds")
	}
	if b.squares[row][col].Tile != nil {
		return errors.New("board: square already populated")
	}
	tt := t
	b.squares[row][col].Tile = &tt
	return nil
}
