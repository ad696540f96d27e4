package board

// topLeftQuadrant is the canonical 8x8 top-left quadrant of premium squares.
// The full 15x15 board is built by mirroring this quadrant across both the
// vertical and horizontal center lines (row/col 7), so it is specified once.
var topLeftQuadrant = [8][8]SquareType{
	{TWS, Normal, Normal, DLS, Normal, Normal, Normal, TWS},
	{Normal, DWS, Normal, Normal, Normal, TLS, Normal, Normal},
	{Normal, Normal, DWS, Normal, Normal, Normal, DLS, Normal},
	{DLS, Normal, Normal, DWS, Normal, Normal, Normal, DLS},
	{Normal, Normal, Normal, Normal, DWS, Normal, Normal, Normal},
	{Normal, TLS, Normal, Normal, Normal, TLS, Normal, Normal},
	{Normal, Normal, DLS, Normal, Normal, Normal, DLS, Normal},
	{TWS, Normal, Normal, DLS, Normal, Normal, Normal, DWS},
}

// premiumLayout is the full 15x15 board, mirrored from topLeftQuadrant.
var premiumLayout = buildPremiumLayout()

func buildPremiumLayout() [Size][Size]SquareType {
	var layout [Size][Size]SquareType
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			layout[row][col] = topLeftQuadrant[mirrorIndex(row)][mirrorIndex(col)]
		}
	}
	return layout
}

// mirrorIndex maps a 0..14 board index to its 0..7 quadrant index.
func mirrorIndex(i int) int {
	if i <= CenterRow {
		return i
	}
	return Size - 1 - i
}
