package physics

import "math"

// broadGrid buckets bodies into fixed-size cells over the arena's XZ
// plane for broad-phase neighbor queries. Cells hold indices into a
// caller-owned flat body list, not pointers, and the grid is rebuilt
// from scratch before each query pass.
//
// Query results are a superset: the caller still runs the precise
// distance check.
type broadGrid struct {
	cellSize    float64
	invCellSize float64
	offset      float64 // shifts [-extent, extent] coordinates to [0, 2*extent]
	cols, rows  int
	cells       [][]uint32
	scratch     []uint32
}

// newBroadGrid covers the square [-extent, extent] on both axes.
// cellSize should be at least the largest pairwise contact distance.
func newBroadGrid(extent, cellSize float64) *broadGrid {
	span := 2 * extent
	cols := int(math.Ceil(span / cellSize))
	if cols < 1 {
		cols = 1
	}

	cells := make([][]uint32, cols*cols)
	for i := range cells {
		cells[i] = make([]uint32, 0, 4)
	}

	return &broadGrid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		offset:      extent,
		cols:        cols,
		rows:        cols,
		cells:       cells,
		scratch:     make([]uint32, 0, 16),
	}
}

// clear resets all cells, keeping their capacity.
func (g *broadGrid) clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *broadGrid) cellCoords(x, z float64) (col, row int) {
	col = int((x + g.offset) * g.invCellSize)
	row = int((z + g.offset) * g.invCellSize)

	// Out-of-arena positions fold into the edge cells.
	if col < 0 {
		col = 0
	}
	if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

// insert buckets one body index at its position.
func (g *broadGrid) insert(idx uint32, x, z float64) {
	col, row := g.cellCoords(x, z)
	i := row*g.cols + col
	g.cells[i] = append(g.cells[i], idx)
}

// queryRadius returns the indices of all bodies in cells touching the
// circle around (x, z). The returned slice is reused by the next call.
func (g *broadGrid) queryRadius(x, z, radius float64) []uint32 {
	g.scratch = g.scratch[:0]

	minCol, minRow := g.cellCoords(x-radius, z-radius)
	maxCol, maxRow := g.cellCoords(x+radius, z+radius)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			g.scratch = append(g.scratch, g.cells[row*g.cols+col]...)
		}
	}
	return g.scratch
}
