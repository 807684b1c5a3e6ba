package solver

import (
	"context"
	"errors"
	"time"

	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/ports"
)

// DLXSolver implements Algorithm X / Dancing Links for Sudoku.
// Exact-cover mapping for an N×N board: 4·N² columns (constraints) and
// N³ rows (r,c,v candidates). Column blocks, each N² wide:
//
//	0 -> cell (r,c)
//	1 -> row r has number v
//	2 -> col c has number v
//	3 -> box b has number v, b = (r/br)*(N/bc) + c/bc
type DLXSolver struct{}

func NewDLXSolver() *DLXSolver { return &DLXSolver{} }

// node/column structures (classic dancing links)
type node struct {
	left, right, up, down *node
	col                   *column
	rowIdx                int // identifies (r,c,v) row
}
type column struct {
	node
	size   int
	name   int
	active bool // whether this constraint column is currently uncovered
}

type dlx struct {
	n, br, bc int
	cols      []*column
	rowHead   []*node
	sol       []*node
	solLen    int
	nodes     int
	activeCnt int // number of active (uncovered) columns
}

func newDLX(n, br, bc int) *dlx {
	cells := n * n
	d := &dlx{
		n: n, br: br, bc: bc,
		cols:    make([]*column, 4*cells),
		rowHead: make([]*node, cells*n),
		sol:     make([]*node, cells*n),
	}
	// build columns
	for i := range d.cols {
		c := &column{name: i, active: true}
		c.up = &c.node
		c.down = &c.node
		d.cols[i] = c
	}
	d.activeCnt = len(d.cols)

	// build rows for all (r,c,v)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			for v := 1; v <= n; v++ {
				row := d.rowIndex(r, c, v)
				var first *node
				var prev *node
				for _, colID := range d.rowColumns(r, c, v) {
					col := d.cols[colID]
					nd := &node{col: col, rowIdx: row}
					// vertical insert (at bottom)
					nd.down = &col.node
					nd.up = col.node.up
					col.node.up.down = nd
					col.node.up = nd
					col.size++
					// horizontal ring for the 4 nodes of the row
					if first == nil {
						first = nd
						nd.left = nd
						nd.right = nd
					} else {
						nd.left = prev
						nd.right = prev.right
						prev.right.left = nd
						prev.right = nd
					}
					prev = nd
				}
				d.rowHead[row] = first
			}
		}
	}
	return d
}

func (d *dlx) rowIndex(r, c, v int) int {
	return (r*d.n+c)*d.n + (v - 1)
}

func (d *dlx) rowColumns(r, c, v int) [4]int {
	cells := d.n * d.n
	cell := r*d.n + c
	rowN := cells + r*d.n + (v - 1)
	colN := 2*cells + c*d.n + (v - 1)
	box := (r/d.br)*(d.n/d.bc) + c/d.bc
	boxN := 3*cells + box*d.n + (v - 1)
	return [4]int{cell, rowN, colN, boxN}
}

// core operations
func cover(col *column, d *dlx) {
	if col.active {
		col.active = false
		d.activeCnt--
	}
	for i := col.down; i != &col.node; i = i.down {
		for j := i.right; j != i; j = j.right {
			j.down.up = j.up
			j.up.down = j.down
			j.col.size--
		}
	}
}
func uncover(col *column, d *dlx) {
	for i := col.up; i != &col.node; i = i.up {
		for j := i.left; j != i; j = j.left {
			j.col.size++
			j.down.up = j
			j.up.down = j
		}
	}
	if !col.active {
		col.active = true
		d.activeCnt++
	}
}

// choose the active column with the smallest size
func chooseColumn(d *dlx) *column {
	var best *column
	for _, c := range d.cols {
		if c.active {
			if best == nil || c.size < best.size {
				best = c
				if best.size == 0 {
					break
				}
			}
		}
	}
	return best
}

func (d *dlx) search(ctx context.Context, k int, wantCount int, found *int) bool {
	// cancellation check
	select {
	case <-ctx.Done():
		return true // stop search
	default:
	}
	// all constraints covered → solution
	if d.activeCnt == 0 {
		d.solLen = k
		(*found)++
		return *found >= wantCount
	}

	c := chooseColumn(d)
	if c == nil || c.size == 0 {
		return false
	}
	cover(c, d)
	for r := c.down; r != &c.node; r = r.down {
		d.nodes++
		d.sol[k] = r
		// cover other columns for this row
		for j := r.right; j != r; j = j.right {
			if j.col.active {
				cover(j.col, d)
			}
		}
		if d.search(ctx, k+1, wantCount, found) {
			// back out coverings done for this row before exiting
			for j := r.left; j != r; j = j.left {
				uncover(j.col, d)
			}
			uncover(c, d)
			return true
		}
		// backtrack: uncover in reverse order
		for j := r.left; j != r; j = j.left {
			uncover(j.col, d)
		}
	}
	uncover(c, d)
	return false
}

// apply givens by selecting corresponding rows and covering their columns
func (d *dlx) applyGiven(r, c, v int) error {
	head := d.rowHead[d.rowIndex(r, c, v)]
	if head == nil {
		return errors.New("invalid row mapping")
	}
	// a column already covered means two givens claim the same constraint
	for j := head; ; j = j.right {
		if !j.col.active {
			return errors.New("conflicting givens")
		}
		if j.right == head {
			break
		}
	}
	for j := head; ; j = j.right {
		cover(j.col, d)
		if j.right == head {
			break
		}
	}
	return nil
}

func loadDLX(b *domain.Board) (*dlx, error) {
	br, bc := b.Variant().Box()
	d := newDLX(b.N, br, bc)
	for r := 0; r < b.N; r++ {
		for c := 0; c < b.N; c++ {
			if v := int(b.Values[r][c]); v > 0 {
				if v > b.N {
					return nil, errors.New("invalid given")
				}
				if err := d.applyGiven(r, c, v); err != nil {
					return nil, err
				}
			}
		}
	}
	return d, nil
}

func (s *DLXSolver) Solve(ctx context.Context, b *domain.Board) (*domain.Board, ports.Stats, error) {
	start := time.Now()
	d, err := loadDLX(b)
	if err != nil {
		return nil, ports.Stats{}, err
	}
	found := 0
	_ = d.search(ctx, 0, 1, &found)
	if found < 1 {
		return nil, ports.Stats{Nodes: d.nodes, Duration: time.Since(start)}, errors.New("no solution")
	}
	// search only records the rows it chose; givens are copied from the input
	out := b.Clone()
	for i := 0; i < d.solLen; i++ {
		r, c, v := d.decodeRow(d.sol[i].rowIdx)
		out.Values[r][c] = uint8(v)
	}
	return out, ports.Stats{Nodes: d.nodes, Duration: time.Since(start)}, nil
}

func (d *dlx) decodeRow(row int) (r, c, v int) {
	cell := row / d.n
	v = (row % d.n) + 1
	r = cell / d.n
	c = cell % d.n
	return
}

func (s *DLXSolver) Unique(ctx context.Context, b *domain.Board) (bool, ports.Stats, error) {
	start := time.Now()
	d, err := loadDLX(b)
	if err != nil {
		return false, ports.Stats{}, err
	}
	found := 0
	_ = d.search(ctx, 0, 2, &found) // stop after finding 2 solutions
	unique := found == 1
	return unique, ports.Stats{Nodes: d.nodes, Duration: time.Since(start)}, nil
}
