package regiongrow

import (
	"cmp"
	"maps"
	"slices"
)

// pair is an unordered pair of segment IDs stored with a < b.
type pair struct {
	a, b int
}

func newPair(x, y int) pair {
	if x > y {
		x, y = y, x
	}
	return pair{a: x, b: y}
}

func comparePairs(p, q pair) int {
	if c := cmp.Compare(p.a, q.a); c != 0 {
		return c
	}
	return cmp.Compare(p.b, q.b)
}

// adjacency tracks which active segments touch each other.
type adjacency struct {
	neighbours map[int]map[int]struct{}
}

// newGridAdjacency links the cells of w, where cell i has segment ID i.
func newGridAdjacency(w Window, conn Connectivity) *adjacency {
	adj := &adjacency{neighbours: make(map[int]map[int]struct{}, w.Area())}
	for i, c := range w.Coordinates() {
		set := make(map[int]struct{}, 8)
		for _, n := range w.Neighbours(c, conn) {
			set[w.Index(n)] = struct{}{}
		}
		adj.neighbours[i] = set
	}
	return adj
}

// pairs lists every adjacent pair once, in ascending (a, b) order.
func (adj *adjacency) pairs() []pair {
	var out []pair
	for a, set := range adj.neighbours {
		for b := range set {
			if a < b {
				out = append(out, pair{a: a, b: b})
			}
		}
	}
	slices.SortFunc(out, comparePairs)
	return out
}

// neighboursOf returns the sorted neighbours of id.
func (adj *adjacency) neighboursOf(id int) []int {
	return slices.Sorted(maps.Keys(adj.neighbours[id]))
}

// merge replaces x and y by into, which inherits every neighbour of both.
func (adj *adjacency) merge(x, y, into int) {
	set := make(map[int]struct{}, len(adj.neighbours[x])+len(adj.neighbours[y]))
	for _, old := range []int{x, y} {
		for n := range adj.neighbours[old] {
			if n == x || n == y {
				continue
			}
			set[n] = struct{}{}
			delete(adj.neighbours[n], old)
			adj.neighbours[n][into] = struct{}{}
		}
		delete(adj.neighbours, old)
	}
	adj.neighbours[into] = set
}
