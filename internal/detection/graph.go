package detection

import "image"

// unionFind is a disjoint-set forest over dense pixel indices.
type unionFind struct {
	parent []int32
	rank   []uint8
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int32, n), rank: make([]uint8, n)}
	for i := range uf.parent {
		uf.parent[i] = int32(i)
	}
	return uf
}

func (uf *unionFind) find(i int32) int32 {
	root := i
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[i] != root {
		next := uf.parent[i]
		uf.parent[i] = root
		i = next
	}
	return root
}

func (uf *unionFind) union(a, b int32) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = rb
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = ra
	default:
		uf.parent[rb] = ra
		uf.rank[ra]++
	}
}

// strokeCompatible reports whether two set stroke widths may join one
// component.
func strokeCompatible(a, b float64) bool {
	return max(a/b, b/a) <= MaxSWTRatio
}

// forEachEdge calls fn for every graph edge of the stroke width map. Each
// set pixel is linked to its right, right-down, down and left-down
// neighbours, so every unordered adjacency is visited once.
func forEachEdge(swt *StrokeWidthMap, fn func(a, b int)) {
	w, h := swt.Width, swt.Height
	offsets := [4]image.Point{{1, 0}, {1, 1}, {0, 1}, {-1, 1}}
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			i := row*w + col
			v := swt.Values[i]
			if v <= 0 {
				continue
			}
			for _, off := range offsets {
				nx, ny := col+off.X, row+off.Y
				if nx < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				n := swt.Values[j]
				if n > 0 && strokeCompatible(v, n) {
					fn(i, j)
				}
			}
		}
	}
}

// ConnectedComponents groups the set pixels of swt into components of
// mutually stroke-compatible neighbours.
//
// Components are numbered in order of their first pixel in row-major order,
// and each component lists its pixels in row-major order.
func ConnectedComponents(swt *StrokeWidthMap) [][]image.Point {
	uf := newUnionFind(len(swt.Values))
	forEachEdge(swt, func(a, b int) {
		uf.union(int32(a), int32(b))
	})

	// label is indexed by root pixel; -1 means the root has no id yet.
	label := make([]int32, len(swt.Values))
	for i := range label {
		label[i] = -1
	}
	var components [][]image.Point
	for i, v := range swt.Values {
		if v <= 0 {
			continue
		}
		root := uf.find(int32(i))
		if label[root] < 0 {
			label[root] = int32(len(components))
			components = append(components, nil)
		}
		id := label[root]
		components[id] = append(components[id], image.Pt(i%swt.Width, i/swt.Width))
	}
	return components
}
