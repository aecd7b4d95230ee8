package detection

import (
	"log/slog"
	"math"
	"sort"

	"github.com/ironsheep/bibnumber/internal/imaging"
)

// mergeStrictness is the largest angle, in radians, between the directions of
// two chains that may still merge.
const mergeStrictness = math.Pi / 6

// Chain is a run of components judged to form one line of text.
//
// P and Q are the endpoint component indices and Direction is the unit vector
// from Q's center to P's center. Dist is the squared distance between those
// centers. A chain whose endpoints share a center has a zero Direction and
// never merges.
type Chain struct {
	P          int     `json:"p"`
	Q          int     `json:"q"`
	Direction  PointF  `json:"direction"`
	Dist       float64 `json:"dist"`
	Components []int   `json:"components"`
}

// MakeChains pairs up similar neighbouring components and greedily merges the
// pairs into lines.
//
// A pair (i, j), i < j, seeds a chain when the ratio of their median stroke
// widths lies within MaxMedianRatio, the ratios of their oriented heights and
// widths lie within MaxDimRatio, and their squared center distance is less
// than MaxDistRatio times the square of the larger of their shorter sides.
// With MaxColorDistance set, their mean colors must also be close.
//
// Seeds are ordered by distance and merged pass by pass until a pass merges
// nothing. The returned chains hold at least MinChainComponents distinct
// components, listed in ascending order.
func MakeChains(components []Component, params Params) []Chain {
	centers := make([]PointF, len(components))
	for i, c := range components {
		centers[i] = c.Center
	}

	var chains []Chain
	for i := range components {
		for j := i + 1; j < len(components); j++ {
			if !pairEligible(components[i], components[j], params) {
				continue
			}
			chains = append(chains, newChain(i, j, centers))
		}
	}
	sort.SliceStable(chains, func(a, b int) bool {
		return chains[a].Dist < chains[b].Dist
	})
	slog.Debug("seeded chains", "components", len(components), "seeds", len(chains))

	chains = mergeToFixpoint(chains, centers)

	var result []Chain
	for _, ch := range chains {
		ch.Components = sortedUnique(ch.Components)
		if len(ch.Components) < MinChainComponents {
			continue
		}
		result = append(result, ch)
	}
	slog.Debug("built chains", "merged", len(chains), "kept", len(result))
	return result
}

// pairEligible reports whether two components are similar and close enough
// to seed a chain.
func pairEligible(a, b Component, params Params) bool {
	if !ratioWithin(a.Median/b.Median, MaxMedianRatio) {
		return false
	}
	if !ratioWithin(a.OrientedHeight/b.OrientedHeight, MaxDimRatio) ||
		!ratioWithin(a.OrientedWidth/b.OrientedWidth, MaxDimRatio) {
		return false
	}
	if params.MaxColorDistance > 0 &&
		imaging.ColorDistance(a.Color, b.Color) > params.MaxColorDistance {
		return false
	}

	dist := a.Center.Sub(b.Center).Norm2()
	side := max(
		math.Min(a.OrientedHeight, a.OrientedWidth),
		math.Min(b.OrientedHeight, b.OrientedWidth),
	)
	return dist/(side*side) < MaxDistRatio
}

// newChain returns the seed chain for components p and q.
func newChain(p, q int, centers []PointF) Chain {
	ch := Chain{P: p, Q: q, Components: []int{p, q}}
	ch.setEndpoints(p, q, centers)
	return ch
}

// setEndpoints moves the chain ends and recomputes Direction and Dist.
func (ch *Chain) setEndpoints(p, q int, centers []PointF) {
	ch.P, ch.Q = p, q
	d := centers[p].Sub(centers[q])
	ch.Dist = d.Norm2()
	ch.Direction, _ = d.normalize()
}

// mergeEndpoints reports whether b can be absorbed into a and, if so, the new
// endpoints of a. Shared endpoints are tried in the order p-p, p-q, q-p, q-q;
// only the first shared pair is tested against the angle threshold.
func mergeEndpoints(a, b Chain) (p, q int, ok bool) {
	switch {
	case a.P == b.P:
		if angleBetween(a.Direction, b.Direction.Neg()) < mergeStrictness {
			return b.Q, a.Q, true
		}
	case a.P == b.Q:
		if angleBetween(a.Direction, b.Direction) < mergeStrictness {
			return b.P, a.Q, true
		}
	case a.Q == b.P:
		if angleBetween(a.Direction, b.Direction) < mergeStrictness {
			return a.P, b.Q, true
		}
	case a.Q == b.Q:
		if angleBetween(a.Direction, b.Direction.Neg()) < mergeStrictness {
			return a.P, b.P, true
		}
	}
	return 0, 0, false
}

// mergePass runs one pass over all ordered chain pairs. Merges are visible to
// the rest of the pass. The input is left untouched; next holds the chains
// that survived the pass in their original order and merges counts the
// chains absorbed.
func mergePass(chains []Chain, centers []PointF) (next []Chain, merges int) {
	work := make([]Chain, len(chains))
	for i, ch := range chains {
		work[i] = ch
		work[i].Components = append([]int(nil), ch.Components...)
	}
	merged := make([]bool, len(work))

	for i := range work {
		for j := range work {
			if i == j || merged[i] || merged[j] {
				continue
			}
			p, q, ok := mergeEndpoints(work[i], work[j])
			if !ok {
				continue
			}
			work[i].Components = append(work[i].Components, work[j].Components...)
			work[i].setEndpoints(p, q, centers)
			merged[j] = true
			merges++
		}
	}

	for i, ch := range work {
		if !merged[i] {
			next = append(next, ch)
		}
	}
	return next, merges
}

// mergeToFixpoint repeats merge passes until one merges nothing. Between
// passes the chains are ordered by descending component count.
//
// Every pass is quadratic in the chain count. Chains are few after component
// filtering, and a smarter search would change the merge order.
func mergeToFixpoint(chains []Chain, centers []PointF) []Chain {
	for pass := 1; ; pass++ {
		next, merges := mergePass(chains, centers)
		slog.Debug("merge pass", "pass", pass, "chains", len(chains), "merges", merges)
		if merges == 0 {
			return chains
		}
		sort.SliceStable(next, func(a, b int) bool {
			return len(next[a].Components) > len(next[b].Components)
		})
		chains = next
	}
}

// sortedUnique returns the distinct values of ids in ascending order.
func sortedUnique(ids []int) []int {
	out := append([]int(nil), ids...)
	sort.Ints(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}
