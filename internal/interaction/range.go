// Package interaction implements the pairwise potentials governing
// which particle pairs interact, their shape parameters, and the
// capture-state bookkeeping attractive potentials need between events.
//
// Grounded on the same tagged-variant-behind-a-small-interface pattern the
// teacher uses throughout (pso.Topology, pso.FitnessFunction, and this
// module's own boundary.Condition): a Range interface with several
// concrete struct implementations, no type hierarchy.
package interaction

// Range decides which particle ID pairs a given Interaction applies to.
type Range interface {
	Contains(i, j int) bool
	Name() string
}

// All matches every pair.
type All struct{}

func (All) Contains(i, j int) bool { return true }
func (All) Name() string { return "All" }

// Single restricts both particles of the pair to the same closed ID
// interval [Min, Max] — the original's "Range2Single".
type Single struct {
	Min, Max int
}

func (s Single) inRange(id int) bool { return id >= s.Min && id <= s.Max }
func (s Single) Contains(i, j int) bool {
	return s.inRange(i) && s.inRange(j)
}
func (s Single) Name() string { return "Single" }

// Pair requires one particle from each of two disjoint ID intervals — the
// original's "Range2Pair", used for cross-species interactions.
type Pair struct {
	Min1, Max1 int
	Min2, Max2 int
}

func (p Pair) in1(id int) bool { return id >= p.Min1 && id <= p.Max1 }
func (p Pair) in2(id int) bool { return id >= p.Min2 && id <= p.Max2 }
func (p Pair) Contains(i, j int) bool {
	return (p.in1(i) && p.in2(j)) || (p.in1(j) && p.in2(i))
}
func (p Pair) Name() string { return "Pair" }

// Chain matches only pairs of adjacent IDs within [Min, Max] — consecutive
// monomers of a polymer chain, the original's "Range2Chains".
type Chain struct {
	Min, Max int
}

func (c Chain) Contains(i, j int) bool {
	lo, hi := i, j
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < c.Min || hi > c.Max {
		return false
	}
	return hi-lo == 1
}
func (c Chain) Name() string { return "Chain" }

// Ring is Chain plus the wraparound bond between Max and Min, closing the
// chain into a loop — the original's "Range2Ring".
type Ring struct {
	Min, Max int
}

func (r Ring) Contains(i, j int) bool {
	if Chain(r).Contains(i, j) {
		return true
	}
	lo, hi := i, j
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo == r.Min && hi == r.Max
}
func (r Ring) Name() string { return "Ring" }

// ChainEnds matches only the bond between a chain's first and last member
// and their immediate chain neighbours — used to give end groups distinct
// functionalization, the original's "Range2ChainEnds".
type ChainEnds struct {
	Min, Max int
}

func (c ChainEnds) Contains(i, j int) bool {
	isEnd := i == c.Min || i == c.Max || j == c.Min || j == c.Max
	return isEnd && Chain{c.Min, c.Max}.Contains(i, j)
}
func (c ChainEnds) Name() string { return "ChainEnds" }

// List matches an explicit, caller-provided set of ID pairs — the
// original's "Range2List", used for hand-specified bond topologies read
// from a configuration file rather than generated by a rule.
type List struct {
	pairs map[[2]int]struct{}
}

// NewList builds a List range from an explicit slice of (i, j) pairs.
func NewList(pairs [][2]int) *List {
	l := &List{pairs: make(map[[2]int]struct{}, len(pairs))}
	for _, p := range pairs {
		l.pairs[normalizedPair(p[0], p[1])] = struct{}{}
	}
	return l
}

func normalizedPair(i, j int) [2]int {
	if i > j {
		i, j = j, i
	}
	return [2]int{i, j}
}

func (l *List) Contains(i, j int) bool {
	_, ok := l.pairs[normalizedPair(i, j)]
	return ok
}
func (l *List) Name() string { return "List" }
