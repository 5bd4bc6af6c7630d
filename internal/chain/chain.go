// Package chain implements the level-chain enumerator (component F):
// generation, in a fixed total order, of every composition of a
// target_level into lengthLC non-negative integers each bounded by L-1.
// Grounded on the reference implementation's reset_levelChain /
// getNext_levelChain / generate_levelChain_2ndToLast_recursive in enumNG.c,
// reframed per spec §4.3 as an explicit odometer over the chain's prefix.
package chain

// Length computes length_LC for password length p under n-gram order n,
// per spec §4.3. When EP is checked against the candidate's terminal
// (n-1)-gram, the chain has one IP slot and (p-n+1) CP-production slots,
// and the EP check reads the last of those rather than a slot of its own;
// see DESIGN.md for how this was reconciled against the conflicting prose
// in spec §4.3 and the worked example in §8.
func Length(p, n int, epUsed bool) int {
	if epUsed {
		return p - (n - 2)
	}
	return p - (n - 3)
}

// Chain is one level-chain odometer for a fixed (lengthLC, targetLevel, L).
// Levels holds the full composition (ℓ0,...,ℓ_{lengthLC-1}); the last entry
// is always the residual implied by the first lengthLC-1 entries.
type Chain struct {
	maxLevel    int // L
	targetLevel int
	levels      []int // length lengthLC
	ok          bool  // false once exhausted
}

// New creates a chain odometer of the given length and resets it to
// targetLevel. If no composition exists (targetLevel out of
// [0, (L-1)*lengthLC]), the returned Chain's Valid() is false.
func New(lengthLC, targetLevel, maxLevel int) *Chain {
	c := &Chain{
		maxLevel:    maxLevel,
		targetLevel: targetLevel,
		levels:      make([]int, lengthLC),
	}
	c.reset()
	return c
}

// Valid reports whether Levels() holds a real composition.
func (c *Chain) Valid() bool { return c.ok }

// Levels returns the current composition. Do not mutate.
func (c *Chain) Levels() []int { return c.levels }

// reset computes the lexicographically smallest composition: for the m =
// lengthLC-1 prefix digits (each in [0, L-1]), the smallest tuple whose sum
// s satisfies targetLevel-s ∈ [0, L-1], i.e. s ∈ [max(0,targetLevel-(L-1)),
// targetLevel]. Completion per spec §4.3: no composition exists if ℓ0 would
// need to exceed min(L-1, targetLevel), i.e. targetLevel > (L-1)*lengthLC
// or targetLevel < 0.
func (c *Chain) reset() {
	m := len(c.levels) - 1
	L1 := c.maxLevel - 1
	lo := c.targetLevel - L1
	if lo < 0 {
		lo = 0
	}
	hi := c.targetLevel
	if hi > m*L1 {
		// no achievable sum within range; clamp so the loop below reports invalid
		hi = m * L1
	}
	if lo > hi || c.targetLevel < 0 || c.targetLevel > L1*len(c.levels) {
		c.ok = false
		return
	}

	sum := 0
	remaining := m
	for i := 0; i < m; i++ {
		remaining--
		maxRest := remaining * L1
		// smallest v such that sum+v <= hi and sum+v+maxRest >= lo
		v := 0
		if sum+v+maxRest < lo {
			v = lo - maxRest - sum
		}
		if v < 0 {
			v = 0
		}
		if sum+v > hi {
			c.ok = false
			return
		}
		c.levels[i] = v
		sum += v
	}
	residual := c.targetLevel - sum
	if residual < 0 || residual > L1 {
		c.ok = false
		return
	}
	c.levels[m] = residual
	c.ok = true
}

// Next advances to the next composition in the fixed total order
// (incrementing the second-to-last chain position fastest, carrying left
// on overflow). Returns false once the space is exhausted.
func (c *Chain) Next() bool {
	if !c.ok {
		return false
	}
	m := len(c.levels) - 1
	L1 := c.maxLevel - 1

	for {
		// increment the m-digit prefix as an odometer, rightmost fastest
		i := m - 1
		for i >= 0 {
			c.levels[i]++
			if c.levels[i] <= L1 {
				break
			}
			c.levels[i] = 0
			i--
		}
		if i < 0 {
			c.ok = false
			return false
		}
		sum := 0
		for j := 0; j < m; j++ {
			sum += c.levels[j]
		}
		residual := c.targetLevel - sum
		if residual >= 0 && residual <= L1 {
			c.levels[m] = residual
			return true
		}
		if sum > c.targetLevel {
			// residual negative for every larger value of this digit too;
			// force carry by maxing out the current least-significant digit
			c.levels[m-1] = L1
		}
	}
}
