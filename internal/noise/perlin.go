package noise

const (
	// DefaultPerlinSeed is the seed of a Perlin built by NewPerlin.
	DefaultPerlinSeed = 0
	// DefaultPerlinPeriod is the wrap extent used once periodicity is enabled
	// without an explicit period.
	DefaultPerlinPeriod = 256
)

// Scale factors mapping the summed surflets of each dimension to roughly
// [-1, 1]. They are the reciprocal of the largest reachable sum for the
// gradient sets in gradient.go.
const (
	perlinScale2 = 3.1604938271604937
	perlinScale3 = 3.8898553255531074
	perlinScale4 = 4.424369240215691
)

var defaultTable = NewPermutationTable(DefaultPerlinSeed)

// Perlin is gradient lattice noise built from compactly supported surflets.
// Output is continuous everywhere, zero at every lattice point, and usually
// within [-1, 1].
type Perlin[T Float] struct {
	table    *PermutationTable
	seed     int64
	period   int
	periodic bool
}

// NewPerlin returns a non-periodic generator with the default seed.
func NewPerlin[T Float]() Perlin[T] {
	return Perlin[T]{
		table:  defaultTable,
		seed:   DefaultPerlinSeed,
		period: DefaultPerlinPeriod,
	}
}

// WithSeed returns a copy using the permutation table for seed.
func (p Perlin[T]) WithSeed(seed int64) Perlin[T] {
	if p.seed == seed && p.table != nil {
		return p
	}
	p.seed = seed
	p.table = NewPermutationTable(seed)
	return p
}

// WithPeriod returns a copy whose lattice wraps every period units along each
// axis, making the output seamlessly tileable. Periods below 1 are treated
// as 1.
func (p Perlin[T]) WithPeriod(period int) Perlin[T] {
	if period < 1 {
		period = 1
	}
	p.period = period
	p.periodic = true
	return p
}

// Seed returns the seed the permutation table was built from.
func (p Perlin[T]) Seed() int64 { return p.seed }

// Period returns the wrap extent.
func (p Perlin[T]) Period() int { return p.period }

// Periodic reports whether lattice coordinates wrap.
func (p Perlin[T]) Periodic() bool { return p.periodic }

// Get2 samples the field at a two-dimensional point.
func (p Perlin[T]) Get2(point Point2[T]) T {
	var near, far, dist [2]T
	var lo, hi, corner [2]int
	return p.surflets(point[:], near[:], far[:], dist[:], lo[:], hi[:], corner[:], gradients2) * perlinScale2
}

// Get3 samples the field at a three-dimensional point.
func (p Perlin[T]) Get3(point Point3[T]) T {
	var near, far, dist [3]T
	var lo, hi, corner [3]int
	return p.surflets(point[:], near[:], far[:], dist[:], lo[:], hi[:], corner[:], gradients3) * perlinScale3
}

// Get4 samples the field at a four-dimensional point.
func (p Perlin[T]) Get4(point Point4[T]) T {
	var near, far, dist [4]T
	var lo, hi, corner [4]int
	return p.surflets(point[:], near[:], far[:], dist[:], lo[:], hi[:], corner[:], gradients4) * perlinScale4
}

// surflets sums the contribution of every corner of the lattice cell that
// contains point. Corners are visited with axis 0 varying fastest. All slices
// are scratch space with the point's dimension.
func (p Perlin[T]) surflets(point, near, far, dist []T, lo, hi, corner []int, grads []gradient) T {
	table := p.table
	if table == nil {
		table = defaultTable
	}

	for a, x := range point {
		fl := floor(x)
		near[a] = x - fl
		far[a] = near[a] - 1

		c := int(fl)
		if p.periodic {
			c = modulo(c, p.period)
			lo[a], hi[a] = c, modulo(c+1, p.period)
		} else {
			lo[a], hi[a] = c, c+1
		}
	}

	var sum T
	for c := 0; c < 1<<len(point); c++ {
		for a := range point {
			if c>>a&1 == 0 {
				corner[a], dist[a] = lo[a], near[a]
			} else {
				corner[a], dist[a] = hi[a], far[a]
			}
		}
		sum += surflet(dist, pickGradient(grads, table.Hash(corner)))
	}
	return sum
}

// surflet is (1-|d|²)⁴·(d·g) inside the unit sphere around the corner and
// zero outside it.
func surflet[T Float](dist []T, g *gradient) T {
	var dd, dg T
	for a, d := range dist {
		dd += d * d
		dg += d * T(g[a])
	}
	attn := 1 - dd
	if attn <= 0 {
		return 0
	}
	attn *= attn
	return attn * attn * dg
}
