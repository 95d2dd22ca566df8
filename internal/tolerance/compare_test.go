package tolerance

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scalars(vs ...float64) []Vector {
	out := make([]Vector, len(vs))
	for i, v := range vs {
		out[i] = Scalar(v)
	}
	return out
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 0.5, Distance(Scalar(1), Scalar(1.5)))
	assert.InDelta(t, 5.0, Distance(Vector{0, 0}, Vector{3, 4}), 1e-12)
	assert.True(t, math.IsInf(Distance(Vector{0}, Vector{0, 0}), 1))
}

func TestCluster(t *testing.T) {
	c := Cluster(scalars(1.0, 1.05, 2.0, 1.02, 3.0), 0.1)

	require.Equal(t, 3, c.Len())
	assert.Equal(t, scalars(1.0, 2.0, 3.0), c.Representatives)
	assert.Equal(t, []int{0, 0, 1, 0, 2}, c.Assignment)
	assert.Equal(t, []int{3, 1, 1}, c.Sizes)
}

func TestCluster_Empty(t *testing.T) {
	c := Cluster(nil, 0.5)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Assignment)
	assert.Equal(t, 0, UniqueCount([]Vector{}, 0))
}

func TestCluster_BoundaryIsInclusive(t *testing.T) {
	assert.Equal(t, 1, UniqueCount(scalars(0, 0.5), 0.5))
	assert.Equal(t, 2, UniqueCount(scalars(0, 0.5), 0.49))
}

func TestCluster_OrderDependent(t *testing.T) {
	// The representative is the first member seen, so the chain 0, 1, 2
	// collapses differently depending on where it starts.
	assert.Equal(t, 2, UniqueCount(scalars(0, 1, 2), 1))
	assert.Equal(t, 1, UniqueCount(scalars(1, 0, 2), 1))
}

func TestCluster_NegativeToleranceIsExact(t *testing.T) {
	assert.Equal(t, 2, UniqueCount(scalars(1, 1, 1.0000001), -1))
}

func TestCluster_Colors(t *testing.T) {
	red := Vector{1, 0, 0, 1}
	nearRed := Vector{0.995, 0, 0, 1}
	blue := Vector{0, 0, 1, 1}

	assert.Equal(t, 2, UniqueCount([]Vector{red, nearRed, blue}, 0.01))
	assert.Equal(t, 3, UniqueCount([]Vector{red, nearRed, blue}, 0))
}

func TestMatch(t *testing.T) {
	reps := scalars(1, 2, 3)

	idx, ok := Match(reps, Scalar(2.05), 0.1)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	idx, ok = Match(reps, Scalar(5), 0.1)
	assert.False(t, ok)
	assert.Equal(t, -1, idx)

	_, ok = Match(nil, Scalar(1), 1)
	assert.False(t, ok)
}

func TestUniqueIdentifiers(t *testing.T) {
	assert.Equal(t, []string{"o", "s", "^"}, UniqueIdentifiers([]string{"o", "s", "o", "^", "s"}))
	assert.Nil(t, UniqueIdentifiers(nil))
}

func TestVectorString(t *testing.T) {
	assert.Equal(t, "0.5", Scalar(0.5).String())
	assert.Equal(t, "(1, 0.498, 0, 1)", Vector{1, 0.498, 0, 1}.String())
}

// Growing the tolerance never produces more clusters for scalar input.
func TestUniqueCount_MonotonicScalars(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for trial := 0; trial < 500; trial++ {
		n := 1 + r.Intn(12)
		values := make([]Vector, n)
		for i := range values {
			values[i] = Scalar(float64(r.Intn(50)) / 10)
		}
		t1 := float64(r.Intn(30)) / 10
		t2 := t1 + float64(1+r.Intn(20))/10

		c1 := UniqueCount(values, t1)
		c2 := UniqueCount(values, t2)
		require.GreaterOrEqual(t, c1, c2, "values=%v t1=%v t2=%v", values, t1, t2)
	}
}

// Well-separated palettes keep the property for colors as well.
func TestUniqueCount_MonotonicPalette(t *testing.T) {
	palette := []Vector{
		{0.12, 0.47, 0.71, 1},
		{1.0, 0.5, 0.05, 1},
		{0.17, 0.63, 0.17, 1},
		{0.84, 0.15, 0.16, 1},
	}
	var values []Vector
	for i := 0; i < 20; i++ {
		values = append(values, palette[i%len(palette)])
	}

	prev := UniqueCount(values, 0)
	for _, eps := range []float64{0.001, 0.01, 0.1, 0.3, 0.6, 1.0, 2.0} {
		got := UniqueCount(values, eps)
		assert.LessOrEqual(t, got, prev, "eps=%v", eps)
		prev = got
	}
	assert.Equal(t, 1, UniqueCount(values, 2.0))
}

// At zero tolerance the count equals the number of syntactically distinct values.
func TestUniqueCount_ZeroToleranceIsExact(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		n := 1 + r.Intn(20)
		values := make([]Vector, n)
		distinct := make(map[[4]float64]bool)
		for i := range values {
			v := Vector{float64(r.Intn(3)), float64(r.Intn(3)), 0, 1}
			values[i] = v
			distinct[[4]float64{v[0], v[1], v[2], v[3]}] = true
		}
		require.Equal(t, len(distinct), UniqueCount(values, 0))
	}
}
