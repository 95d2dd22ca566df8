// Package tolerance implements uniqueness-within-tolerance counting for
// scalar and color values.
//
// Every verifier that counts distinct values or matches values across
// sources goes through this package. Values are Vectors: scalars are
// 1-component vectors and colors are 4-component RGBA vectors in [0,1].
//
// Clustering is greedy first-fit in input order. The result depends on the
// order of the input; the same input order always yields the same clusters.
package tolerance

import (
	"math"
	"strconv"
	"strings"
)

// Vector is a fixed-length numeric tuple.
type Vector []float64

// Scalar returns a 1-component vector.
func Scalar(v float64) Vector { return Vector{v} }

// Equal reports whether v and o have identical components.
func (v Vector) Equal(o Vector) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

// String formats v for diagnostics: scalars as a bare number, tuples in
// parentheses.
func (v Vector) String() string {
	if len(v) == 1 {
		return formatComponent(v[0])
	}
	parts := make([]string, len(v))
	for i, c := range v {
		parts[i] = formatComponent(c)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatComponent(f float64) string {
	return strconv.FormatFloat(f, 'g', 4, 64)
}

// Distance returns the Euclidean distance between a and b. Vectors of
// different lengths are infinitely far apart.
func Distance(a, b Vector) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	if len(a) == 1 {
		return math.Abs(a[0] - b[0])
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Within reports whether a and b are equivalent under eps. With eps == 0
// this is exact equality.
func Within(a, b Vector, eps float64) bool {
	if eps <= 0 {
		return a.Equal(b)
	}
	return Distance(a, b) <= eps
}

// Clusters is the outcome of greedy clustering.
type Clusters struct {
	// Representatives holds the first member of each cluster, in order of
	// cluster creation.
	Representatives []Vector

	// Assignment maps each input index to its cluster index.
	Assignment []int

	// Sizes holds the member count of each cluster.
	Sizes []int
}

// Len returns the number of clusters.
func (c Clusters) Len() int { return len(c.Representatives) }

// Cluster groups values greedily. Each value joins the first existing
// cluster whose representative is within eps, otherwise it starts a new
// cluster and becomes its representative. Negative eps is treated as 0.
func Cluster(values []Vector, eps float64) Clusters {
	c := Clusters{Assignment: make([]int, len(values))}
	for i, v := range values {
		idx, ok := Match(c.Representatives, v, eps)
		if !ok {
			idx = len(c.Representatives)
			c.Representatives = append(c.Representatives, v)
			c.Sizes = append(c.Sizes, 0)
		}
		c.Assignment[i] = idx
		c.Sizes[idx]++
	}
	return c
}

// UniqueCount returns the number of clusters Cluster would produce.
func UniqueCount(values []Vector, eps float64) int {
	return Cluster(values, eps).Len()
}

// Match returns the index of the first representative within eps of v.
func Match(reps []Vector, v Vector, eps float64) (int, bool) {
	for i, r := range reps {
		if Within(r, v, eps) {
			return i, true
		}
	}
	return -1, false
}

// UniqueIdentifiers returns the distinct identifiers of ids in order of
// first appearance. Identifiers compare by exact equality.
func UniqueIdentifiers(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
