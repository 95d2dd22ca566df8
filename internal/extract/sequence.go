package extract

import (
	"github.com/roach88/plotcheck/internal/scene"
	"github.com/roach88/plotcheck/internal/tolerance"
)

// Sequence is the ordered list of values of one channel.
//
// Numeric channels (color, size, alpha) fill Numeric; discrete channels
// (marker, style) fill Discrete. Labels runs parallel to the values and
// holds the element or legend entry label, which may be empty.
//
// A Sequence is either empty or covers every element of its source.
type Sequence struct {
	Channel  scene.Channel
	Numeric  []tolerance.Vector
	Discrete []string
	Labels   []string
}

// Len returns the number of values.
func (s Sequence) Len() int {
	if s.Channel.Discrete() {
		return len(s.Discrete)
	}
	return len(s.Numeric)
}

// Empty reports whether the sequence holds no values.
func (s Sequence) Empty() bool { return s.Len() == 0 }

// Format returns the i-th value formatted for diagnostics.
func (s Sequence) Format(i int) string {
	if s.Channel.Discrete() {
		return s.Discrete[i]
	}
	return s.Numeric[i].String()
}

// Samples returns up to n formatted values from the start of the sequence.
// n <= 0 returns every value.
func (s Sequence) Samples(n int) []string {
	l := s.Len()
	if n > 0 && n < l {
		l = n
	}
	out := make([]string, l)
	for i := 0; i < l; i++ {
		out[i] = s.Format(i)
	}
	return out
}

// Distinct returns the indices of the first occurrence of each distinct
// value. Discrete channels compare exactly; numeric channels cluster
// greedily under eps.
func (s Sequence) Distinct(eps float64) []int {
	if s.Channel.Discrete() {
		seen := make(map[string]bool)
		var idx []int
		for i, v := range s.Discrete {
			if !seen[v] {
				seen[v] = true
				idx = append(idx, i)
			}
		}
		return idx
	}
	c := tolerance.Cluster(s.Numeric, eps)
	idx := make([]int, 0, c.Len())
	next := 0
	for i, a := range c.Assignment {
		if a == next {
			idx = append(idx, i)
			next++
		}
	}
	return idx
}

// UniqueCount returns the number of distinct values under eps.
func (s Sequence) UniqueCount(eps float64) int {
	if s.Channel.Discrete() {
		return len(tolerance.UniqueIdentifiers(s.Discrete))
	}
	return tolerance.UniqueCount(s.Numeric, eps)
}

// Contains reports whether the i-th value of s has an equivalent in o.
func (s Sequence) Contains(o Sequence, i int, eps float64) bool {
	if s.Channel.Discrete() {
		for _, v := range o.Discrete {
			if v == s.Discrete[i] {
				return true
			}
		}
		return false
	}
	_, ok := tolerance.Match(o.Numeric, s.Numeric[i], eps)
	return ok
}

// ValueEqual reports whether value i of s and value j of o are equivalent.
func (s Sequence) ValueEqual(i int, o Sequence, j int, eps float64) bool {
	if s.Channel.Discrete() {
		return s.Discrete[i] == o.Discrete[j]
	}
	return tolerance.Within(s.Numeric[i], o.Numeric[j], eps)
}

func (s *Sequence) append(label string, num tolerance.Vector, disc string) {
	if s.Channel.Discrete() {
		s.Discrete = append(s.Discrete, disc)
	} else {
		s.Numeric = append(s.Numeric, num)
	}
	s.Labels = append(s.Labels, label)
}

// Concat appends the values of o to s. Both must describe the same channel.
func (s Sequence) Concat(o Sequence) Sequence {
	out := Sequence{Channel: s.Channel}
	out.Numeric = append(append(out.Numeric, s.Numeric...), o.Numeric...)
	out.Discrete = append(append(out.Discrete, s.Discrete...), o.Discrete...)
	out.Labels = append(append(out.Labels, s.Labels...), o.Labels...)
	return out
}
