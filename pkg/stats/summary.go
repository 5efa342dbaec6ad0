package stats

import (
	"encoding/binary"
	"math"
	"slices"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"github.com/zeebo/xxh3"
)

// DefaultBins is the histogram resolution used when none is configured.
const DefaultBins = 10

// Summary describes one column over one order of its ranking.
type Summary struct {
	Column string `json:"column" yaml:"column"`
	Title  string `json:"title" yaml:"title"`
	Kind   string `json:"kind" yaml:"kind"`

	// Version is the ranking version the summary was computed for.
	Version uint64 `json:"version" yaml:"version"`
	// Order fingerprints the row order the summary was computed over.
	Order uint64 `json:"order" yaml:"order"`

	// Rows is the length of the order, Count the rows with a value.
	Rows    int `json:"rows" yaml:"rows"`
	Count   int `json:"count" yaml:"count"`
	Missing int `json:"missing" yaml:"missing"`

	Number     *NumberSummary  `json:"number,omitempty" yaml:"number,omitempty"`
	Categories []CategoryCount `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// NumberSummary holds the moments and histogram of a numeric column. All
// fields are zero when no row has a value.
type NumberSummary struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	StdDev float64 `json:"stddev" yaml:"stddev"`

	// Edges has one more entry than Bins. Bin i covers [Edges[i], Edges[i+1]).
	// The last bin includes its upper edge.
	Edges []float64 `json:"edges" yaml:"edges"`
	Bins  []int     `json:"bins" yaml:"bins"`
}

// CategoryCount is the number of rows of one category.
type CategoryCount struct {
	Name  string `json:"name" yaml:"name"`
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// Fingerprint hashes an order of row indices. Equal orders have equal
// fingerprints.
func Fingerprint(order []int) uint64 {
	buf := make([]byte, 0, 8*len(order))
	for _, idx := range order {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(idx))
	}
	return xxh3.Hash(buf)
}

// summarizeNumbers aggregates values; NaN entries are missing. domain fixes
// the histogram range, otherwise the observed extrema are used.
func summarizeNumbers(values []float64, domain *[2]float64, bins int) (*NumberSummary, int) {
	data := make(mstats.Float64Data, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			data = append(data, v)
		}
	}

	s := &NumberSummary{Bins: make([]int, bins)}
	if len(data) > 0 {
		s.Mean, _ = data.Mean()
		s.Median, _ = data.Median()
		s.Min, _ = data.Min()
		s.Max, _ = data.Max()
		s.StdDev, _ = data.StandardDeviation()
	}

	lo, hi := s.Min, s.Max
	if domain != nil {
		lo, hi = min(domain[0], domain[1]), max(domain[0], domain[1])
	}
	s.Edges = make([]float64, bins+1)
	step := (hi - lo) / float64(bins)
	for i := range s.Edges {
		s.Edges[i] = lo + float64(i)*step
	}
	s.Edges[bins] = hi

	for _, v := range data {
		s.Bins[binOf(v, lo, hi, bins)]++
	}
	return s, len(data)
}

func binOf(v, lo, hi float64, bins int) int {
	if hi <= lo {
		return 0
	}
	i := int((v - lo) * float64(bins) / (hi - lo))
	return max(0, min(bins-1, i))
}

type category struct {
	name, label string
}

// countCategories counts names in declaration order of declared, followed
// by undeclared names sorted by name. Empty names are missing.
func countCategories(names []string, declared []category) ([]CategoryCount, int) {
	counts := make(map[string]int, len(declared))
	missing := 0
	for _, n := range names {
		if n == "" {
			missing++
			continue
		}
		counts[n]++
	}

	out := make([]CategoryCount, 0, len(counts))
	seen := make(map[string]bool, len(declared))
	for _, c := range declared {
		seen[c.name] = true
		out = append(out, CategoryCount{Name: c.name, Label: c.label, Count: counts[c.name]})
	}
	var extra []string
	for n := range counts {
		if !seen[n] {
			extra = append(extra, n)
		}
	}
	sort.Strings(extra)
	for _, n := range extra {
		out = append(out, CategoryCount{Name: n, Label: n, Count: counts[n]})
	}
	return slices.Clip(out), missing
}
