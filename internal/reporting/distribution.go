// Package reporting computes dashboard statistics over a scoped record set:
// employment rate, attribute distributions, disability quota compliance and
// the skill gap between talents and the job market.
package reporting

import (
	"sort"
	"strings"
)

// Count is one entry of a frequency distribution
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Distribution is a frequency map that remembers first-seen order.
// Values are compared case-insensitively after trimming; the first spelling
// seen is the one reported.
type Distribution struct {
	counts map[string]int
	labels map[string]string
	order  []string
	total  int
}

// NewDistribution creates an empty Distribution.
func NewDistribution() *Distribution {
	return &Distribution{
		counts: make(map[string]int),
		labels: make(map[string]string),
	}
}

// Add counts one occurrence of value. Blank values are ignored.
func (d *Distribution) Add(value string) {
	label := strings.TrimSpace(value)
	key := strings.ToLower(label)
	if key == "" {
		return
	}
	if _, ok := d.counts[key]; !ok {
		d.labels[key] = label
		d.order = append(d.order, key)
	}
	d.counts[key]++
	d.total++
}

// AddAll counts every value in values.
func (d *Distribution) AddAll(values []string) {
	for _, v := range values {
		d.Add(v)
	}
}

// Len returns the number of distinct values.
func (d *Distribution) Len() int {
	return len(d.order)
}

// Total returns the number of counted occurrences.
func (d *Distribution) Total() int {
	return d.total
}

// Get returns the count for value.
func (d *Distribution) Get(value string) int {
	return d.counts[strings.ToLower(strings.TrimSpace(value))]
}

// Counts returns every value ordered by count descending, ties in first-seen order.
func (d *Distribution) Counts() []Count {
	out := make([]Count, 0, len(d.order))
	for _, key := range d.order {
		out = append(out, Count{Value: d.labels[key], Count: d.counts[key]})
	}
	// Stable sort keeps first-seen order among equal counts.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// TopN returns the n most frequent values. n <= 0 returns every value.
func (d *Distribution) TopN(n int) []Count {
	counts := d.Counts()
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// TopValues is TopN without the counts.
func (d *Distribution) TopValues(n int) []string {
	top := d.TopN(n)
	out := make([]string, len(top))
	for i, c := range top {
		out[i] = c.Value
	}
	return out
}
