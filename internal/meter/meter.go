// Package meter tracks running averages of scalar training metrics.
package meter

import (
	"fmt"
	"strings"
)

// AverageMeter computes and stores the average and current value.
//
// Invariant: Avg == Sum / Count after every Update with Count > 0.
// The zero value is ready to use.
type AverageMeter struct {
	Val   float64 // Last value passed to Update
	Sum   float64 // Weighted sum of all values
	Count float64 // Sum of all weights
	Avg   float64 // Sum / Count
}

// NewAverageMeter returns a meter in the reset state.
func NewAverageMeter() *AverageMeter {
	m := &AverageMeter{}
	m.Reset()
	return m
}

// Reset clears all four fields to zero.
func (m *AverageMeter) Reset() {
	m.Val = 0
	m.Sum = 0
	m.Count = 0
	m.Avg = 0
}

// Update records val with weight n (typically the batch size).
//
// n is not validated. If the cumulative count is zero after the update,
// Avg becomes NaN or ±Inf; callers must pass positive weights.
func (m *AverageMeter) Update(val, n float64) {
	m.Val = val
	m.Sum += val * n
	m.Count += n
	m.Avg = m.Sum / m.Count
}

// Add records val with weight 1.
func (m *AverageMeter) Add(val float64) {
	m.Update(val, 1)
}

// String formats the meter as "val (avg)".
func (m *AverageMeter) String() string {
	return fmt.Sprintf("%.4f (%.4f)", m.Val, m.Avg)
}

// Set is a group of named meters kept in insertion order. The zero value
// is an empty set ready to use.
type Set struct {
	names  []string
	meters map[string]*AverageMeter
}

// NewSet creates a set with one meter per name.
func NewSet(names ...string) *Set {
	s := &Set{meters: make(map[string]*AverageMeter, len(names))}
	for _, name := range names {
		s.Get(name)
	}
	return s
}

// Get returns the meter for name, creating it if needed.
func (s *Set) Get(name string) *AverageMeter {
	if m, ok := s.meters[name]; ok {
		return m
	}
	if s.meters == nil {
		s.meters = make(map[string]*AverageMeter)
	}
	m := NewAverageMeter()
	s.names = append(s.names, name)
	s.meters[name] = m
	return m
}

// Names returns meter names in insertion order.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// ResetAll resets every meter in the set.
func (s *Set) ResetAll() {
	for _, m := range s.meters {
		m.Reset()
	}
}

// Averages returns the current average of every meter.
func (s *Set) Averages() map[string]float64 {
	out := make(map[string]float64, len(s.meters))
	for name, m := range s.meters {
		out[name] = m.Avg
	}
	return out
}

// Summary formats the set as "name val (avg) | name val (avg)".
func (s *Set) Summary() string {
	parts := make([]string, 0, len(s.names))
	for _, name := range s.names {
		parts = append(parts, name+" "+s.meters[name].String())
	}
	return strings.Join(parts, " | ")
}
