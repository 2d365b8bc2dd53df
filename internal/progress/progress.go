// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress writes operator-facing "label: n/total" status lines.
package progress

import (
	"fmt"
	"io"
	"sync"
)

// DefaultSteps is how many intermediate lines a Counter writes over its
// full range.
const DefaultSteps = 20

// Counter counts finished units of work and reports at evenly spaced
// intervals. It is safe for concurrent use.
type Counter struct {
	mu    sync.Mutex
	w     io.Writer
	label string
	total int
	n     int
	step  int
	last  int
}

// New returns a Counter that reports to w. A zero total reports every unit.
func New(w io.Writer, label string, total int) *Counter {
	step := 1
	if total > DefaultSteps {
		step = total / DefaultSteps
	}
	return &Counter{w: w, label: label, total: total, step: step, last: -1}
}

// Inc records one finished unit.
func (c *Counter) Inc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	c.report()
}

// Set replaces the count and total, for work whose size is learned as it
// proceeds (such as a paginated harvest).
func (c *Counter) Set(n, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = n
	c.total = total
	c.report()
}

// Count returns the number of units recorded so far.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// report writes a line when the count crossed a step boundary or reached
// the total. Callers hold mu.
func (c *Counter) report() {
	if c.w == nil || c.n == c.last {
		return
	}
	if c.n%c.step != 0 && c.n < c.total {
		return
	}
	c.last = c.n
	if c.total > 0 {
		fmt.Fprintf(c.w, "%s: %d/%d\n", c.label, c.n, c.total)
		return
	}
	fmt.Fprintf(c.w, "%s: %d\n", c.label, c.n)
}
