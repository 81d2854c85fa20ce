// Package colorcache assigns each task id a truecolor prefix, derived
// deterministically from a hash of the id rather than cycled from a fixed
// palette, and memoizes the rendered escape sequence per id.
package colorcache

import (
	"fmt"
	"hash/fnv"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Cache memoizes the colorized "[task_id]" prefix for every task id it has
// been asked to render, so repeated lines for the same task reuse the
// already-rendered prefix string instead of recomputing its hash and escape
// sequence.
type Cache struct {
	mu       sync.Mutex
	prefixes map[string]string
	truecolr bool
}

// New returns a Cache that probes the current process's stdout for 24-bit
// color support by checking both that stdout is a terminal and that
// COLORTERM advertises truecolor.
func New() *Cache {
	return &Cache{
		prefixes: make(map[string]string),
		truecolr: supportsTruecolor(),
	}
}

func supportsTruecolor() bool {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return false
	}
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	return colorterm == "truecolor" || colorterm == "24bit"
}

// Prefix returns "[id]" colored with a truecolor derived from a 64-bit hash
// of id: the low byte is red, the next green, the next blue. If the terminal
// does not advertise 24-bit color support, the prefix is returned uncolored.
func (c *Cache) Prefix(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.prefixes[id]; ok {
		return p
	}

	bracketed := fmt.Sprintf("[%s]", id)
	var p string
	if c.truecolr {
		r, g, b := colorFromHash(hashID(id))
		p = color.RGB(r, g, b).Sprint(bracketed)
	} else {
		p = bracketed
	}

	c.prefixes[id] = p
	return p
}

func hashID(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func colorFromHash(hash uint64) (r, g, b int) {
	r = int(hash & 0xFF)
	g = int((hash >> 8) & 0xFF)
	b = int((hash >> 16) & 0xFF)
	return
}
