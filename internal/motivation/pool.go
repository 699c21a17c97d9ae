// Package motivation publishes encouragement when a session reaches a count
// milestone. Generated messages are fetched asynchronously and never delay
// frame processing.
package motivation

import (
	"math/rand/v2"
	"slices"
	"sync"
)

// Fallback is published when the pool is empty.
const Fallback = "Great job! Keep pushing!"

// DefaultMessages seed every new pool.
var DefaultMessages = []string{
	"Great start! Keep going",
	"Nice rep! Stay strong",
	"You're doing amazing!",
	"Keep pushing, you got this!",
	"Form looks solid 👌",
	"Strong work! Stay focused!",
	"Consistency wins",
	"Keep breathing, keep moving!",
	"Power through!",
	"Excellent effort!",
}

// Milestones are the counts that trigger a message.
var Milestones = []int{1, 3, 5, 10, 15, 20, 30, 40, 50, 60, 70}

// IsMilestone reports whether n is one of the Milestones.
func IsMilestone(n int) bool {
	return slices.Contains(Milestones, n)
}

// Pool is a growing set of messages safe for concurrent use.
// Generated messages are appended; the seed messages are never replaced.
type Pool struct {
	mu       sync.RWMutex
	messages []string
}

// NewPool creates a pool seeded with messages.
func NewPool(messages ...string) *Pool {
	return &Pool{messages: slices.Clone(messages)}
}

// Add appends a message, ignoring empty strings and duplicates.
func (p *Pool) Add(msg string) {
	if msg == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if slices.Contains(p.messages, msg) {
		return
	}
	p.messages = append(p.messages, msg)
}

// Pick returns a random message, or Fallback when the pool is empty.
func (p *Pool) Pick() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.messages) == 0 {
		return Fallback
	}
	return p.messages[rand.IntN(len(p.messages))]
}

// Len returns the number of messages.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.messages)
}

// Messages returns a copy of the pool contents.
func (p *Pool) Messages() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.messages)
}
