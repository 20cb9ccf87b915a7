package mention

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// ResultMsg delivers candidates for the resolution that claimed Generation.
type ResultMsg struct {
	Generation uint64
	Trigger    string
	Query      string
	Items      []Item
	Err        error
}

// Resolver turns (trigger, query) into candidates. Each resolution claims a generation
// and only the newest one may commit its result.
type Resolver struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *log.Logger

	generation  uint64
	items       []Item
	loading     bool
	cancelTimer context.CancelFunc
}

// NewResolver returns a resolver. A nil logger discards output.
func NewResolver(logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Resolver{ctx: ctx, cancel: cancel, logger: logger}
}

// Items returns the committed candidates.
func (r *Resolver) Items() []Item {
	return r.items
}

// Loading reports whether a function source is pending.
func (r *Resolver) Loading() bool {
	return r.loading
}

// Generation returns the current generation.
func (r *Resolver) Generation() uint64 {
	return r.generation
}

// Resolve starts a resolution for query. Static sources commit immediately and return a
// nil command. Function sources return a command that waits out the trigger's debounce,
// calls the source and yields a ResultMsg to feed back through Apply.
func (r *Resolver) Resolve(t *Trigger, query string) tea.Cmd {
	r.stopTimer()
	r.generation++

	switch src := t.Source.(type) {
	case StaticSource:
		r.items = FilterStatic(src, query)
		r.loading = false
		return nil
	case FuncSource:
		gen := r.generation
		char := t.Char
		delay := t.Debounce
		r.loading = true

		session := r.ctx
		wait := session
		if delay > 0 {
			var cancel context.CancelFunc
			wait, cancel = context.WithCancel(session)
			r.cancelTimer = cancel
		}
		return func() tea.Msg {
			if delay > 0 {
				timer := time.NewTimer(delay)
				defer timer.Stop()
				select {
				case <-wait.Done():
					return nil
				case <-timer.C:
				}
			}
			if session.Err() != nil {
				return nil
			}
			items, err := call(session, src, query)
			return ResultMsg{Generation: gen, Trigger: char, Query: query, Items: items, Err: err}
		}
	}

	r.items = nil
	r.loading = false
	return nil
}

// Apply commits msg if it belongs to the current generation and reports whether it did.
// A failed source commits an empty list.
func (r *Resolver) Apply(msg ResultMsg) bool {
	if msg.Generation != r.generation || r.ctx.Err() != nil {
		r.logger.Debug("dropping stale candidates", "trigger", msg.Trigger, "query", msg.Query, "generation", msg.Generation, "current", r.generation)
		return false
	}
	r.loading = false
	if msg.Err != nil {
		r.logger.Warn("candidate source failed", "trigger", msg.Trigger, "query", msg.Query, "err", msg.Err)
		r.items = nil
		return true
	}
	r.items = msg.Items
	return true
}

// Reset clears candidates, cancels a pending debounce and invalidates in-flight results.
func (r *Resolver) Reset() {
	r.stopTimer()
	r.generation++
	r.items = nil
	r.loading = false
}

// Stop tears the resolver down. Pending timers never fire and late results are dropped.
func (r *Resolver) Stop() {
	r.Reset()
	r.cancel()
}

func (r *Resolver) stopTimer() {
	if r.cancelTimer != nil {
		r.logger.Debug("debounce superseded")
		r.cancelTimer()
		r.cancelTimer = nil
	}
}

func call(ctx context.Context, src FuncSource, query string) (items []Item, err error) {
	defer func() {
		if p := recover(); p != nil {
			items = nil
			err = fmt.Errorf("source panicked: %v", p)
		}
	}()
	return src(ctx, query)
}
