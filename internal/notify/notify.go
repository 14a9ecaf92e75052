// Package notify presents transient user-facing messages.
//
// At most one notice is visible per presenter. Showing a new notice
// replaces the current one immediately; an undismissed notice disappears
// on its own after a fixed interval.
package notify

import (
	"sync"
	"time"
)

// Level classifies a notice for display styling.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is one transient message.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Sink receives display updates.
type Sink interface {
	ShowNotice(n Notice)
	DismissNotice()
}

const defaultTTL = 5 * time.Second

// Presenter owns the single visible notice and its auto-dismiss timer.
type Presenter struct {
	sink Sink
	ttl  time.Duration

	mu    sync.Mutex
	seq   int
	timer *time.Timer
}

// New creates a presenter. ttl <= 0 selects the 5 second default.
func New(sink Sink, ttl time.Duration) *Presenter {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Presenter{sink: sink, ttl: ttl}
}

// Show replaces any visible notice and restarts the dismiss timer.
func (p *Presenter) Show(level Level, message string) {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.ttl, func() { p.expire(seq) })
	p.mu.Unlock()

	p.sink.ShowNotice(Notice{Level: level, Message: message})
}

// Clear dismisses the visible notice, if any, ahead of the timer.
func (p *Presenter) Clear() {
	p.mu.Lock()
	p.seq++
	if p.timer == nil {
		p.mu.Unlock()
		return
	}
	p.timer.Stop()
	p.timer = nil
	p.mu.Unlock()

	p.sink.DismissNotice()
}

// Close stops the timer without emitting anything. Used at teardown.
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// expire dismisses the notice the timer was armed for, unless a newer
// notice has replaced it in the meantime.
func (p *Presenter) expire(seq int) {
	p.mu.Lock()
	if seq != p.seq {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	p.mu.Unlock()

	p.sink.DismissNotice()
}
