package bindings

import (
	"context"
	"sync"

	wruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/fortuna-gaming/fortuna-desktop/internal/notify"
)

// Frontend event names.
const (
	eventRevealFrame    = "reveal:frame"
	eventRevealSettled  = "reveal:settled"
	eventNoticeShow     = "notice:show"
	eventNoticeDismiss  = "notice:dismiss"
	eventSessionExpired = "session:expired"
)

// EventBridge forwards display updates to the frontend over wails events.
// It implements the reveal and notify sinks. Events emitted before Startup
// are dropped; there is no window to paint them on yet.
type EventBridge struct {
	mu  sync.RWMutex
	ctx context.Context
}

// Startup captures the wails context.
func (b *EventBridge) Startup(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ctx = ctx
}

func (b *EventBridge) emit(event string, payload ...any) {
	b.mu.RLock()
	ctx := b.ctx
	b.mu.RUnlock()
	if ctx == nil {
		return
	}
	wruntime.EventsEmit(ctx, event, payload...)
}

func (b *EventBridge) RevealFrame(game string, frame any) {
	b.emit(eventRevealFrame, map[string]any{"game": game, "frame": frame})
}

func (b *EventBridge) RevealSettled(game string, outcome any) {
	b.emit(eventRevealSettled, map[string]any{"game": game, "outcome": outcome})
}

func (b *EventBridge) ShowNotice(n notify.Notice) {
	b.emit(eventNoticeShow, n)
}

func (b *EventBridge) DismissNotice() {
	b.emit(eventNoticeDismiss)
}

// SessionExpired tells the frontend to route back to the login view.
func (b *EventBridge) SessionExpired() {
	b.emit(eventSessionExpired)
}
