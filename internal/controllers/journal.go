package controllers

import (
	"context"
	"time"

	"github.com/l1jgo/uihost/internal/core/controller"
	"github.com/l1jgo/uihost/internal/core/inject"
	"github.com/l1jgo/uihost/internal/core/lifecycle"
	"github.com/l1jgo/uihost/internal/core/state"
	"github.com/l1jgo/uihost/internal/persist"
	"github.com/l1jgo/uihost/internal/systems"
	"go.uber.org/zap"
)

// JournalSink stores batches of transition entries. *persist.JournalRepo
// satisfies it.
type JournalSink interface {
	WriteEntries(ctx context.Context, entries []persist.JournalEntry) error
}

// LogSink writes journal entries to the log.
type LogSink struct {
	Log *zap.Logger
}

func (s LogSink) WriteEntries(_ context.Context, entries []persist.JournalEntry) error {
	for _, e := range entries {
		s.Log.Info("journal",
			zap.Uint64("frame", e.Frame),
			zap.String("kind", e.Kind),
			zap.String("state", e.State))
	}
	return nil
}

// JournalController records every state edge of the catalog and flushes the
// buffer to its sink every flushFrames frames. It also echoes edges to the
// chat system when one is loaded.
type JournalController struct {
	catalog     *state.Catalog
	sink        JournalSink
	flushFrames int
	frame       uint64
	sinceFlush  int
	buf         []persist.JournalEntry
	chat        *systems.Chat
	log         *zap.Logger
}

func NewJournalController(cat *state.Catalog, sink JournalSink, flushFrames int, log *zap.Logger) *JournalController {
	if flushFrames <= 0 {
		flushFrames = 1
	}
	return &JournalController{
		catalog:     cat,
		sink:        sink,
		flushFrames: flushFrames,
		buf:         make([]persist.JournalEntry, 0, 16),
		log:         log,
	}
}

var _ inject.Declarer = (*JournalController)(nil)

func (c *JournalController) SystemBindings(b *inject.Binder) error {
	return inject.Bind(b, "chat", func(c *JournalController, s *systems.Chat) {
		c.chat = s
	})
}

func (c *JournalController) StateInterests() []lifecycle.Interest {
	types := c.catalog.Types()
	out := make([]lifecycle.Interest, 0, 2*len(types))
	for _, t := range types {
		out = append(out,
			lifecycle.OnEnteredAny(t, (*JournalController).entered),
			lifecycle.OnExitedAny(t, (*JournalController).exited))
	}
	return out
}

func (c *JournalController) entered(s state.State) { c.record(lifecycle.Entered, s) }
func (c *JournalController) exited(s state.State)  { c.record(lifecycle.Exited, s) }

func (c *JournalController) record(dir lifecycle.Direction, s state.State) {
	c.buf = append(c.buf, persist.JournalEntry{
		Frame:      c.frame,
		Kind:       dir.String(),
		State:      s.StateName(),
		RecordedAt: time.Now(),
	})
	if c.chat != nil {
		c.chat.Post("journal", "journal", dir.String()+" "+s.StateName())
	}
}

func (c *JournalController) FrameUpdate(_ time.Duration) {
	c.frame++
	c.sinceFlush++
	if c.sinceFlush < c.flushFrames {
		return
	}
	c.sinceFlush = 0
	c.Flush()
}

// Flush writes buffered entries immediately. Entries stay buffered if the
// sink fails.
func (c *JournalController) Flush() {
	if len(c.buf) == 0 || c.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.sink.WriteEntries(ctx, c.buf); err != nil {
		c.log.Error("journal flush failed", zap.Int("entries", len(c.buf)), zap.Error(err))
		return
	}
	c.buf = c.buf[:0]
}

// Buffered returns the number of entries waiting for the next flush.
func (c *JournalController) Buffered() int { return len(c.buf) }

var _ controller.Controller = (*JournalController)(nil)
