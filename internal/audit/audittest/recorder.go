// Package audittest provides an in-memory audit.Logger for tests.
package audittest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-verify-mail/internal/audit"
)

// Recorder is an in-memory audit.Logger. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []audit.Entry
	echoed  int
}

func (r *Recorder) Log(ctx context.Context, ch audit.Channel, msg string, echo bool, attrs ...slog.Attr) {
	e := audit.NewEntry(ctx, ch, msg, time.Now(), attrs)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	if echo {
		r.echoed++
	}
}

// Entries returns a copy of everything logged so far.
func (r *Recorder) Entries() []audit.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audit.Entry(nil), r.entries...)
}

// On returns the entries logged on ch.
func (r *Recorder) On(ch audit.Channel) []audit.Entry {
	var out []audit.Entry
	for _, e := range r.Entries() {
		if e.Channel == ch {
			out = append(out, e)
		}
	}
	return out
}

// Echoed returns how many entries asked for a console echo.
func (r *Recorder) Echoed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.echoed
}
