// Package audit is the append-only event sink for resend decisions and
// delivery failures. Entries go to one JSON-lines file per channel, can be
// echoed to the operator console, and suspicious-activity entries can be
// fanned out to an Alerter.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-verify-mail/internal/pkg/id"
)

// Channel selects where an entry is written.
type Channel string

const (
	ChannelError      Channel = "error"
	ChannelSuspicious Channel = "suspicious"
)

// fileNames maps each channel to its file under the log directory.
var fileNames = map[Channel]string{
	ChannelError:      "errLog.txt",
	ChannelSuspicious: "hackLog.txt",
}

const alertTimeout = 10 * time.Second

// Entry is one audit record as written to disk.
type Entry struct {
	ID        string         `json:"id"`
	Time      time.Time      `json:"ts"`
	Channel   Channel        `json:"channel"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Logger appends audit entries. Implementations must not block on remote systems.
type Logger interface {
	Log(ctx context.Context, ch Channel, msg string, echo bool, attrs ...slog.Attr)
}

// Alerter receives suspicious-activity entries, e.g. to page an operator.
type Alerter interface {
	Alert(ctx context.Context, e Entry) error
}

// FileLog writes entries to per-channel files in dir.
type FileLog struct {
	mu      sync.Mutex
	dir     string
	console *slog.Logger
	alerter Alerter
	wg      sync.WaitGroup
	now     func() time.Time
}

// Option configures a FileLog.
type Option func(*FileLog)

// WithAlerter forwards suspicious-channel entries to a.
func WithAlerter(a Alerter) Option {
	return func(l *FileLog) { l.alerter = a }
}

// New creates dir if needed and returns a FileLog writing into it.
// console receives echoed entries and the log's own write failures.
func New(dir string, console *slog.Logger, opts ...Option) (*FileLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	l := &FileLog{dir: dir, console: console, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *FileLog) Log(ctx context.Context, ch Channel, msg string, echo bool, attrs ...slog.Attr) {
	e := NewEntry(ctx, ch, msg, l.now(), attrs)

	if err := l.append(e); err != nil {
		l.console.Error("audit write failed", slog.String("channel", string(ch)), slog.Any("err", err))
		echo = true
	}
	if echo {
		l.echo(ctx, e, attrs)
	}
	if ch == ChannelSuspicious && l.alerter != nil {
		l.alert(ctx, e)
	}
}

// Wait blocks until in-flight alerts have finished.
func (l *FileLog) Wait() { l.wg.Wait() }

func (l *FileLog) append(e Entry) error {
	name, ok := fileNames[e.Channel]
	if !ok {
		return fmt.Errorf("unknown audit channel %q", e.Channel)
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	b = append(b, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(filepath.Join(l.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (l *FileLog) echo(ctx context.Context, e Entry, attrs []slog.Attr) {
	level := slog.LevelError
	if e.Channel == ChannelSuspicious {
		level = slog.LevelWarn
	}
	all := append([]slog.Attr{
		slog.String("audit_id", e.ID),
		slog.String("channel", string(e.Channel)),
	}, attrs...)
	l.console.LogAttrs(ctx, level, e.Message, all...)
}

func (l *FileLog) alert(ctx context.Context, e Entry) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)
		defer cancel()
		if err := l.alerter.Alert(actx, e); err != nil {
			l.console.Warn("audit alert failed", slog.String("audit_id", e.ID), slog.Any("err", err))
		}
	}()
}

// NewEntry builds the record for one Log call. Error values are stored as
// their message so they survive JSON encoding.
func NewEntry(ctx context.Context, ch Channel, msg string, at time.Time, attrs []slog.Attr) Entry {
	e := Entry{
		ID:        id.New(),
		Time:      at.UTC(),
		Channel:   ch,
		Message:   msg,
		RequestID: chimiddleware.GetReqID(ctx),
	}
	if len(attrs) > 0 {
		e.Fields = make(map[string]any, len(attrs))
		for _, a := range attrs {
			v := a.Value.Resolve().Any()
			if err, ok := v.(error); ok {
				v = err.Error()
			}
			e.Fields[a.Key] = v
		}
	}
	return e
}
