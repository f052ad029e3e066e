// Package convlog writes chat traffic as NDJSON, one file per conversation.
package convlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Direction values.
const (
	Inbound  = "inbound"
	Outbound = "outbound"
)

// Config controls the conversation logger.
type Config struct {
	Enabled   bool
	Dir       string
	// Global also appends every event to <Dir>/all.ndjson.
	Global    bool
	QueueSize int
}

// Event is one logged line.
type Event struct {
	EventID        string    `json:"event_id"`
	Timestamp      time.Time `json:"ts"`
	ConversationID string    `json:"conversation_id"`
	Channel        string    `json:"channel"`
	Direction      string    `json:"direction"`
	EventType      string    `json:"event_type"`
	Character      string    `json:"character,omitempty"`
	Content        string    `json:"content"`
	ContentRaw     string    `json:"content_raw,omitempty"`
}

// Logger appends events asynchronously through a bounded queue. A full queue
// drops events instead of blocking the caller.
type Logger struct {
	cfg     Config
	logger  *slog.Logger
	queue   chan Event
	done    chan struct{}
	closed  atomic.Bool
	once    sync.Once
	dropped atomic.Int64
}

// New creates a Logger. A disabled config yields a Logger whose Log is a no-op.
func New(cfg Config, logger *slog.Logger) (*Logger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Logger{cfg: cfg, logger: logger, done: make(chan struct{})}
	if !cfg.Enabled {
		close(l.done)
		return l, nil
	}
	if cfg.Dir == "" {
		return nil, errors.New("conversation log directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create conversation log directory: %w", err)
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
		l.cfg.QueueSize = cfg.QueueSize
	}
	l.queue = make(chan Event, cfg.QueueSize)
	go l.run()
	return l, nil
}

// Log enqueues an event. Missing IDs and timestamps are filled in.
func (l *Logger) Log(e Event) {
	if l == nil || l.queue == nil || l.closed.Load() {
		return
	}
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.ContentRaw == "" {
		e.ContentRaw = e.Content
	}
	e.Content = cleanForReadability(e.ContentRaw)

	defer func() {
		// Close may race with a late Log; a send on the closed queue is a drop.
		if recover() != nil {
			l.dropped.Add(1)
		}
	}()
	select {
	case l.queue <- e:
	default:
		n := l.dropped.Add(1)
		l.logger.Warn("Conversation log queue full, dropping event",
			"conversation_id", e.ConversationID,
			"dropped_total", n)
	}
}

// Dropped returns the number of events that were not written.
func (l *Logger) Dropped() int64 {
	if l == nil {
		return 0
	}
	return l.dropped.Load()
}

// Close stops accepting events and waits for queued ones to be written.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.once.Do(func() {
		l.closed.Store(true)
		if l.queue != nil {
			close(l.queue)
		}
	})
	<-l.done
	return nil
}

func (l *Logger) run() {
	defer close(l.done)
	for e := range l.queue {
		line, err := json.Marshal(e)
		if err != nil {
			l.logger.Warn("Failed to encode conversation event", "error", err)
			continue
		}
		line = append(line, '\n')
		if err := appendLine(l.pathFor(e.ConversationID), line); err != nil {
			l.logger.Warn("Failed to write conversation event",
				"conversation_id", e.ConversationID, "error", err)
		}
		if l.cfg.Global {
			if err := appendLine(filepath.Join(l.cfg.Dir, "all.ndjson"), line); err != nil {
				l.logger.Warn("Failed to write global conversation event", "error", err)
			}
		}
	}
}

func (l *Logger) pathFor(conversationID string) string {
	return filepath.Join(l.cfg.Dir, FileName(conversationID))
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileName maps a conversation identifier to its log file name.
func FileName(conversationID string) string {
	name := unsafeFileChars.ReplaceAllString(conversationID, "_")
	if name == "" || strings.Trim(name, ".") == "" {
		name = "unknown"
	}
	return name + ".ndjson"
}

func appendLine(path string, line []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

var ansiSequence = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

// cleanForReadability strips ANSI escapes and control characters other than
// newlines and tabs.
func cleanForReadability(raw string) string {
	s := ansiSequence.ReplaceAllString(raw, "")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
