package convlog

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoggerWritesPerConversationNDJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger, err := New(Config{Enabled: true, Dir: dir, Global: true, QueueSize: 16}, slog.Default())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Log(Event{
		ConversationID: "telegram:42",
		Channel:        "telegram",
		Direction:      Inbound,
		EventType:      "user_message",
		Content:        "/select 2",
	})
	logger.Log(Event{
		ConversationID: "telegram:42",
		Channel:        "telegram",
		Direction:      Outbound,
		EventType:      "bot_reply",
		Character:      "Luna Starweaver",
		Content:        "\x1b[32m*gazes at the stars*\x1b[0m",
	})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	lines := readLines(t, filepath.Join(dir, "telegram_42.ndjson"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var got Event
	if err := json.Unmarshal([]byte(lines[1]), &got); err != nil {
		t.Fatalf("failed to unmarshal log line: %v", err)
	}
	if got.Content != "*gazes at the stars*" {
		t.Errorf("unexpected cleaned content: %q", got.Content)
	}
	if !strings.Contains(got.ContentRaw, "\x1b[32m") {
		t.Errorf("expected raw content to keep escapes: %q", got.ContentRaw)
	}
	if got.EventID == "" || got.Timestamp.IsZero() {
		t.Error("expected event id and timestamp to be filled in")
	}

	if global := readLines(t, filepath.Join(dir, "all.ndjson")); len(global) != 2 {
		t.Errorf("expected 2 global lines, got %d", len(global))
	}
}

func TestDisabledLoggerIsNoop(t *testing.T) {
	t.Parallel()

	logger, err := New(Config{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Log(Event{ConversationID: "x", Content: "hi"})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	var nilLogger *Logger
	nilLogger.Log(Event{})
	if err := nilLogger.Close(); err != nil {
		t.Fatalf("nil Close failed: %v", err)
	}
}

func TestEnabledLoggerRequiresDir(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Enabled: true}, nil); err == nil {
		t.Fatal("expected error without directory")
	}
}

func TestLogAfterCloseIsDropped(t *testing.T) {
	t.Parallel()

	logger, err := New(Config{Enabled: true, Dir: t.TempDir(), QueueSize: 1}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_ = logger.Close()
	logger.Log(Event{ConversationID: "late"})
}

func TestFileName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"console":          "console.ndjson",
		"web:anon-1:tab/2": "web_anon-1_tab_2.ndjson",
		"":                 "unknown.ndjson",
		"..":               "unknown.ndjson",
		"../../etc/passwd": ".._.._etc_passwd.ndjson",
	}
	for in, want := range cases {
		if got := FileName(in); got != want {
			t.Errorf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanForReadabilityStripsANSI(t *testing.T) {
	t.Parallel()

	raw := "\x1b[31merror\x1b[0m plain\x07"
	clean := cleanForReadability(raw)
	if strings.Contains(clean, "\x1b[31m") {
		t.Fatalf("expected ANSI sequence to be stripped: %q", clean)
	}
	if clean != "error plain" {
		t.Fatalf("unexpected cleaned text: %q", clean)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil && len(data) > 0 {
			return strings.Split(strings.TrimSpace(string(data)), "\n")
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for log file %s", path)
	return nil
}
