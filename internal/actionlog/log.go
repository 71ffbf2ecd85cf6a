// Package actionlog records every orchestration step in a durable, append-only trail.
package actionlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ciia-mx/leadflow/pkg/logging"
)

// Channel identifies which orchestration step produced an entry.
type Channel string

const (
	// ChannelDirectory covers contact/opportunity writes to the CRM directory.
	ChannelDirectory Channel = "directory"
	// ChannelNotification covers welcome email sends.
	ChannelNotification Channel = "notification"
	// ChannelOutreachCall covers automated intro calls.
	ChannelOutreachCall Channel = "outreach-call"
	// ChannelOutreachMessage covers fallback text messages.
	ChannelOutreachMessage Channel = "outreach-message"
	// ChannelError covers failures caught at the workflow boundary.
	ChannelError Channel = "error"
)

// Entry is one immutable action record. Identity is positional: append order
// is causal order.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Channel   Channel        `json:"channel"`
	Data      map[string]any `json:"data"`
}

// Log persists entries as a JSON array in a single file. Appends are
// serialized by a mutex so concurrent submissions cannot lose records during
// the read-modify-write cycle.
type Log struct {
	mu     sync.Mutex
	path   string
	logger *logging.Logger
	now    func() time.Time
}

// New creates a log writing to path. The file and its directory are created
// on first append.
func New(path string, logger *logging.Logger) *Log {
	if logger == nil {
		logger = logging.Default()
	}
	return &Log{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

// Append records a single action. The entry is echoed to the operational log
// and durably written before returning.
func (l *Log) Append(channel Channel, data map[string]any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		Timestamp: l.now().UTC(),
		Channel:   channel,
		Data:      data,
	}
	l.logger.Info("action recorded",
		"channel", string(channel),
		"data", data,
	)

	entries := l.readLocked()
	entries = append(entries, entry)

	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("actionlog: marshal entries: %w", err)
	}
	if dir := filepath.Dir(l.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("actionlog: create log directory: %w", err)
		}
	}
	if err := os.WriteFile(l.path, payload, 0o644); err != nil {
		return fmt.Errorf("actionlog: write log file: %w", err)
	}
	return nil
}

// Entries returns a snapshot of every recorded action in append order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readLocked()
}

// readLocked loads the persisted entries. A missing or malformed file is
// treated as empty so a corrupted log never blocks new appends.
func (l *Log) readLocked() []Entry {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		l.logger.Warn("action log unreadable, starting fresh", "path", l.path, "error", err)
		return nil
	}
	return entries
}
