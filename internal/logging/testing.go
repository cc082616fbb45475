package logging

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Entry is one decoded log line captured by TestLogManager.
type Entry struct {
	Level   string         `json:"level"`
	Logger  string         `json:"logger"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"-"`
}

// memorySink is a zapcore.WriteSyncer that keeps decoded entries in memory.
type memorySink struct {
	mu      sync.Mutex
	entries []Entry
}

func (s *memorySink) Write(p []byte) (int, error) {
	var fields map[string]any
	if err := json.Unmarshal(p, &fields); err != nil {
		return len(p), nil
	}

	entry := Entry{Fields: fields}
	entry.Level, _ = fields["level"].(string)
	entry.Logger, _ = fields["logger"].(string)
	entry.Message, _ = fields["msg"].(string)

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	return len(p), nil
}

func (s *memorySink) Sync() error { return nil }

// TestLogManager is a LoggerProvider for tests. It records every entry at
// debug level and above in memory.
type TestLogManager struct {
	sink    *memorySink
	baseZap *zap.Logger

	mu      sync.RWMutex
	loggers map[string]*ScopedLogger
}

// NewTestLogManager creates an in-memory log manager.
func NewTestLogManager() *TestLogManager {
	sink := &memorySink{}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(jsonEncoderConfig()),
		sink,
		zapcore.DebugLevel,
	)
	return &TestLogManager{
		sink:    sink,
		baseZap: zap.New(core),
		loggers: make(map[string]*ScopedLogger),
	}
}

// For returns a scoped logger for the given scope name.
func (m *TestLogManager) For(scope string) *ScopedLogger {
	return cachedScope(&m.mu, m.loggers, scope, func() *ScopedLogger {
		return newScoped(m.baseZap, zapcore.DebugLevel, scope)
	})
}

// Entries returns a copy of everything logged so far.
func (m *TestLogManager) Entries() []Entry {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	out := make([]Entry, len(m.sink.entries))
	copy(out, m.sink.entries)
	return out
}

// Messages returns the message of every entry logged so far, in order.
func (m *TestLogManager) Messages() []string {
	entries := m.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}
