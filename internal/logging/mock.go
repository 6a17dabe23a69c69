package logging

import "sync"

// Entry is one message recorded by MockLogger.
type Entry struct {
	Level   string
	Message string
	Fields  []Field
	Err     error
}

// Field returns the value of the named field and whether it was set.
func (e Entry) Field(key string) (interface{}, bool) {
	for i := len(e.Fields) - 1; i >= 0; i-- {
		if e.Fields[i].Key == key {
			return e.Fields[i].Value, true
		}
	}
	return nil, false
}

type recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// MockLogger records entries instead of writing them.
// Loggers derived through With* share the parent's recording.
type MockLogger struct {
	rec    *recorder
	fields []Field
	err    error
}

// NewMockLogger returns an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{rec: &recorder{}}
}

func (m *MockLogger) record(level, msg string, fields []Field) {
	if m.rec == nil {
		m.rec = &recorder{}
	}
	all := make([]Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)

	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	m.rec.entries = append(m.rec.entries, Entry{Level: level, Message: msg, Fields: all, Err: m.err})
}

func (m *MockLogger) derive(fields []Field, err error) *MockLogger {
	if m.rec == nil {
		m.rec = &recorder{}
	}
	merged := make([]Field, 0, len(m.fields)+len(fields))
	merged = append(merged, m.fields...)
	merged = append(merged, fields...)
	return &MockLogger{rec: m.rec, fields: merged, err: err}
}

func (m *MockLogger) Debug(msg string, fields ...Field) { m.record("DEBUG", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...Field)  { m.record("INFO", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...Field)  { m.record("WARN", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...Field) { m.record("ERROR", msg, fields) }

func (m *MockLogger) WithError(err error) Logger {
	return m.derive(nil, err)
}

func (m *MockLogger) WithField(key string, value interface{}) Logger {
	return m.derive([]Field{{Key: key, Value: value}}, m.err)
}

func (m *MockLogger) WithFields(fields ...Field) Logger {
	return m.derive(fields, m.err)
}

// Entries returns a copy of everything recorded so far.
func (m *MockLogger) Entries() []Entry {
	if m.rec == nil {
		return nil
	}
	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	out := make([]Entry, len(m.rec.entries))
	copy(out, m.rec.entries)
	return out
}

// EntriesAt returns the recorded entries of one level.
func (m *MockLogger) EntriesAt(level string) []Entry {
	var out []Entry
	for _, e := range m.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// HasEntry reports whether a message was recorded at level.
func (m *MockLogger) HasEntry(level, message string) bool {
	for _, e := range m.Entries() {
		if e.Level == level && e.Message == message {
			return true
		}
	}
	return false
}
