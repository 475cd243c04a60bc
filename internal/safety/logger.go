package safety

// Logger provides structured logging for the backup engine and the services
// built on it. The args follow slog conventions: alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger is a Logger that discards all output. Use in tests.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (*NopLogger) Debug(string, ...any) {}
func (*NopLogger) Info(string, ...any)  {}
func (*NopLogger) Warn(string, ...any)  {}
func (*NopLogger) Error(string, ...any) {}

// Recorder receives the outcome of every backup attempt.
type Recorder interface {
	RecordBackup(outcome Outcome)
}

// NopRecorder drops all observations.
type NopRecorder struct{}

func (NopRecorder) RecordBackup(Outcome) {}
