package haptics

import "github.com/AkashSundaramoorthi/Haven/server/logger"

var logg = logger.NewLogger()

// Notifier is the fire-and-forget haptic feedback sink. Implementations
// must never affect control flow - failures stay inside the sink.
type Notifier interface {
	Success(msg string)
	Warning(msg string)
	Error(msg string)
}

// LogNotifier stands in for the device vibration motor on headless runs.
type LogNotifier struct{}

func (LogNotifier) Success(msg string) {
	logg.Infof("haptic[success]: %v", msg)
}

func (LogNotifier) Warning(msg string) {
	logg.Warnf("haptic[warning]: %v", msg)
}

func (LogNotifier) Error(msg string) {
	logg.Errorf("haptic[error]: %v", msg)
}

// Recorder captures notifications for assertions in tests.
type Recorder struct {
	Successes []string
	Warnings  []string
	Errors    []string
}

func (r *Recorder) Success(msg string) { r.Successes = append(r.Successes, msg) }
func (r *Recorder) Warning(msg string) { r.Warnings = append(r.Warnings, msg) }
func (r *Recorder) Error(msg string)   { r.Errors = append(r.Errors, msg) }
