package voice

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestMonitor(t *testing.T, recognizer *RecognizerStub, phrase string) *Monitor {
	t.Helper()

	monitor := NewMonitor(recognizer, &PermissionsStub{Granted: true}, phrase)
	monitor.SetRestartDelay(5 * time.Millisecond)

	return monitor
}

func drainEvents(monitor *Monitor) []Event {
	events := []Event{}
	for {
		select {
		case event := <-monitor.Events():
			events = append(events, event)
		default:
			return events
		}
	}
}

func TestStartListeningIsIdempotent(t *testing.T) {
	recognizer := &RecognizerStub{}
	monitor := newTestMonitor(t, recognizer, "help me")

	assert.Nil(t, monitor.StartListening())
	assert.Nil(t, monitor.StartListening())

	assert.Equal(t, 1, recognizer.Sessions(), "Second StartListening should be a no-op")
	assert.Equal(t, Listening, monitor.State())
	assert.Equal(t, DEFAULT_LOCALE, recognizer.Locale)
}

func TestStartListeningPermissionDenied(t *testing.T) {
	recognizer := &RecognizerStub{}
	monitor := NewMonitor(recognizer, &PermissionsStub{Granted: false}, "help me")

	err := monitor.StartListening()
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, Errored, monitor.State())
	assert.False(t, monitor.Listening())
	assert.Equal(t, 0, recognizer.Starts(), "No session should start without the grant")
}

func TestPermissionRequestedOncePerProcess(t *testing.T) {
	recognizer := &RecognizerStub{}
	permissions := &PermissionsStub{Granted: true}
	monitor := NewMonitor(recognizer, permissions, "help me")

	assert.Nil(t, monitor.StartListening())
	assert.Nil(t, monitor.StopListening())
	assert.Nil(t, monitor.StartListening())

	assert.Equal(t, 1, permissions.Requests)
}

func TestSelfRestartAfterSpeechEnd(t *testing.T) {
	recognizer := &RecognizerStub{}
	monitor := newTestMonitor(t, recognizer, "help me")

	assert.Nil(t, monitor.StartListening())
	recognizer.FireEnd()

	assert.Eventually(t, func() bool { return recognizer.Starts() == 2 },
		200*time.Millisecond, 2*time.Millisecond,
		"End-of-segment should restart the session while listening")
	assert.True(t, monitor.Listening())
}

func TestNoRestartAfterStopListening(t *testing.T) {
	recognizer := &RecognizerStub{}
	monitor := newTestMonitor(t, recognizer, "help me")

	assert.Nil(t, monitor.StartListening())
	assert.Nil(t, monitor.StopListening())

	// End-of-segment arriving after an explicit stop must not restart
	recognizer.FireEnd()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, 1, recognizer.Starts())
	assert.False(t, monitor.Listening())
	assert.Equal(t, Stopped, monitor.State())
}

func TestStopCancelsPendingRestart(t *testing.T) {
	recognizer := &RecognizerStub{}
	monitor := newTestMonitor(t, recognizer, "help me")
	monitor.SetRestartDelay(20 * time.Millisecond)

	assert.Nil(t, monitor.StartListening())
	recognizer.FireEnd()
	assert.Nil(t, monitor.StopListening())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, recognizer.Starts(), "Stop should cancel the scheduled restart")
}

func TestTriggerMatching(t *testing.T) {
	testCases := []struct {
		desc             string
		phrase           string
		utterance        string
		expectedTriggers int
	}{
		{"phrase contained in utterance", "help me", "Please HELP me now", 1},
		{"exact match", "help me", "help me", 1},
		{"no match", "help me", "hello there", 0},
		{"empty phrase never matches", "", "help me", 0},
	}

	for _, tcase := range testCases {
		t.Run(tcase.desc, func(t *testing.T) {
			recognizer := &RecognizerStub{}
			monitor := newTestMonitor(t, recognizer, tcase.phrase)
			assert.Nil(t, monitor.StartListening())

			recognizer.FireResults(tcase.utterance)

			triggers := 0
			results := 0
			for _, event := range drainEvents(monitor) {
				switch event.Kind {
				case TriggerEvent:
					triggers++
				case ResultEvent:
					results++
				}
			}

			assert.Equal(t, tcase.expectedTriggers, triggers)
			assert.Equal(t, 1, results, "Every utterance should publish a result event")
		})
	}
}

func TestResultEventCarriesLoweredUtterance(t *testing.T) {
	recognizer := &RecognizerStub{}
	monitor := newTestMonitor(t, recognizer, "help me")
	assert.Nil(t, monitor.StartListening())

	recognizer.FireResults("Please Help Me Now", "second candidate ignored")

	events := drainEvents(monitor)
	assert.Equal(t, "please help me now", events[0].Text)
	assert.Equal(t, "please help me now", monitor.LastUtterance())
}

func TestProviderErrorStopsSession(t *testing.T) {
	recognizer := &RecognizerStub{}
	monitor := newTestMonitor(t, recognizer, "help me")
	assert.Nil(t, monitor.StartListening())

	recognizer.FireError(errors.New("engine busy"))

	assert.False(t, monitor.Listening())
	assert.Equal(t, Errored, monitor.State())

	events := drainEvents(monitor)
	assert.Len(t, events, 1)
	assert.Equal(t, ErrorEvent, events[0].Kind)
	assert.EqualError(t, events[0].Err, "engine busy")

	// Recovery requires a fresh explicit StartListening
	assert.Nil(t, monitor.StartListening())
	assert.Equal(t, Listening, monitor.State())
}

func TestDestroyIsSafeToRepeat(t *testing.T) {
	recognizer := &RecognizerStub{}
	monitor := newTestMonitor(t, recognizer, "help me")

	assert.Nil(t, monitor.StartListening())
	assert.Nil(t, monitor.Destroy())
	assert.Nil(t, monitor.Destroy())

	assert.Equal(t, 1, recognizer.DestroyCalls)
	assert.Equal(t, Uninitialized, monitor.State())
}

func TestBridgeRejectsEventsWithoutSession(t *testing.T) {
	bridge := NewBridge()
	monitor := NewMonitor(bridge, ShellPermissions{}, "help me")

	err := bridge.InjectResults([]string{"help me"})
	assert.ErrorIs(t, err, ErrSessionNotActive)

	assert.Nil(t, monitor.StartListening())
	assert.Nil(t, bridge.InjectResults([]string{"help me"}))

	events := drainEvents(monitor)
	assert.Len(t, events, 2, "Result + trigger expected once the session is active")
}
