package voice

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/AkashSundaramoorthi/Haven/server/logger"
)

const (
	DEFAULT_LOCALE        = "en-US"
	DEFAULT_RESTART_DELAY = time.Second

	eventBufferSize = 16
)

var (
	ErrPermissionDenied = errors.New("microphone permission not granted")

	logg = logger.NewLogger()
)

// State of the monitor's recognition session lifecycle.
type State int

const (
	Uninitialized State = iota
	Initializing
	Listening
	Stopped
	Errored
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Listening:
		return "listening"
	case Stopped:
		return "stopped"
	case Errored:
		return "error"
	default:
		return "uninitialized"
	}
}

// EventKind tags the variants published on the monitor's event channel.
type EventKind int

const (
	// ResultEvent carries every recognized utterance, matching or not.
	ResultEvent EventKind = iota
	// TriggerEvent fires once per utterance containing the trigger phrase.
	TriggerEvent
	// ErrorEvent reports a recognition engine error.
	ErrorEvent
)

type Event struct {
	Kind EventKind
	Text string
	Err  error
}

// Recognizer is the external speech-recognition provider. Start begins a
// recognition session for the given locale; results/errors/end-of-segment
// signals are delivered to the registered Handler.
type Recognizer interface {
	SetHandler(handler Handler)
	Start(locale string) error
	Stop() error
	Destroy() error
}

// Handler receives recognition events from a Recognizer.
type Handler interface {
	OnSpeechResults(candidates []string)
	OnSpeechError(err error)
	OnSpeechEnd()
}

// PermissionRequester asks the platform for microphone access.
type PermissionRequester interface {
	RequestMicrophone() (granted bool, err error)
}

// Monitor owns one logical listening session over the recognition engine &
// matches utterances against the trigger phrase. The engine ends each
// speech segment on its own, so the monitor restarts the session after a
// short delay for as long as the logical listening flag is set.
type Monitor struct {
	mu sync.Mutex

	recognizer  Recognizer
	permissions PermissionRequester

	triggerPhrase string
	locale        string
	restartDelay  time.Duration

	state         State
	listening     bool
	initialized   bool
	lastUtterance string
	restartTimer  *time.Timer

	events chan Event
}

func NewMonitor(recognizer Recognizer, permissions PermissionRequester, triggerPhrase string) *Monitor {
	monitor := &Monitor{
		recognizer:    recognizer,
		permissions:   permissions,
		triggerPhrase: strings.ToLower(triggerPhrase),
		locale:        DEFAULT_LOCALE,
		restartDelay:  DEFAULT_RESTART_DELAY,
		events:        make(chan Event, eventBufferSize),
	}
	recognizer.SetHandler(monitor)

	return monitor
}

// Events is the subscription channel for Result/Trigger/Error events.
func (m *Monitor) Events() <-chan Event {
	return m.events
}

func (m *Monitor) SetTriggerPhrase(phrase string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.triggerPhrase = strings.ToLower(phrase)
}

func (m *Monitor) SetLocale(locale string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.locale = locale
}

func (m *Monitor) SetRestartDelay(delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.restartDelay = delay
}

// StartListening requests the microphone grant on first use & starts a
// recognition session. Calling it while already listening is a no-op.
func (m *Monitor) StartListening() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listening {
		return nil
	}

	if !m.initialized {
		m.state = Initializing

		granted, err := m.permissions.RequestMicrophone()
		if err != nil {
			m.state = Errored
			return err
		}
		if !granted {
			m.state = Errored
			return ErrPermissionDenied
		}

		m.initialized = true
	}

	m.listening = true
	if err := m.recognizer.Start(m.locale); err != nil {
		m.listening = false
		m.state = Errored
		return err
	}

	m.state = Listening
	return nil
}

// StopListening clears the logical listening flag before stopping the
// session, so an already-scheduled restart observes "not listening" &
// no-ops. A pending restart timer is cancelled outright.
func (m *Monitor) StopListening() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.listening {
		return nil
	}

	m.listening = false
	m.cancelPendingRestart()
	m.state = Stopped

	return m.recognizer.Stop()
}

// Destroy stops listening if active & releases the recognition engine.
// Safe to call multiple times & from a torn-down state.
func (m *Monitor) Destroy() error {
	if err := m.StopListening(); err != nil {
		logg.Errorf("error stopping voice detection: %v", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil
	}

	m.initialized = false
	m.state = Uninitialized

	return m.recognizer.Destroy()
}

func (m *Monitor) Listening() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listening
}

func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// LastUtterance returns the most recent recognized text, for display.
func (m *Monitor) LastUtterance() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastUtterance
}

// ---------------------------------------------------------------------------------//
// Recognizer event handlers
// --------------------------------------------------------------------------------//

// OnSpeechResults publishes every recognized utterance as a ResultEvent, &
// a TriggerEvent when it contains the trigger phrase. An empty trigger
// phrase never matches.
func (m *Monitor) OnSpeechResults(candidates []string) {
	if len(candidates) == 0 {
		return
	}
	spokenText := strings.ToLower(candidates[0])

	m.mu.Lock()
	m.lastUtterance = spokenText
	triggered := m.triggerPhrase != "" && strings.Contains(spokenText, m.triggerPhrase)
	m.mu.Unlock()

	m.publish(Event{Kind: ResultEvent, Text: spokenText})
	if triggered {
		m.publish(Event{Kind: TriggerEvent, Text: spokenText})
	}
}

// OnSpeechError marks the session stopped & reports the error on the
// event channel - there is no caller to return it to.
func (m *Monitor) OnSpeechError(err error) {
	m.mu.Lock()
	m.listening = false
	m.cancelPendingRestart()
	m.state = Errored
	m.mu.Unlock()

	m.publish(Event{Kind: ErrorEvent, Err: err})
}

// OnSpeechEnd is the engine's normal end-of-segment signal. Continuous
// listening isn't natively guaranteed, so schedule a session restart
// after a short delay - unless listening was stopped in the meantime.
func (m *Monitor) OnSpeechEnd() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.listening {
		return
	}

	m.cancelPendingRestart()
	m.restartTimer = time.AfterFunc(m.restartDelay, m.restart)
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func (m *Monitor) restart() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.listening {
		return
	}

	// A restart failure is absorbed - the listening flag stays set as the
	// monitor's best understanding of desired state.
	if err := m.recognizer.Start(m.locale); err != nil {
		logg.Errorf("error restarting voice detection: %v", err)
	}
}

// must be called with m.mu held
func (m *Monitor) cancelPendingRestart() {
	if m.restartTimer != nil {
		m.restartTimer.Stop()
		m.restartTimer = nil
	}
}

func (m *Monitor) publish(event Event) {
	select {
	case m.events <- event:
	default:
		logg.Warnf("dropping voice event, subscriber is not keeping up: %v", event.Kind)
	}
}
