package voice

import (
	"errors"
	"sync"
)

var ErrSessionNotActive = errors.New("no active recognition session")

// ShellPermissions is the PermissionRequester paired with a Bridge: the
// device shell holds the actual platform microphone grant, so the
// bridge side always answers granted.
type ShellPermissions struct{}

func (ShellPermissions) RequestMicrophone() (bool, error) {
	return true, nil
}

// Bridge is a Recognizer fed by an external shell(e.g. the mobile UI
// posting recognition events over the HTTP API). Start/Stop only track
// whether a session is active; injected events are forwarded to the
// monitor's handler while one is.
type Bridge struct {
	mu      sync.Mutex
	handler Handler
	active  bool
}

func NewBridge() *Bridge {
	return &Bridge{}
}

func (b *Bridge) SetHandler(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handler = handler
}

func (b *Bridge) Start(locale string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.active = true
	return nil
}

func (b *Bridge) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.active = false
	return nil
}

func (b *Bridge) Destroy() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.active = false
	b.handler = nil
	return nil
}

// InjectResults forwards recognized text candidates into the monitor.
func (b *Bridge) InjectResults(candidates []string) error {
	handler, err := b.activeHandler()
	if err != nil {
		return err
	}

	handler.OnSpeechResults(candidates)
	return nil
}

// InjectError forwards a recognition engine error into the monitor.
func (b *Bridge) InjectError(recognitionErr error) error {
	handler, err := b.activeHandler()
	if err != nil {
		return err
	}

	handler.OnSpeechError(recognitionErr)
	return nil
}

// InjectEnd forwards the engine's end-of-segment signal into the monitor.
func (b *Bridge) InjectEnd() error {
	handler, err := b.activeHandler()
	if err != nil {
		return err
	}

	handler.OnSpeechEnd()
	return nil
}

func (b *Bridge) activeHandler() (Handler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.active || b.handler == nil {
		return nil, ErrSessionNotActive
	}

	return b.handler, nil
}
