package voice

import "sync"

// RecognizerStub records session lifecycle calls & lets tests fire
// recognition events by hand.
type RecognizerStub struct {
	mu      sync.Mutex
	handler Handler

	StartCalls     int
	StopCalls      int
	DestroyCalls   int
	ActiveSessions int
	Locale         string

	StartError error
	StopError  error
}

func (r *RecognizerStub) SetHandler(handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handler = handler
}

func (r *RecognizerStub) Start(locale string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.StartError != nil {
		return r.StartError
	}

	r.StartCalls++
	r.ActiveSessions++
	r.Locale = locale
	return nil
}

func (r *RecognizerStub) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.StopError != nil {
		return r.StopError
	}

	r.StopCalls++
	r.ActiveSessions--
	return nil
}

func (r *RecognizerStub) Destroy() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.DestroyCalls++
	return nil
}

func (r *RecognizerStub) FireResults(candidates ...string) {
	r.currentHandler().OnSpeechResults(candidates)
}

func (r *RecognizerStub) FireError(err error) {
	r.currentHandler().OnSpeechError(err)
}

func (r *RecognizerStub) FireEnd() {
	r.currentHandler().OnSpeechEnd()
}

func (r *RecognizerStub) Sessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.ActiveSessions
}

func (r *RecognizerStub) Starts() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.StartCalls
}

func (r *RecognizerStub) currentHandler() Handler {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.handler
}

// PermissionsStub answers microphone permission requests with a canned
// grant/denial.
type PermissionsStub struct {
	Granted      bool
	RequestError error
	Requests     int
}

func (p *PermissionsStub) RequestMicrophone() (bool, error) {
	p.Requests++
	return p.Granted, p.RequestError
}
