package sms

import (
	"context"
	"strings"
	"sync"
)

// Delivery is a single recorded outbound message.
type Delivery struct {
	Phone   string
	Message string
	Voice   bool
}

// Recorder is an in-memory Sender fake for tests. It records every
// delivery and never fails unless Fail is set.
type Recorder struct {
	mu         sync.Mutex
	deliveries []Delivery

	// Fail, when non-nil, is returned from every delivery attempt.
	Fail error
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) SendSMS(ctx context.Context, phone, message string) error {
	return r.record(phone, message, false)
}

func (r *Recorder) Call(ctx context.Context, phone, message string) error {
	return r.record(phone, message, true)
}

func (r *Recorder) record(phone, message string, voice bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	r.deliveries = append(r.deliveries, Delivery{Phone: phone, Message: message, Voice: voice})
	return nil
}

// Deliveries returns a copy of everything recorded so far.
func (r *Recorder) Deliveries() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Delivery, len(r.deliveries))
	copy(out, r.deliveries)
	return out
}

// Last returns the most recent delivery, or false if nothing was recorded.
func (r *Recorder) Last() (Delivery, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.deliveries) == 0 {
		return Delivery{}, false
	}
	return r.deliveries[len(r.deliveries)-1], true
}

// LastCode extracts the numeric code from the most recent delivery to
// the phone number. Returns false if no delivery matched.
func (r *Recorder) LastCode(phone string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.deliveries) - 1; i >= 0; i-- {
		d := r.deliveries[i]
		if d.Phone != phone {
			continue
		}
		for _, field := range strings.Fields(d.Message) {
			code := strings.TrimRight(field, ".")
			if len(code) >= 4 && isDigits(code) {
				return code, true
			}
		}
	}
	return "", false
}

// Reset discards all recorded deliveries.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
