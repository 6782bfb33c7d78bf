// Package contactform models the contact form a visitor fills in: field
// values, per-field errors and the submission lifecycle.
package contactform

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/portfolio/backend/internal/validation"
)

// State is the lifecycle of the form.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// DefaultResetDelay is how long a success stays visible before the form
// returns to idle.
const DefaultResetDelay = 5 * time.Second

// Messages shown for the two outcome states. The underlying cause of a
// failure is never shown to the visitor.
const (
	SuccessMessage = "Your message has been sent successfully! I'll get back to you soon."
	ErrorMessage   = "There was an error sending your message. Please try again later."
)

var (
	// ErrBusy is returned when Submit is called while a submission is in flight.
	ErrBusy = errors.New("contactform: submission already in progress")
	// ErrInvalid is returned when local validation rejects the fields.
	ErrInvalid = errors.New("contactform: invalid input")
)

// Submitter delivers validated fields to the API.
type Submitter interface {
	Submit(ctx context.Context, f validation.Fields) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, f validation.Fields) error

func (fn SubmitterFunc) Submit(ctx context.Context, f validation.Fields) error {
	return fn(ctx, f)
}

// Option configures a Form.
type Option func(*Form)

// WithResetDelay overrides DefaultResetDelay.
func WithResetDelay(d time.Duration) Option {
	return func(f *Form) { f.resetDelay = d }
}

// WithOnChange registers a callback invoked with the new state after every
// transition. It runs without the form lock held.
func WithOnChange(fn func(State)) Option {
	return func(f *Form) { f.onChange = fn }
}

// Form is safe for concurrent use.
type Form struct {
	submitter  Submitter
	resetDelay time.Duration
	onChange   func(State)
	afterFunc  func(time.Duration, func()) *time.Timer

	mu         sync.Mutex
	fields     validation.Fields
	errs       validation.Errors
	state      State
	lastErr    error
	resetTimer *time.Timer
	generation uint64
}

// New creates an idle, empty form.
func New(s Submitter, opts ...Option) *Form {
	f := &Form{
		submitter:  s,
		resetDelay: DefaultResetDelay,
		afterFunc:  time.AfterFunc,
		errs:       validation.Errors{},
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Set updates one field and clears that field's error. Other errors and the
// form state are left alone. Unknown field names are ignored.
func (f *Form) Set(field, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields = f.fields.With(field, value)
	delete(f.errs, field)
}

// Fields returns the current values.
func (f *Form) Fields() validation.Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// Errors returns a copy of the current field errors.
func (f *Form) Errors() validation.Errors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.errs)
}

// State returns the current lifecycle state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the cause of the last failed submission, if the form is in
// StateError.
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateError {
		return nil
	}
	return f.lastErr
}

// StatusMessage is the visitor-facing banner for the current state.
func (f *Form) StatusMessage() string {
	switch f.State() {
	case StateSuccess:
		return SuccessMessage
	case StateError:
		return ErrorMessage
	default:
		return ""
	}
}

// Submit validates the fields and, when they pass, makes exactly one call to
// the Submitter. Invalid input returns ErrInvalid with Errors populated and
// leaves the state unchanged. A submitter failure moves the form to
// StateError, keeps the fields and is returned as is. Submitting again is
// allowed from every state except StateSubmitting.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return ErrBusy
	}
	f.errs = validation.Validate(f.fields)
	if !f.errs.Empty() {
		f.mu.Unlock()
		return ErrInvalid
	}
	if f.resetTimer != nil {
		f.resetTimer.Stop()
		f.resetTimer = nil
	}
	f.state = StateSubmitting
	f.lastErr = nil
	f.generation++
	gen := f.generation
	fields := f.fields
	f.mu.Unlock()
	f.notify(StateSubmitting)

	err := f.submitter.Submit(ctx, fields)

	f.mu.Lock()
	if err != nil {
		f.state = StateError
		f.lastErr = err
		f.mu.Unlock()
		f.notify(StateError)
		return err
	}
	f.state = StateSuccess
	f.fields = validation.Fields{}
	f.errs = validation.Errors{}
	f.resetTimer = f.afterFunc(f.resetDelay, func() { f.reset(gen) })
	f.mu.Unlock()
	f.notify(StateSuccess)
	return nil
}

// reset returns a success to idle unless a newer submission started since.
func (f *Form) reset(gen uint64) {
	f.mu.Lock()
	if f.generation != gen || f.state != StateSuccess {
		f.mu.Unlock()
		return
	}
	f.resetTimer = nil
	f.state = StateIdle
	f.mu.Unlock()
	f.notify(StateIdle)
}

// Close stops a pending reset.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resetTimer != nil {
		f.resetTimer.Stop()
		f.resetTimer = nil
	}
}

func (f *Form) notify(s State) {
	if f.onChange != nil {
		f.onChange(s)
	}
}
