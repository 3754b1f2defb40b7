// Package pacer throttles and retries calls against a drive or transport
// adapter, grounded on rclone's lib/pacer: one pacer token gates the rate at
// which new operations may start, a pool of connection tokens gates how
// many may run concurrently, and a pluggable Calculator turns the outcome
// of the last call into the sleep time before the next one.
//
// command and drive use this to back off SCSI busy/not-ready conditions
// instead of hard-looping on a tray that hasn't settled yet.
package pacer

import (
	"sync"
	"time"
)

const defaultRetries = 3

// State is passed to a Calculator so it can decide the next sleep time.
type State struct {
	SleepTime          time.Duration // current sleep time before a call
	ConsecutiveRetries int           // number of consecutive failed attempts, 0 after a success
	LastError          error         // error from the last call, or nil
}

// Calculator works out the next sleep time given the current State.
type Calculator interface {
	Calculate(state State) time.Duration
}

// Paced is a function to run with pacing; it returns whether the call
// should be retried and the error it produced.
type Paced func() (bool, error)

// Pacer paces and retries calls.
type Pacer struct {
	mu             sync.Mutex
	pacer          chan struct{}
	connTokens     chan struct{}
	maxConnections int
	retries        int
	calculator     Calculator
	state          State
}

// Option configures a Pacer.
type Option func(*Pacer)

// RetriesOption sets the maximum number of attempts made by Call.
func RetriesOption(retries int) Option {
	return func(p *Pacer) { p.SetRetries(retries) }
}

// MaxConnectionsOption limits the number of concurrent in-flight calls.
// 0 (the default) means unlimited.
func MaxConnectionsOption(n int) Option {
	return func(p *Pacer) { p.SetMaxConnections(n) }
}

// CalculatorOption sets the Calculator used to derive sleep times.
func CalculatorOption(c Calculator) Option {
	return func(p *Pacer) { p.SetCalculator(c) }
}

// New creates a Pacer with a single pace token available immediately and
// the Default calculator, then applies options.
func New(options ...Option) *Pacer {
	p := &Pacer{
		pacer:   make(chan struct{}, 1),
		retries: defaultRetries,
	}
	p.pacer <- struct{}{}
	p.SetCalculator(NewDefault())
	for _, o := range options {
		o(p)
	}
	return p
}

// SetRetries sets the max number of tries for Call.
func (p *Pacer) SetRetries(retries int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.retries = retries
}

// SetMaxConnections sets the maximum number of concurrent calls allowed,
// recreating the token pool fully loaded. n<=0 disables the limit.
func (p *Pacer) SetMaxConnections(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maxConnections = n
	if n <= 0 {
		p.connTokens = nil
		return
	}
	p.connTokens = make(chan struct{}, n)
	for i := 0; i < n; i++ {
		p.connTokens <- struct{}{}
	}
}

// SetCalculator installs c as the sleep-time calculator, returning the
// previous one. If c is a *Default, the pacer's initial sleep time is
// reset to match it.
func (p *Pacer) SetCalculator(c Calculator) Calculator {
	p.mu.Lock()
	defer p.mu.Unlock()
	old := p.calculator
	p.calculator = c
	if d, ok := c.(*Default); ok {
		p.state.SleepTime = d.minSleep
	}
	return old
}

// beginCall waits for a pace token, then (if connections are limited) a
// connection token, sleeps the current backoff, and returns the pace token
// so the next waiting caller may proceed.
func (p *Pacer) beginCall() {
	<-p.pacer
	if p.maxConnections > 0 {
		<-p.connTokens
	}
	p.mu.Lock()
	sleepTime := p.state.SleepTime
	p.mu.Unlock()
	if sleepTime > 0 {
		time.Sleep(sleepTime)
	}
	p.pacer <- struct{}{}
}

// endCall releases the connection token (if limited), updates the retry
// count and recalculates the next sleep time.
func (p *Pacer) endCall(retry bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.maxConnections > 0 {
		p.connTokens <- struct{}{}
	}
	if retry {
		p.state.ConsecutiveRetries++
	} else {
		p.state.ConsecutiveRetries = 0
	}
	p.state.LastError = err
	p.state.SleepTime = p.calculator.Calculate(p.state)
}

// call runs fn, retrying up to retries times while it asks to be retried.
func (p *Pacer) call(fn Paced, retries int) (err error) {
	var retry bool
	for try := 1; try <= retries; try++ {
		p.beginCall()
		retry, err = fn()
		p.endCall(retry, err)
		if !retry {
			break
		}
	}
	return err
}

// Call runs fn, retrying according to the pacer's configured retry count.
func (p *Pacer) Call(fn Paced) error {
	p.mu.Lock()
	retries := p.retries
	p.mu.Unlock()
	return p.call(fn, retries)
}

// CallNoRetry runs fn exactly once, still subject to pacing.
func (p *Pacer) CallNoRetry(fn Paced) error {
	return p.call(fn, 1)
}
