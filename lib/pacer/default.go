package pacer

import "time"

const (
	defaultMinSleep      = 10 * time.Millisecond
	defaultMaxSleep      = 2 * time.Second
	defaultDecayConstant = uint(2)
	defaultAttackConstant = uint(1)
)

// calcOption configures the Default calculator. It is untyped on purpose
// so MinSleep/MaxSleep/DecayConstant/AttackConstant stay option functions
// rather than struct fields callers set directly.
type calcOption func(interface{})

// MinSleep sets the minimum sleep time for a calculator that supports it.
func MinSleep(t time.Duration) calcOption {
	return func(c interface{}) {
		if v, ok := c.(*Default); ok {
			v.minSleep = t
		}
	}
}

// MaxSleep sets the maximum sleep time for a calculator that supports it.
func MaxSleep(t time.Duration) calcOption {
	return func(c interface{}) {
		if v, ok := c.(*Default); ok {
			v.maxSleep = t
		}
	}
}

// DecayConstant sets the exponential decay rate used when calls succeed.
func DecayConstant(k uint) calcOption {
	return func(c interface{}) {
		if v, ok := c.(*Default); ok {
			v.decayConstant = k
		}
	}
}

// AttackConstant sets the exponential attack rate used after a failure.
func AttackConstant(k uint) calcOption {
	return func(c interface{}) {
		if v, ok := c.(*Default); ok {
			v.attackConstant = k
		}
	}
}

// Default is the general-purpose backoff calculator: on success it decays
// sleep time towards minSleep, on failure it attacks towards maxSleep.
type Default struct {
	minSleep       time.Duration
	maxSleep       time.Duration
	decayConstant  uint
	attackConstant uint
}

// NewDefault creates a Default calculator.
func NewDefault(opts ...calcOption) *Default {
	c := &Default{
		minSleep:       defaultMinSleep,
		maxSleep:       defaultMaxSleep,
		decayConstant:  defaultDecayConstant,
		attackConstant: defaultAttackConstant,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Calculate implements Calculator.
func (c *Default) Calculate(state State) time.Duration {
	if state.ConsecutiveRetries == 0 {
		if c.decayConstant == 0 {
			return c.minSleep
		}
		sleepTime := (state.SleepTime<<c.decayConstant - state.SleepTime) >> c.decayConstant
		if sleepTime < c.minSleep {
			sleepTime = c.minSleep
		}
		return sleepTime
	}
	if c.attackConstant == 0 {
		return c.maxSleep
	}
	sleepTime := (state.SleepTime << c.attackConstant) / ((1 << c.attackConstant) - 1)
	if sleepTime > c.maxSleep {
		sleepTime = c.maxSleep
	}
	return sleepTime
}
