package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnqueueDrain(t *testing.T) {
	q := New(FAILURE)
	q.Enqueue(NOTE, "drive0", "scanning")
	q.Enqueue(WARNING, "drive0", "retrying")
	assert.False(t, q.Aborted())

	msgs := q.Drain()
	if assert.Len(t, msgs, 2) {
		assert.Equal(t, NOTE, msgs[0].Severity)
		assert.Equal(t, "scanning", msgs[0].Text)
		assert.Equal(t, WARNING, msgs[1].Severity)
	}
	assert.Empty(t, q.Drain())
}

func TestAbortThreshold(t *testing.T) {
	q := New(FAILURE)
	q.Enqueue(MISHAP, "drive0", "retry budget exhausted")
	assert.False(t, q.Aborted())
	q.Enqueue(FAILURE, "drive0", "write failed")
	assert.True(t, q.Aborted())
}

func TestHighestSeverity(t *testing.T) {
	q := New(ABORT)
	assert.Equal(t, DEBUG, q.HighestSeverity())
	q.Enqueue(NOTE, "x", "a")
	q.Enqueue(SORRY, "x", "b")
	q.Enqueue(WARNING, "x", "c")
	assert.Equal(t, SORRY, q.HighestSeverity())
}

func TestParseSeverity(t *testing.T) {
	sev, ok := ParseSeverity("MISHAP")
	assert.True(t, ok)
	assert.Equal(t, MISHAP, sev)
	_, ok = ParseSeverity("NOPE")
	assert.False(t, ok)
}
