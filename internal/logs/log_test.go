package logs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/isoburn/isoburn/internal/message"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(message.WARNING)
	defer SetLevel(message.NOTE)

	Debugf("drive0", "ignored")
	Warnf("drive0", "shown %d", 1)

	out := buf.String()
	assert.False(t, strings.Contains(out, "ignored"))
	assert.True(t, strings.Contains(out, "shown 1"))
}

func TestAttachEnqueues(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(message.DEBUG)
	defer SetLevel(message.NOTE)

	q := message.New(message.FAILURE)
	Attach(q)
	defer Attach(nil)

	Errorf("drive0", "write failed: %v", "EIO")
	msgs := q.Drain()
	if assert.Len(t, msgs, 1) {
		assert.Equal(t, message.FAILURE, msgs[0].Severity)
	}
	assert.True(t, q.Aborted())
}
