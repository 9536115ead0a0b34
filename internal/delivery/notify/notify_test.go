package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogNotifier_Notify(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	n.Notify("Engine error while executing route request")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "Engine error while executing route request", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	assert.Nil(t, c.Messages())

	c.Notify("first")
	c.Notify("second")

	msgs := c.Messages()
	assert.Equal(t, []string{"first", "second"}, msgs)

	msgs[0] = "mutated"
	assert.Equal(t, "first", c.Messages()[0])
}
