package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModule_HealthBeforeStart(t *testing.T) {
	m := NewModule(&mockLogger{})

	status := m.Health(context.Background())

	assert.False(t, status.Healthy)
	assert.Equal(t, "server not started", status.Message)
}
