package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssw-logs/logbroker/logcore/layout"
)

func TestNew_RequiresBrokers(t *testing.T) {
	_, err := New(Config{Topic: "logs"}, layout.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func TestNew_RequiresTopic(t *testing.T) {
	_, err := New(Config{Brokers: []string{"localhost:9092"}}, layout.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no topic configured")
}
