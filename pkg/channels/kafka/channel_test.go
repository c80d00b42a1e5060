package kafka_test

import (
	"log/slog"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/vislzr/pkg/channels/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBrokers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"localhost:9092", []string{"localhost:9092"}},
		{"a:9092, b:9092,,", []string{"a:9092", "b:9092"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, kafka.ParseBrokers(tt.in))
		})
	}
}

func TestCreateChannel_RequiresBrokers(t *testing.T) {
	t.Parallel()

	_, _, err := kafka.CreateChannel(watermill.NewSlogLogger(slog.Default()), nil, "vislzr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no Kafka brokers")
}
