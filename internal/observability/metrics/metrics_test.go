package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestFilterAttributesDropsUnknownLabels(t *testing.T) {
	filtered := FilterAttributes(
		attribute.String("reason", "OK"),
		attribute.String("hwid", "HW1"),
		attribute.String("operation", "revoked"),
		attribute.String("key", "secret-material"),
	)

	keys := make([]string, 0, len(filtered))
	for _, attr := range filtered {
		keys = append(keys, string(attr.Key))
	}
	assert.ElementsMatch(t, []string{"reason", "operation"}, keys)
}

func TestNilMetricsRecordersAreSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordVerify(context.Background(), "OK")
		m.RecordMint(context.Background(), "single")
		m.RecordLifecycle(context.Background(), "paid")
	})
}
