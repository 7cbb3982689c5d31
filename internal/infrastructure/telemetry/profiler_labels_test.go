package telemetry

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeLabels(t *testing.T) {
	labels := map[string]string{
		"Route":      "/api/v1/sales/:id",
		"method":     "POST",
		"Some-Key":   "x",
		"username":   "admin",
		"request_id": "abc",
		"empty":      "",
		"!!!":        "dropped",
		"long":       strings.Repeat("a", MaxLabelValueLength+20),
	}

	pairs := sanitizeLabels(labels)

	got := map[string]string{}
	for i := 0; i < len(pairs); i += 2 {
		got[pairs[i]] = pairs[i+1]
	}
	assert.Equal(t, "/api/v1/sales/:id", got["route"])
	assert.Equal(t, "POST", got["method"])
	assert.Equal(t, "x", got["some_key"])
	assert.Len(t, got["long"], MaxLabelValueLength)
	assert.NotContains(t, got, "username")
	assert.NotContains(t, got, "request_id")
	assert.NotContains(t, got, "empty")
	assert.Len(t, got, 4)
}

func TestSanitizeLabels_Empty(t *testing.T) {
	assert.Nil(t, sanitizeLabels(nil))
}

func TestHTTPRequestLabels(t *testing.T) {
	labels := HTTPRequestLabels("sales", "/api/v1/sales", "")
	assert.Equal(t, map[string]string{
		ProfilingLabelController: "sales",
		ProfilingLabelRoute:      "/api/v1/sales",
	}, labels)
}

func TestOperationLabels(t *testing.T) {
	labels := OperationLabels("invoice_pdf", map[string]string{"format": "pdf", ProfilingLabelOperation: "ignored"})
	assert.Equal(t, "invoice_pdf", labels[ProfilingLabelOperation])
	assert.Equal(t, "pdf", labels["format"])
}

func TestWithProfilingLabels_RunsFunction(t *testing.T) {
	for _, labels := range []map[string]string{nil, {"route": "/health"}} {
		called := false
		WithProfilingLabels(context.Background(), labels, func(ctx context.Context) {
			called = ctx != nil
		})
		assert.True(t, called)
	}
}
