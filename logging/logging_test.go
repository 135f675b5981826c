package logging

import (
	"bytes"
	"encoding/json"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})

	Event(Fields{OrderID: 12, OrderNumber: "ORD-1-ABC", Step: "create_order", Status: "created"})

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "storefront-service", got["service"])
	assert.Equal(t, "ORD-1-ABC", got["order_number"])
	assert.Equal(t, float64(12), got["order_id"])
	assert.Equal(t, "created", got["status"])
	assert.NotContains(t, got, "user_id")
	assert.NotEmpty(t, got["timestamp"])
}
