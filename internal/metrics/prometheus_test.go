package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, "2xx", classifyStatus(201))
	assert.Equal(t, "3xx", classifyStatus(304))
	assert.Equal(t, "4xx", classifyStatus(404))
	assert.Equal(t, "5xx", classifyStatus(503))
	assert.Equal(t, "unknown", classifyStatus(99))
}

func TestRecordPriceUpdate(t *testing.T) {
	before := testutil.ToFloat64(priceUpdatesTotal.WithLabelValues("changed"))

	RecordPriceUpdate("changed")

	assert.Equal(t, before+1, testutil.ToFloat64(priceUpdatesTotal.WithLabelValues("changed")))
}
