package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRecompute(t *testing.T) {
	before := testutil.ToFloat64(recomputations.WithLabelValues(RecomputeRating))
	RecordRecompute(RecomputeRating)
	assert.Equal(t, before+1, testutil.ToFloat64(recomputations.WithLabelValues(RecomputeRating)))
}

func TestRecordFederation(t *testing.T) {
	before := testutil.ToFloat64(federationOutcomes.WithLabelValues("google", "invalid_state"))
	RecordFederation("google", "invalid_state")
	RecordFederation("google", "invalid_state")
	assert.Equal(t, before+2, testutil.ToFloat64(federationOutcomes.WithLabelValues("google", "invalid_state")))
}
