package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordFormSubmission(t *testing.T) {
	before := testutil.ToFloat64(FormSubmissions.WithLabelValues("create", "success"))
	RecordFormSubmission("create", "success")
	RecordFormSubmission("create", "success")
	assert.Equal(t, before+2, testutil.ToFloat64(FormSubmissions.WithLabelValues("create", "success")))
}

func TestRecordExcluded(t *testing.T) {
	before := testutil.ToFloat64(ExcludedRecords.WithLabelValues("campaign"))
	RecordExcluded("campaign")
	assert.Equal(t, before+1, testutil.ToFloat64(ExcludedRecords.WithLabelValues("campaign")))
}

func TestRecordStoreCall(t *testing.T) {
	RecordStoreCall("list_campaigns", "success", 0.002)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(StoreCallDuration), 1)
}
