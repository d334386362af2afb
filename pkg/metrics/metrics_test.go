package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/word-ntfy/pkg/notification"
)

func TestRecordDecision(t *testing.T) {
	m := New(nil)

	m.RecordDecision(true, "")
	m.RecordDecision(false, "bot")
	m.RecordDecision(false, "bot")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsTotal.WithLabelValues("notified", "")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsTotal.WithLabelValues("suppressed", "bot")))
}

func TestInstrument(t *testing.T) {
	m := New(nil)
	fail := false
	sink := m.Instrument(notification.NotifierFunc(func(notification.Payload) error {
		if fail {
			return errors.New("boom")
		}
		return nil
	}))

	require.NoError(t, sink.Send(notification.Payload{}))
	fail = true
	require.Error(t, sink.Send(notification.Payload{}))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DeliveriesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DeliveriesTotal.WithLabelValues("error")))
}

func TestHandler(t *testing.T) {
	m := New(func() int { return 3 })
	m.ObserveScan(time.Millisecond)
	m.RecordDecision(false, "no-match")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "wordntfy_cache_entries 3")
	assert.Contains(t, body, "wordntfy_scan_duration_seconds_count 1")
	assert.True(t, strings.Contains(body, `wordntfy_events_total{outcome="suppressed",reason="no-match"} 1`))
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(nil), New(nil)
	a.RecordDecision(true, "")

	assert.Equal(t, 0.0, testutil.ToFloat64(b.EventsTotal.WithLabelValues("notified", "")))
}
