package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockWindow/internal/model"
)

func newTestNotifier(url string) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = url
	n.BaseBackoff = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).Send(context.Background(), "hello"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSendWithRetry_RecoversAfterFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "busy", http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).SendWithRetry(context.Background(), "x", 3))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).SendWithRetry(context.Background(), "x", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 retries exhausted")
	assert.Contains(t, err.Error(), "status 401")
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestSendWithRetry_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL)
	n.BaseBackoff = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	err := n.SendWithRetry(ctx, "x", 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatRunSummary(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	report := &model.RunReport{
		StartedAt: time.Date(2024, 3, 9, 8, 30, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Written:   1,
		Results: []*model.WindowResult{
			{
				Instrument: model.Instrument{Exchange: "LSE", Name: "A&B"},
				Window: model.TimeSeries{
					Range:  model.DateRange{Start: start, End: start.AddDate(0, 0, 4)},
					Values: []float64{10, 12, 9, 15, 11},
				},
				Prediction: []float64{12, 10.5, 12.375},
			},
			{
				Instrument: model.Instrument{Exchange: "NYSE", Name: "ASH"},
				Err:        &model.InsufficientDataError{Instrument: "ASH", Need: 10, Have: 4},
			},
		},
	}

	msg := FormatRunSummary(report)
	assert.Contains(t, msg, "2024-03-09 08:30")
	assert.Contains(t, msg, "Instruments: 2 | ok: 1 | failed: 1")
	assert.Contains(t, msg, "Files written: 1 | took 1.5s")
	assert.Contains(t, msg, "LSE/A&amp;B [01-01-2024..05-01-2024] last 11 → 12, 10.5, 12.375")
	assert.Contains(t, msg, "NYSE/ASH: insufficient_data")
}

func TestFormatRunSummary_Truncates(t *testing.T) {
	report := &model.RunReport{}
	for i := 0; i < maxListed+5; i++ {
		report.Results = append(report.Results, &model.WindowResult{
			Instrument: model.Instrument{Exchange: "X", Name: "I"},
			Err:        errors.New("boom"),
		})
	}
	msg := FormatRunSummary(report)
	assert.Contains(t, msg, "… and 5 more")
	assert.Contains(t, msg, "X/I: io")
}

func TestFormatRunError(t *testing.T) {
	assert.Contains(t, FormatRunError(errors.New("LSE/<x>: boom")), "LSE/&lt;x&gt;: boom")
}
