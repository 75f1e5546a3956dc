package extract

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockWindow/internal/model"
)

func date(d, m, y int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// dailyRecords builds n consecutive daily records starting at start with values 1..n.
func dailyRecords(start time.Time, n int) []model.RawRecord {
	recs := make([]model.RawRecord, n)
	for i := 0; i < n; i++ {
		recs[i] = model.RawRecord{
			Line:       i + 1,
			Instrument: "FLTR",
			Date:       model.FormatDate(model.AddDays(start, i)),
			Value:      strconv.Itoa(i + 1),
		}
	}
	return recs
}

func TestExtract_Window(t *testing.T) {
	recs := dailyRecords(date(1, 9, 2023), 30)
	interval := model.DateRange{Start: date(5, 9, 2023), End: date(14, 9, 2023)}

	ts, err := Extract("FLTR", NewSliceIterator(recs), interval)
	require.NoError(t, err)
	assert.Equal(t, interval, ts.Range)
	assert.Equal(t, []float64{5, 6, 7, 8, 9, 10, 11, 12, 13, 14}, ts.Values)
	assert.True(t, ts.Dense())
}

func TestExtract_Idempotent(t *testing.T) {
	recs := dailyRecords(date(1, 9, 2023), 30)
	interval := model.DateRange{Start: date(10, 9, 2023), End: date(19, 9, 2023)}

	first, err := Extract("FLTR", NewSliceIterator(recs), interval)
	require.NoError(t, err)
	second, err := Extract("FLTR", NewSliceIterator(recs), interval)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	first.Values[0] = -1
	assert.Equal(t, "10", recs[9].Value, "source records must not change")
}

func TestExtract_Gap(t *testing.T) {
	recs := dailyRecords(date(1, 9, 2023), 30)
	// drop two days inside the window
	recs = append(recs[:6], recs[8:]...)
	interval := model.DateRange{Start: date(5, 9, 2023), End: date(14, 9, 2023)}

	_, err := Extract("FLTR", NewSliceIterator(recs), interval)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInsufficientData)

	var ide *model.InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, 10, ide.Need)
	assert.Equal(t, 8, ide.Have)
}

func TestExtract_IntervalPastData(t *testing.T) {
	recs := dailyRecords(date(1, 9, 2023), 10)
	interval := model.DateRange{Start: date(5, 9, 2023), End: date(14, 9, 2023)}

	_, err := Extract("FLTR", NewSliceIterator(recs), interval)
	assert.ErrorIs(t, err, model.ErrInsufficientData)
}

func TestExtract_MalformedRecord(t *testing.T) {
	tests := []struct {
		name string
		rec  model.RawRecord
	}{
		{"bad date", model.RawRecord{Line: 3, Instrument: "FLTR", Date: "2023-09-03", Value: "3"}},
		{"bad value", model.RawRecord{Line: 3, Instrument: "FLTR", Date: "03-09-2023", Value: "three"}},
		{"missing value", model.RawRecord{Line: 3, Instrument: "FLTR", Date: "03-09-2023"}},
		{"missing date", model.RawRecord{Line: 3, Instrument: "FLTR", Value: "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := dailyRecords(date(1, 9, 2023), 20)
			recs[2] = tt.rec

			_, err := Extract("FLTR", NewSliceIterator(recs), model.DateRange{Start: date(5, 9, 2023), End: date(14, 9, 2023)})
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrMalformedRecord)

			var mre *model.MalformedRecordError
			require.ErrorAs(t, err, &mre)
			assert.Equal(t, "FLTR", mre.Instrument)
			assert.Equal(t, 3, mre.Line)
		})
	}
}

func TestExtract_StopsAfterEnd(t *testing.T) {
	recs := dailyRecords(date(1, 9, 2023), 20)
	// a malformed row after the window is never read
	recs[15].Value = "garbage"

	ts, err := Extract("FLTR", NewSliceIterator(recs), model.DateRange{Start: date(1, 9, 2023), End: date(10, 9, 2023)})
	require.NoError(t, err)
	assert.Len(t, ts.Values, 10)
}

type failingIterator struct{}

func (failingIterator) Next() (model.RawRecord, error) {
	return model.RawRecord{}, errors.New("disk on fire")
}

func TestExtract_IteratorError(t *testing.T) {
	_, err := Extract("FLTR", failingIterator{}, model.DateRange{Start: date(1, 9, 2023), End: date(10, 9, 2023)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.NotErrorIs(t, err, model.ErrMalformedRecord)
}

func TestExtract_DuplicateDatesWarn(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	recs := dailyRecords(date(1, 9, 2023), 30)
	// 07-09 appears twice
	dup := recs[6]
	dup.Line = 100
	recs = append(recs[:7], append([]model.RawRecord{dup}, recs[7:]...)...)
	interval := model.DateRange{Start: date(5, 9, 2023), End: date(14, 9, 2023)}

	ts, err := Extract("FLTR", NewSliceIterator(recs), interval)
	require.NoError(t, err)
	assert.Len(t, ts.Values, 11)
	assert.False(t, ts.Dense())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "FLTR", entry.Data["instrument"])
	assert.Contains(t, entry.Message, "11 values for 10 days")
}

func TestExtract_DenseWindowDoesNotWarn(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	interval := model.DateRange{Start: date(5, 9, 2023), End: date(14, 9, 2023)}
	_, err := Extract("FLTR", NewSliceIterator(dailyRecords(date(1, 9, 2023), 30)), interval)
	require.NoError(t, err)
	assert.Empty(t, hook.AllEntries())
}
