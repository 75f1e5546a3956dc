package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockWindow/internal/csvstore"
	"StockWindow/internal/model"
)

// maxListed caps how many instruments each section of a summary lists.
const maxListed = 20

// FormatRunSummary formats a completed run into a Telegram message.
func FormatRunSummary(report *model.RunReport) string {
	var b strings.Builder

	ok := report.Succeeded()
	failed := report.Failures()

	b.WriteString(fmt.Sprintf("📊 <b>StockWindow run</b> | %s\n\n", report.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Instruments: %d | ok: %d | failed: %d\n", len(report.Results), len(ok), len(failed)))
	b.WriteString(fmt.Sprintf("Files written: %d | took %s\n", report.Written, report.Duration.Round(time.Millisecond)))

	if len(ok) > 0 {
		b.WriteString("\n📈 <b>Predictions:</b>\n")
		for i, res := range ok {
			if i == maxListed {
				b.WriteString(fmt.Sprintf("  … and %d more\n", len(ok)-maxListed))
				break
			}
			b.WriteString(fmt.Sprintf("  %s [%s] last %s → %s\n",
				html.EscapeString(res.Instrument.Key()),
				res.Window.Range,
				formatLast(res.Window.Values),
				formatValues(res.Prediction)))
		}
	}

	if len(failed) > 0 {
		b.WriteString("\n⚠️ <b>Failures:</b>\n")
		for i, res := range failed {
			if i == maxListed {
				b.WriteString(fmt.Sprintf("  … and %d more\n", len(failed)-maxListed))
				break
			}
			b.WriteString(fmt.Sprintf("  %s: %s\n",
				html.EscapeString(res.Instrument.Key()),
				model.ErrorKind(res.Err)))
		}
	}

	return b.String()
}

// FormatRunError formats a run that aborted before producing a report.
func FormatRunError(err error) string {
	return fmt.Sprintf("❌ <b>StockWindow run aborted</b>\n\n%s", html.EscapeString(err.Error()))
}

func formatLast(values []float64) string {
	if len(values) == 0 {
		return "-"
	}
	return csvstore.FormatValue(values[len(values)-1])
}

func formatValues(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = csvstore.FormatValue(v)
	}
	return strings.Join(parts, ", ")
}
