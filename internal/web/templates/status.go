// Package templates holds the server-rendered pages.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/impact-tracker/internal/core"
)

// StatusParams is the data of the status page.
type StatusParams struct {
	Source  string
	Sources []string
	State   *core.SyncState // nil when the source never synced
	Overall *core.OverallMetrics
	Now     time.Time
}

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem auto;max-width:48rem;color:#1f2937}` +
	`table{border-collapse:collapse;width:100%}td,th{border-bottom:1px solid #e5e7eb;padding:.4rem;text-align:left}` +
	`.success{color:#047857}.partial{color:#b45309}.failed{color:#b91c1c}` +
	`.alert{border:1px solid #fca5a5;background:#fef2f2;padding:1rem;border-radius:.5rem}`

// StatusPage renders the last sync state and the overall totals.
func StatusPage(p StatusParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		pw := &pageWriter{w: w}
		pw.head("Impact Tracker")
		pw.printf("<h1>Impact Tracker</h1>")

		pw.printf("<h2>Sync: %s</h2>", esc(p.Source))
		if p.State == nil {
			pw.printf("<p>This source has not synced yet.</p>")
		} else {
			st := p.State
			pw.printf("<table>")
			pw.row("Status", fmt.Sprintf(`<span class="%s">%s</span>`, esc(string(st.LastSyncStatus)), esc(string(st.LastSyncStatus))))
			pw.row("Last sync", esc(formatTime(st.LastSyncTimestamp.Time, st.LastSyncTimestamp.Valid, p.Now)))
			pw.row("Rows in last sync", strconv.Itoa(st.LastSyncedRowCount))
			pw.row("Total rows synced", strconv.Itoa(st.TotalRowsSynced))
			if st.LastSyncError.Valid {
				pw.row("Last error", esc(st.LastSyncError.String))
			}
			pw.printf("</table>")
		}

		if p.Overall != nil {
			o := p.Overall
			pw.printf("<h2>Totals</h2><table>")
			pw.row("Records", strconv.Itoa(o.TotalRecords))
			pw.row("Beneficiaries", formatNumber(o.TotalBeneficiaries))
			pw.row("Amount", formatNumber(o.TotalAmount))
			pw.row("Quantity", formatNumber(o.TotalQuantity))
			pw.row("Projects", strconv.Itoa(o.UniqueProjects))
			pw.row("Sub-projects", strconv.Itoa(o.UniqueSubProjects))
			pw.row("Causes", strconv.Itoa(o.UniqueCauses))
			pw.printf("</table>")
		}

		if len(p.Sources) > 0 {
			pw.printf("<h2>Sources</h2><ul>")
			for _, s := range p.Sources {
				pw.printf(`<li><a href="/?source=%s">%s</a></li>`, esc(s), esc(s))
			}
			pw.printf("</ul>")
		}

		pw.foot()
		return pw.err
	})
}

// ErrorPage renders a user-facing error with its support code.
func ErrorPage(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		pw := &pageWriter{w: w}
		pw.head("Error")
		pw.printf(`<div class="alert" role="alert"><strong>%s</strong>`, esc(message))
		if action != "" {
			pw.printf("<p>%s</p>", esc(action))
		}
		pw.printf("<small>Code: %s</small></div>", esc(code))
		pw.foot()
		return pw.err
	})
}

// pageWriter stops writing after the first error.
type pageWriter struct {
	w   io.Writer
	err error
}

func (pw *pageWriter) printf(format string, args ...any) {
	if pw.err != nil {
		return
	}
	_, pw.err = fmt.Fprintf(pw.w, format, args...)
}

func (pw *pageWriter) head(title string) {
	pw.printf(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
		`<meta name="viewport" content="width=device-width, initial-scale=1">`+
		`<title>%s</title><style>%s</style></head><body>`, esc(title), pageStyle)
}

func (pw *pageWriter) foot() {
	pw.printf("</body></html>")
}

// row writes a two-column table row. value must already be escaped.
func (pw *pageWriter) row(label, value string) {
	pw.printf("<tr><th>%s</th><td>%s</td></tr>", esc(label), value)
}

func esc(s string) string {
	return templ.EscapeString(s)
}

func formatTime(t time.Time, valid bool, now time.Time) string {
	if !valid {
		return "never"
	}
	s := t.UTC().Format("2006-01-02 15:04 MST")
	if now.IsZero() {
		return s
	}
	return s + " (" + ago(now.Sub(t)) + ")"
}

func ago(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%d h ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
