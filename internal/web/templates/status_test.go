package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/impact-tracker/internal/core"
)

func TestStatusPage(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := StatusParams{
		Source:  "google-sheets",
		Sources: []string{"excel", "google-sheets"},
		State: &core.SyncState{
			Source:             "google-sheets",
			LastSyncedRowCount: 120,
			LastSyncTimestamp:  pgtype.Timestamptz{Time: now.Add(-3 * time.Hour), Valid: true},
			LastSyncStatus:     core.SyncPartial,
			LastSyncError:      pgtype.Text{String: "2 rows failed <to> sync", Valid: true},
			TotalRowsSynced:    118,
		},
		Overall: &core.OverallMetrics{TotalRecords: 118, TotalBeneficiaries: 1500.5},
		Now:     now,
	}

	var buf bytes.Buffer
	if err := StatusPage(p).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"google-sheets",
		`class="partial"`,
		"120",
		"1500.5",
		"3 h ago",
		"2 rows failed &lt;to&gt; sync",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(html, "<to>") {
		t.Error("error text was not escaped")
	}
}

func TestStatusPage_NeverSynced(t *testing.T) {
	var buf bytes.Buffer
	if err := StatusPage(StatusParams{Source: "excel"}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "has not synced yet") {
		t.Errorf("page = %s", buf.String())
	}
}

func TestErrorPage(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorPage("Unknown sync source", "Use one of the configured sources", "SYNC002").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, "SYNC002") || !strings.Contains(html, "Unknown sync source") {
		t.Errorf("page = %s", html)
	}
}
