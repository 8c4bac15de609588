package core

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/impact-tracker/internal/cleaner"
	"github.com/JonMunkholm/impact-tracker/internal/source"
)

// ----------------------------------------------------------------------------
// In-memory Store
// ----------------------------------------------------------------------------

type memStore struct {
	mu sync.Mutex

	upserted []cleaner.CanonicalRecord
	states   map[string]SyncState
	saves    int
	runs     []SyncRun
	facts    []Fact
	filters  FilterState
	assets   map[string]Asset
	subs     []string

	upsertErr   func(rec cleaner.CanonicalRecord) error
	getStateErr error
	saveErr     error
}

func newMemStore() *memStore {
	return &memStore{
		states: make(map[string]SyncState),
		assets: make(map[string]Asset),
	}
}

func (m *memStore) UpsertRecord(_ context.Context, rec cleaner.CanonicalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		if err := m.upsertErr(rec); err != nil {
			return err
		}
	}
	m.upserted = append(m.upserted, rec)
	return nil
}

func (m *memStore) GetSyncState(_ context.Context, src string) (SyncState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getStateErr != nil {
		return SyncState{}, false, m.getStateErr
	}
	st, ok := m.states[src]
	return st, ok, nil
}

func (m *memStore) SaveSyncState(_ context.Context, st SyncState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.states[st.Source] = st
	return nil
}

func (m *memStore) InsertSyncRun(_ context.Context, run SyncRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *memStore) ListSyncRuns(_ context.Context, src string, limit int) ([]SyncRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SyncRun
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.runs[i].Source == src {
			out = append(out, m.runs[i])
		}
	}
	return out, nil
}

func (m *memStore) ListFacts(_ context.Context, f FilterState) ([]Fact, error) {
	m.filters = f
	return m.facts, nil
}

func (m *memStore) GetAsset(_ context.Context, sub string) (Asset, bool, error) {
	a, ok := m.assets[sub]
	return a, ok, nil
}

func (m *memStore) ListSubProjects(context.Context) ([]string, error) {
	return m.subs, nil
}

func (m *memStore) InsertAssetIfMissing(_ context.Context, a Asset) (bool, error) {
	if _, ok := m.assets[a.SubProjectCanon]; ok {
		return false, nil
	}
	m.assets[a.SubProjectCanon] = a
	return true, nil
}

// ----------------------------------------------------------------------------
// Fake Source
// ----------------------------------------------------------------------------

type fakeSource struct {
	name  string
	sheet *source.Sheet
	err   error

	mu    sync.Mutex
	calls int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(context.Context) (*source.Sheet, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.sheet, nil
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// trackerSheet returns n rows numbered 1..n.
func trackerSheet(n int) *source.Sheet {
	sheet := &source.Sheet{Headers: []string{"Sr.No", "Project", "Sub Project", "No. of Beneficiaries"}}
	for i := 1; i <= n; i++ {
		sheet.Rows = append(sheet.Rows, cleaner.RawRow{
			"Sr.No":                strconv.Itoa(i),
			"Project":              "nutrition",
			"Sub Project":          "goodie bag",
			"No. of Beneficiaries": "10",
		})
	}
	return sheet
}

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(store Store, sources ...source.Source) *Service {
	reg, err := source.NewRegistry(sources...)
	if err != nil {
		panic(err)
	}
	svc := NewService(store, reg, Config{SyncMaxWait: 50 * time.Millisecond})
	svc.now = func() time.Time { return testNow }
	svc.newID = func() uuid.UUID { return uuid.MustParse("6f1c2a4e-8a53-4d1b-9a53-1f2d3c4b5a69") }
	return svc
}

func text(s string) pgtype.Text  { return pgtype.Text{String: s, Valid: true} }
func f8(v float64) pgtype.Float8 { return pgtype.Float8{Float64: v, Valid: true} }
func i4(v int32) pgtype.Int4     { return pgtype.Int4{Int32: v, Valid: true} }
