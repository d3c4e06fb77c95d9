package invoicing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gridbase/backend/internal/domain/invoicing"
	"github.com/gridbase/backend/internal/domain/schema"
	"github.com/gridbase/backend/internal/domain/shared"
	"github.com/gridbase/backend/internal/domain/tenant"
)

// In-memory repository fakes. The creation flow touches tables, rows
// and sequences together, so driving it against a coherent store beats
// wiring dozens of per-call expectations.

type memStore struct {
	mu        sync.Mutex
	databases map[uuid.UUID]*schema.Database
	tables    map[uuid.UUID]*schema.Table
	rows      map[uuid.UUID]*schema.Row
	rowOrder  []uuid.UUID
	counters  map[invoicing.SequenceScope]int64
	settings  map[uuid.UUID]*tenant.Settings
}

func newMemStore() *memStore {
	return &memStore{
		databases: make(map[uuid.UUID]*schema.Database),
		tables:    make(map[uuid.UUID]*schema.Table),
		rows:      make(map[uuid.UUID]*schema.Row),
		counters:  make(map[invoicing.SequenceScope]int64),
		settings:  make(map[uuid.UUID]*tenant.Settings),
	}
}

func (s *memStore) addDatabase(tenantID uuid.UUID, name string) *schema.Database {
	db, _ := schema.NewDatabase(tenantID, name)
	s.databases[db.ID] = db
	return db
}

type memDatabaseRepo struct{ store *memStore }

func (r *memDatabaseRepo) Save(ctx context.Context, db *schema.Database) error {
	r.store.databases[db.ID] = db
	return nil
}

func (r *memDatabaseRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*schema.Database, error) {
	db, ok := r.store.databases[id]
	if !ok || db.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return db, nil
}

func (r *memDatabaseRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]schema.Database, error) {
	var out []schema.Database
	for _, db := range r.store.databases {
		if db.TenantID == tenantID {
			out = append(out, *db)
		}
	}
	return out, nil
}

func (r *memDatabaseRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	delete(r.store.databases, id)
	return nil
}

type memTableRepo struct{ store *memStore }

func (r *memTableRepo) Save(ctx context.Context, table *schema.Table) error {
	r.store.tables[table.ID] = table
	return nil
}

func (r *memTableRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*schema.Table, error) {
	t, ok := r.store.tables[id]
	if !ok || t.TenantID != tenantID {
		return nil, shared.ErrTableNotFound
	}
	return t, nil
}

func (r *memTableRepo) FindByName(ctx context.Context, tenantID, databaseID uuid.UUID, name string) (*schema.Table, error) {
	for _, t := range r.store.tables {
		if t.TenantID == tenantID && t.DatabaseID == databaseID && t.Name == name {
			return t, nil
		}
	}
	return nil, shared.ErrTableNotFound
}

func (r *memTableRepo) FindAllForDatabase(ctx context.Context, tenantID, databaseID uuid.UUID) ([]schema.Table, error) {
	var out []schema.Table
	for _, t := range r.store.tables {
		if t.TenantID == tenantID && t.DatabaseID == databaseID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memTableRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	delete(r.store.tables, id)
	return nil
}

func (r *memTableRepo) SaveColumn(ctx context.Context, column *schema.Column) error {
	return nil
}

func (r *memTableRepo) DeleteColumn(ctx context.Context, tenantID, tableID, columnID uuid.UUID) error {
	return nil
}

type memRowRepo struct{ store *memStore }

func (r *memRowRepo) Save(ctx context.Context, row *schema.Row) error {
	if _, seen := r.store.rows[row.ID]; !seen {
		r.store.rowOrder = append(r.store.rowOrder, row.ID)
	}
	r.store.rows[row.ID] = row
	return nil
}

func (r *memRowRepo) FindByID(ctx context.Context, tableID, id uuid.UUID) (*schema.Row, error) {
	row, ok := r.store.rows[id]
	if !ok || row.TableID != tableID {
		return nil, shared.ErrNotFound
	}
	return row, nil
}

func (r *memRowRepo) FindAll(ctx context.Context, tableID uuid.UUID, filter schema.RowFilter) (shared.Paginated[schema.Row], error) {
	var matched []schema.Row
	for _, id := range r.store.rowOrder {
		row := r.store.rows[id]
		if row == nil || row.TableID != tableID {
			continue
		}
		match := true
		for columnID, want := range filter.CellEquals {
			if got, ok := row.CellValue(columnID); !ok || got != want {
				match = false
				break
			}
		}
		if match {
			matched = append(matched, *row)
		}
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return shared.NewPaginated(matched[start:end], int64(len(matched)), page, pageSize), nil
}

func (r *memRowRepo) Delete(ctx context.Context, tableID, id uuid.UUID) error {
	delete(r.store.rows, id)
	return nil
}

func (r *memRowRepo) UpsertCells(ctx context.Context, rowID uuid.UUID, values map[uuid.UUID]string) error {
	row, ok := r.store.rows[rowID]
	if !ok {
		return shared.ErrNotFound
	}
	for columnID, value := range values {
		row.SetCell(columnID, value)
	}
	return nil
}

func (r *memRowRepo) CountByTable(ctx context.Context, tableID uuid.UUID) (int64, error) {
	var n int64
	for _, row := range r.store.rows {
		if row.TableID == tableID {
			n++
		}
	}
	return n, nil
}

type memSequenceRepo struct{ store *memStore }

func (r *memSequenceRepo) NextValue(ctx context.Context, scope invoicing.SequenceScope, startNumber int64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	last, ok := r.store.counters[scope]
	if !ok {
		last = startNumber - 1
	}
	last++
	r.store.counters[scope] = last
	return last, nil
}

func (r *memSequenceRepo) FindAllForDatabase(ctx context.Context, tenantID, databaseID uuid.UUID) ([]invoicing.Sequence, error) {
	var out []invoicing.Sequence
	for scope, last := range r.store.counters {
		if scope.TenantID != tenantID || scope.DatabaseID != databaseID {
			continue
		}
		out = append(out, invoicing.Sequence{
			TenantID:   tenantID,
			DatabaseID: databaseID,
			Series:     scope.Series,
			Year:       scope.Year,
			LastValue:  last,
		})
	}
	return out, nil
}

type memSettingsRepo struct{ store *memStore }

func (r *memSettingsRepo) Save(ctx context.Context, settings *tenant.Settings) error {
	r.store.settings[settings.TenantID] = settings
	return nil
}

func (r *memSettingsRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*tenant.Settings, error) {
	settings, ok := r.store.settings[tenantID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return settings, nil
}

// memScope runs the function against the shared store, no transaction
// semantics. Rollback behavior is covered by the persistence tests.
type memScope struct{ store *memStore }

func (s *memScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(&memScopeRepos{store: s.store})
}

type memScopeRepos struct{ store *memStore }

func (r *memScopeRepos) SequenceRepo() invoicing.SequenceRepository { return &memSequenceRepo{r.store} }
func (r *memScopeRepos) RowRepo() schema.RowRepository              { return &memRowRepo{r.store} }
func (r *memScopeRepos) TableRepo() schema.TableRepository          { return &memTableRepo{r.store} }

// memIdempotencyStore is a map-backed IdempotencyStore
type memIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemIdempotencyStore() *memIdempotencyStore {
	return &memIdempotencyStore{entries: make(map[string]string)}
}

func (s *memIdempotencyStore) Remember(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.entries[key]
	return value, ok, nil
}

func (s *memIdempotencyStore) Record(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}
