package schema

import (
	"github.com/google/uuid"

	"github.com/gridbase/backend/internal/domain/shared"
)

// Row is one record in a user-defined table. Cells are sparse: a row
// only carries cells for columns that have values.
type Row struct {
	shared.BaseEntity
	TableID uuid.UUID
	Cells   []Cell
}

// NewRow creates an empty row for a table
func NewRow(tableID uuid.UUID) *Row {
	return &Row{
		BaseEntity: shared.NewBaseEntity(),
		TableID:    tableID,
	}
}

// SetCell sets or replaces the value for a column on this row
func (r *Row) SetCell(columnID uuid.UUID, value string) {
	for i := range r.Cells {
		if r.Cells[i].ColumnID == columnID {
			r.Cells[i].Value = value
			return
		}
	}
	r.Cells = append(r.Cells, Cell{
		BaseEntity: shared.NewBaseEntity(),
		RowID:      r.ID,
		ColumnID:   columnID,
		Value:      value,
	})
}

// CellValue returns the value stored for a column, if any
func (r *Row) CellValue(columnID uuid.UUID) (string, bool) {
	for i := range r.Cells {
		if r.Cells[i].ColumnID == columnID {
			return r.Cells[i].Value, true
		}
	}
	return "", false
}

// SemanticValue resolves a value through the table's semantic index.
// Missing column or missing cell both report ok=false.
func (r *Row) SemanticValue(idx SemanticIndex, tag SemanticType) (string, bool) {
	col, ok := idx.Column(tag)
	if !ok {
		return "", false
	}
	return r.CellValue(col.ID)
}

// SetSemanticValue writes a value through the semantic index. The
// write is skipped silently when the table carries no such column, so
// optional fields degrade gracefully on partially-tagged tables.
func (r *Row) SetSemanticValue(idx SemanticIndex, tag SemanticType, value string) bool {
	col, ok := idx.Column(tag)
	if !ok {
		return false
	}
	r.SetCell(col.ID, value)
	return true
}

// Cell holds the value of one (row, column) pair
type Cell struct {
	shared.BaseEntity
	RowID    uuid.UUID
	ColumnID uuid.UUID
	Value    string
}

// ValueMap flattens the row into a columnID -> value map
func (r *Row) ValueMap() map[uuid.UUID]string {
	values := make(map[uuid.UUID]string, len(r.Cells))
	for i := range r.Cells {
		values[r.Cells[i].ColumnID] = r.Cells[i].Value
	}
	return values
}
