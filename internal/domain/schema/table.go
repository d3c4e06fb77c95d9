package schema

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/gridbase/backend/internal/domain/shared"
)

// ErrSemanticColumnMissing is returned when a workflow needs a column
// by semantic tag and the table does not carry one
var ErrSemanticColumnMissing = errors.New("required semantic column missing")

// DataType is the storage type of a column. Cell values are stored as
// strings; the data type drives validation and presentation.
type DataType string

const (
	DataTypeText      DataType = "text"
	DataTypeNumber    DataType = "number"
	DataTypeDate      DataType = "date"
	DataTypeBoolean   DataType = "boolean"
	DataTypeReference DataType = "reference"
)

// IsValid reports whether the data type is one of the known types
func (d DataType) IsValid() bool {
	switch d {
	case DataTypeText, DataTypeNumber, DataTypeDate, DataTypeBoolean, DataTypeReference:
		return true
	}
	return false
}

var tableNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// Database is a tenant's logical database, the container for its tables
type Database struct {
	shared.TenantEntity
	Name string
}

// NewDatabase creates a logical database for a tenant
func NewDatabase(tenantID uuid.UUID, name string) (*Database, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: database name is required", shared.ErrInvalidInput)
	}
	return &Database{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
	}, nil
}

// Table is a user-defined table inside a logical database
type Table struct {
	shared.TenantEntity
	DatabaseID  uuid.UUID
	Name        string
	DisplayName string
	// System tables are provisioned by the invoicing bootstrap and keep
	// their semantic columns protected from deletion.
	System  bool
	Columns []Column
}

// NewTable creates a table definition. Name must be a lowercase
// identifier usable in URLs and lookups; DisplayName is free-form.
func NewTable(tenantID, databaseID uuid.UUID, name, displayName string) (*Table, error) {
	if !tableNamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: table name %q must match %s", shared.ErrInvalidInput, name, tableNamePattern)
	}
	if displayName == "" {
		displayName = name
	}
	return &Table{
		TenantEntity: shared.NewTenantEntity(tenantID),
		DatabaseID:   databaseID,
		Name:         name,
		DisplayName:  displayName,
	}, nil
}

// SemanticIndex builds the semantic tag index over the loaded columns
func (t *Table) SemanticIndex() SemanticIndex {
	return BuildSemanticIndex(t.Columns)
}

// ColumnByName returns the column with the given name, if present
func (t *Table) ColumnByName(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// AddColumn validates and appends a column definition. A semantic tag
// may appear on at most one column per table.
func (t *Table) AddColumn(col Column) error {
	if !col.DataType.IsValid() {
		return fmt.Errorf("%w: unknown data type %q", shared.ErrInvalidInput, col.DataType)
	}
	if !col.SemanticType.IsValid() {
		return fmt.Errorf("%w: unknown semantic type %q", shared.ErrInvalidInput, col.SemanticType)
	}
	if _, exists := t.ColumnByName(col.Name); exists {
		return fmt.Errorf("%w: column %q already exists", shared.ErrAlreadyExists, col.Name)
	}
	if col.SemanticType != SemanticNone {
		if t.SemanticIndex().Has(col.SemanticType) {
			return fmt.Errorf("%w: semantic type %s already assigned", shared.ErrAlreadyExists, col.SemanticType)
		}
	}
	col.TableID = t.ID
	col.Position = len(t.Columns)
	t.Columns = append(t.Columns, col)
	return nil
}

// Column is a column definition inside a table
type Column struct {
	shared.BaseEntity
	TableID      uuid.UUID
	Name         string
	DisplayName  string
	DataType     DataType
	SemanticType SemanticType
	Position     int
	Required     bool
}

// NewColumn creates a column definition
func NewColumn(name, displayName string, dataType DataType, semanticType SemanticType) (Column, error) {
	if name == "" {
		return Column{}, fmt.Errorf("%w: column name is required", shared.ErrInvalidInput)
	}
	if !dataType.IsValid() {
		return Column{}, fmt.Errorf("%w: unknown data type %q", shared.ErrInvalidInput, dataType)
	}
	if !semanticType.IsValid() {
		return Column{}, fmt.Errorf("%w: unknown semantic type %q", shared.ErrInvalidInput, semanticType)
	}
	if displayName == "" {
		displayName = name
	}
	return Column{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         name,
		DisplayName:  displayName,
		DataType:     dataType,
		SemanticType: semanticType,
	}, nil
}
