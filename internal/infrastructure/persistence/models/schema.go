package models

import (
	"github.com/google/uuid"

	"github.com/gridbase/backend/internal/domain/schema"
)

// DatabaseModel is the persistence model for a tenant's logical database
type DatabaseModel struct {
	TenantModel
	Name string `gorm:"type:varchar(100);not null;uniqueIndex:idx_database_tenant_name,priority:2"`
}

// TableName returns the table name for GORM
func (DatabaseModel) TableName() string {
	return "grid_databases"
}

// ToDomain converts the persistence model to a domain Database
func (m *DatabaseModel) ToDomain() *schema.Database {
	return &schema.Database{
		TenantEntity: m.TenantModel.ToDomain(),
		Name:         m.Name,
	}
}

// FromDomain populates the persistence model from a domain Database
func (m *DatabaseModel) FromDomain(d *schema.Database) {
	m.FromDomainTenantEntity(d.TenantEntity)
	m.Name = d.Name
}

// TableModel is the persistence model for a user-defined table
type TableModel struct {
	TenantModel
	DatabaseID  uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_table_db_name,priority:1"`
	Name        string        `gorm:"type:varchar(64);not null;uniqueIndex:idx_table_db_name,priority:2"`
	DisplayName string        `gorm:"type:varchar(200);not null"`
	System      bool          `gorm:"not null;default:false"`
	Columns     []ColumnModel `gorm:"foreignKey:TableID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (TableModel) TableName() string {
	return "grid_tables"
}

// ToDomain converts the persistence model to a domain Table with columns
func (m *TableModel) ToDomain() *schema.Table {
	table := &schema.Table{
		TenantEntity: m.TenantModel.ToDomain(),
		DatabaseID:   m.DatabaseID,
		Name:         m.Name,
		DisplayName:  m.DisplayName,
		System:       m.System,
	}
	table.Columns = make([]schema.Column, 0, len(m.Columns))
	for i := range m.Columns {
		table.Columns = append(table.Columns, *m.Columns[i].ToDomain())
	}
	return table
}

// FromDomain populates the persistence model from a domain Table
func (m *TableModel) FromDomain(t *schema.Table) {
	m.FromDomainTenantEntity(t.TenantEntity)
	m.DatabaseID = t.DatabaseID
	m.Name = t.Name
	m.DisplayName = t.DisplayName
	m.System = t.System
	m.Columns = make([]ColumnModel, 0, len(t.Columns))
	for i := range t.Columns {
		var col ColumnModel
		col.FromDomain(&t.Columns[i])
		m.Columns = append(m.Columns, col)
	}
}

// ColumnModel is the persistence model for a column definition
type ColumnModel struct {
	BaseModel
	TableID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_column_table_name,priority:1;index:idx_column_semantic"`
	Name         string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_column_table_name,priority:2"`
	DisplayName  string    `gorm:"type:varchar(200);not null"`
	DataType     string    `gorm:"type:varchar(20);not null"`
	SemanticType string    `gorm:"type:varchar(40);index:idx_column_semantic"`
	Position     int       `gorm:"not null;default:0"`
	Required     bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ColumnModel) TableName() string {
	return "grid_columns"
}

// ToDomain converts the persistence model to a domain Column
func (m *ColumnModel) ToDomain() *schema.Column {
	return &schema.Column{
		BaseEntity:   m.BaseModel.ToDomain(),
		TableID:      m.TableID,
		Name:         m.Name,
		DisplayName:  m.DisplayName,
		DataType:     schema.DataType(m.DataType),
		SemanticType: schema.SemanticType(m.SemanticType),
		Position:     m.Position,
		Required:     m.Required,
	}
}

// FromDomain populates the persistence model from a domain Column
func (m *ColumnModel) FromDomain(c *schema.Column) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.TableID = c.TableID
	m.Name = c.Name
	m.DisplayName = c.DisplayName
	m.DataType = string(c.DataType)
	m.SemanticType = string(c.SemanticType)
	m.Position = c.Position
	m.Required = c.Required
}

// RowModel is the persistence model for a row in a user-defined table
type RowModel struct {
	BaseModel
	TableID uuid.UUID   `gorm:"type:uuid;not null;index"`
	Cells   []CellModel `gorm:"foreignKey:RowID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (RowModel) TableName() string {
	return "grid_rows"
}

// ToDomain converts the persistence model to a domain Row with cells
func (m *RowModel) ToDomain() *schema.Row {
	row := &schema.Row{
		BaseEntity: m.BaseModel.ToDomain(),
		TableID:    m.TableID,
	}
	row.Cells = make([]schema.Cell, 0, len(m.Cells))
	for i := range m.Cells {
		row.Cells = append(row.Cells, *m.Cells[i].ToDomain())
	}
	return row
}

// FromDomain populates the persistence model from a domain Row
func (m *RowModel) FromDomain(r *schema.Row) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.TableID = r.TableID
	m.Cells = make([]CellModel, 0, len(r.Cells))
	for i := range r.Cells {
		var cell CellModel
		cell.FromDomain(&r.Cells[i])
		m.Cells = append(m.Cells, cell)
	}
}

// CellModel is the persistence model for one (row, column) value
type CellModel struct {
	BaseModel
	RowID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cell_row_column,priority:1"`
	ColumnID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cell_row_column,priority:2;index:idx_cell_column_value"`
	Value    string    `gorm:"type:text;index:idx_cell_column_value"`
}

// TableName returns the table name for GORM
func (CellModel) TableName() string {
	return "grid_cells"
}

// ToDomain converts the persistence model to a domain Cell
func (m *CellModel) ToDomain() *schema.Cell {
	return &schema.Cell{
		BaseEntity: m.BaseModel.ToDomain(),
		RowID:      m.RowID,
		ColumnID:   m.ColumnID,
		Value:      m.Value,
	}
}

// FromDomain populates the persistence model from a domain Cell
func (m *CellModel) FromDomain(c *schema.Cell) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.RowID = c.RowID
	m.ColumnID = c.ColumnID
	m.Value = c.Value
}
