package schema

import (
	"context"

	"github.com/google/uuid"

	"github.com/gridbase/backend/internal/domain/schema"
	"github.com/gridbase/backend/internal/domain/shared"
)

// DatabaseService manages tenants' logical databases
type DatabaseService struct {
	databaseRepo schema.DatabaseRepository
	tableRepo    schema.TableRepository
}

// NewDatabaseService creates a new DatabaseService
func NewDatabaseService(databaseRepo schema.DatabaseRepository, tableRepo schema.TableRepository) *DatabaseService {
	return &DatabaseService{
		databaseRepo: databaseRepo,
		tableRepo:    tableRepo,
	}
}

// Create creates a logical database. Names are unique per tenant.
func (s *DatabaseService) Create(ctx context.Context, tenantID uuid.UUID, req CreateDatabaseRequest) (*DatabaseResponse, error) {
	existing, err := s.databaseRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].Name == req.Name {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Database with this name already exists")
		}
	}

	db, err := schema.NewDatabase(tenantID, req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.databaseRepo.Save(ctx, db); err != nil {
		return nil, err
	}
	return toDatabaseResponse(db), nil
}

// Get returns one database by ID
func (s *DatabaseService) Get(ctx context.Context, tenantID, databaseID uuid.UUID) (*DatabaseResponse, error) {
	db, err := s.databaseRepo.FindByID(ctx, tenantID, databaseID)
	if err != nil {
		return nil, err
	}
	return toDatabaseResponse(db), nil
}

// List returns all databases of a tenant
func (s *DatabaseService) List(ctx context.Context, tenantID uuid.UUID) ([]DatabaseResponse, error) {
	databases, err := s.databaseRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	responses := make([]DatabaseResponse, 0, len(databases))
	for i := range databases {
		responses = append(responses, *toDatabaseResponse(&databases[i]))
	}
	return responses, nil
}

// Delete removes a database. Databases that still contain tables are
// protected to avoid orphaning their rows.
func (s *DatabaseService) Delete(ctx context.Context, tenantID, databaseID uuid.UUID) error {
	tables, err := s.tableRepo.FindAllForDatabase(ctx, tenantID, databaseID)
	if err != nil {
		return err
	}
	if len(tables) > 0 {
		return shared.NewDomainError("DATABASE_NOT_EMPTY", "Delete the database's tables first")
	}
	return s.databaseRepo.Delete(ctx, tenantID, databaseID)
}
