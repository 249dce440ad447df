package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"vetdesk/internal/domain/catalogs/servicedef"
	"vetdesk/internal/infrastructure/storage/postgres"
)

const serviceDefinitionTable = "cat_service_definitions"

// ServiceDefinitionRepo implements the service definition catalog repository.
type ServiceDefinitionRepo struct {
	*BaseCatalogRepo[servicedef.ServiceDefinition]
}

// NewServiceDefinitionRepo creates a new service definition repository.
func NewServiceDefinitionRepo(txManager *postgres.TxManager) *ServiceDefinitionRepo {
	return &ServiceDefinitionRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[servicedef.ServiceDefinition](
			txManager,
			serviceDefinitionTable,
			postgres.ExtractDBColumns[servicedef.ServiceDefinition](),
		),
	}
}

// ListActive retrieves all active service definitions.
func (r *ServiceDefinitionRepo) ListActive(ctx context.Context) ([]*servicedef.ServiceDefinition, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"active": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*servicedef.ServiceDefinition
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list active service definitions: %w", err)
	}
	return items, nil
}
