package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"vetdesk/internal/domain/catalogs/collaborator"
	"vetdesk/internal/infrastructure/storage/postgres"
)

const collaboratorTable = "cat_collaborators"

// CollaboratorRepo implements the collaborator catalog repository.
// The shifts column is a PostgreSQL text[]; pgx maps it to []string.
type CollaboratorRepo struct {
	*BaseCatalogRepo[collaborator.Collaborator]
}

// NewCollaboratorRepo creates a new collaborator repository.
func NewCollaboratorRepo(txManager *postgres.TxManager) *CollaboratorRepo {
	return &CollaboratorRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[collaborator.Collaborator](
			txManager,
			collaboratorTable,
			postgres.ExtractDBColumns[collaborator.Collaborator](),
		),
	}
}

// ListActiveByRole retrieves active collaborators holding a clinical role.
func (r *CollaboratorRepo) ListActiveByRole(ctx context.Context, role collaborator.Role) ([]*collaborator.Collaborator, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"role": role}).
		Where(squirrel.Eq{"active": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*collaborator.Collaborator
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list collaborators by role: %w", err)
	}
	return items, nil
}
