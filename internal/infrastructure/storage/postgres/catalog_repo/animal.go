package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"vetdesk/internal/core/id"
	"vetdesk/internal/domain/catalogs/animal"
	"vetdesk/internal/infrastructure/storage/postgres"
)

const animalTable = "cat_animals"

// AnimalRepo implements the animal catalog repository.
type AnimalRepo struct {
	*BaseCatalogRepo[animal.Animal]
}

// NewAnimalRepo creates a new animal repository.
func NewAnimalRepo(txManager *postgres.TxManager) *AnimalRepo {
	return &AnimalRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[animal.Animal](
			txManager,
			animalTable,
			postgres.ExtractDBColumns[animal.Animal](),
		),
	}
}

// ListByTutor retrieves all animals belonging to a tutor.
func (r *AnimalRepo) ListByTutor(ctx context.Context, tutorID id.ID) ([]*animal.Animal, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"tutor_id": tutorID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*animal.Animal
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list animals by tutor: %w", err)
	}
	return items, nil
}
