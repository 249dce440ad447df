package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/domain/catalogs/tutor"
	"vetdesk/internal/infrastructure/storage/postgres"
)

const tutorTable = "cat_tutors"

// TutorRepo implements the tutor catalog repository.
type TutorRepo struct {
	*BaseCatalogRepo[tutor.Tutor]
}

// NewTutorRepo creates a new tutor repository.
func NewTutorRepo(txManager *postgres.TxManager) *TutorRepo {
	return &TutorRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[tutor.Tutor](
			txManager,
			tutorTable,
			postgres.ExtractDBColumns[tutor.Tutor](),
		),
	}
}

// FindByDocument retrieves a tutor by identity document number.
func (r *TutorRepo) FindByDocument(ctx context.Context, document string) (*tutor.Tutor, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"document": document}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("tutor", document)
		}
		return nil, err
	}
	return item, nil
}
