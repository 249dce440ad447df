package collaborator

import (
	"context"

	"vetdesk/internal/core/id"
	"vetdesk/internal/core/tx"
	"vetdesk/internal/domain"
)

// Service wraps the generic catalog service with scheduling helpers.
type Service struct {
	*domain.CatalogService[*Collaborator]
}

// NewService creates a collaborator service.
func NewService(repo domain.CatalogRepository[*Collaborator], txManager tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Collaborator]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "collaborator",
		}),
	}
}

// GetShifts returns the shift names configured for a collaborator.
// Inactive or deleted collaborators have no schedulable shifts.
func (s *Service) GetShifts(ctx context.Context, collaboratorID id.ID) ([]string, error) {
	c, err := s.GetByID(ctx, collaboratorID)
	if err != nil {
		return nil, err
	}
	if !c.Active || c.DeletionMark {
		return nil, nil
	}
	return c.Shifts, nil
}
