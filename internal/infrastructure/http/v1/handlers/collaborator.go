package handlers

import (
	"vetdesk/internal/domain/catalogs/collaborator"
	"vetdesk/internal/infrastructure/http/v1/dto"
)

type CollaboratorHTTPHandler = CatalogHandler[
	*collaborator.Collaborator,
	dto.CreateCollaboratorRequest,
	dto.UpdateCollaboratorRequest,
]

// NewCollaboratorHandler wires the generic catalog handler for collaborators.
func NewCollaboratorHandler(
	base *BaseHandler,
	service *collaborator.Service,
) *CollaboratorHTTPHandler {
	config := CatalogHandlerConfig[
		*collaborator.Collaborator,
		dto.CreateCollaboratorRequest,
		dto.UpdateCollaboratorRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "collaborator",

		MapCreateDTO: func(req dto.CreateCollaboratorRequest) (*collaborator.Collaborator, error) {
			return req.ToEntity(), nil
		},

		MapUpdateDTO: func(req dto.UpdateCollaboratorRequest, existing *collaborator.Collaborator) (*collaborator.Collaborator, error) {
			req.ApplyTo(existing)
			return existing, nil
		},

		MapToDTO: func(entity *collaborator.Collaborator) any {
			return dto.FromCollaborator(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
