package handlers

import (
	"vetdesk/internal/domain"
	"vetdesk/internal/domain/catalogs/tutor"
	"vetdesk/internal/infrastructure/http/v1/dto"
)

// Type alias keeps handler signatures readable.
type TutorHTTPHandler = CatalogHandler[
	*tutor.Tutor,
	dto.CreateTutorRequest,
	dto.UpdateTutorRequest,
]

// NewTutorHandler wires the generic catalog handler for tutors.
func NewTutorHandler(
	base *BaseHandler,
	service *domain.CatalogService[*tutor.Tutor],
) *TutorHTTPHandler {
	config := CatalogHandlerConfig[
		*tutor.Tutor,
		dto.CreateTutorRequest,
		dto.UpdateTutorRequest,
	]{
		Service:    service,
		EntityName: "tutor",

		MapCreateDTO: func(req dto.CreateTutorRequest) (*tutor.Tutor, error) {
			return req.ToEntity(), nil
		},

		MapUpdateDTO: func(req dto.UpdateTutorRequest, existing *tutor.Tutor) (*tutor.Tutor, error) {
			req.ApplyTo(existing)
			return existing, nil
		},

		MapToDTO: func(entity *tutor.Tutor) any {
			return dto.FromTutor(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
