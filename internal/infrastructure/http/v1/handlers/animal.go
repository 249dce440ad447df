package handlers

import (
	"vetdesk/internal/domain"
	"vetdesk/internal/domain/catalogs/animal"
	"vetdesk/internal/infrastructure/http/v1/dto"
)

type AnimalHTTPHandler = CatalogHandler[
	*animal.Animal,
	dto.CreateAnimalRequest,
	dto.UpdateAnimalRequest,
]

// NewAnimalHandler wires the generic catalog handler for animals.
func NewAnimalHandler(
	base *BaseHandler,
	service *domain.CatalogService[*animal.Animal],
) *AnimalHTTPHandler {
	config := CatalogHandlerConfig[
		*animal.Animal,
		dto.CreateAnimalRequest,
		dto.UpdateAnimalRequest,
	]{
		Service:    service,
		EntityName: "animal",

		MapCreateDTO: func(req dto.CreateAnimalRequest) (*animal.Animal, error) {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateAnimalRequest, existing *animal.Animal) (*animal.Animal, error) {
			if err := req.ApplyTo(existing); err != nil {
				return nil, err
			}
			return existing, nil
		},

		MapToDTO: func(entity *animal.Animal) any {
			return dto.FromAnimal(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
