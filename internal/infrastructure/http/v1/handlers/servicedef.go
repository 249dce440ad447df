package handlers

import (
	"vetdesk/internal/domain"
	"vetdesk/internal/domain/catalogs/servicedef"
	"vetdesk/internal/infrastructure/http/v1/dto"
)

type ServiceDefinitionHTTPHandler = CatalogHandler[
	*servicedef.ServiceDefinition,
	dto.CreateServiceDefinitionRequest,
	dto.UpdateServiceDefinitionRequest,
]

// NewServiceDefinitionHandler wires the generic catalog handler for service definitions.
func NewServiceDefinitionHandler(
	base *BaseHandler,
	service *domain.CatalogService[*servicedef.ServiceDefinition],
) *ServiceDefinitionHTTPHandler {
	config := CatalogHandlerConfig[
		*servicedef.ServiceDefinition,
		dto.CreateServiceDefinitionRequest,
		dto.UpdateServiceDefinitionRequest,
	]{
		Service:    service,
		EntityName: "service_definition",

		MapCreateDTO: func(req dto.CreateServiceDefinitionRequest) (*servicedef.ServiceDefinition, error) {
			return req.ToEntity(), nil
		},

		MapUpdateDTO: func(req dto.UpdateServiceDefinitionRequest, existing *servicedef.ServiceDefinition) (*servicedef.ServiceDefinition, error) {
			req.ApplyTo(existing)
			return existing, nil
		},

		MapToDTO: func(entity *servicedef.ServiceDefinition) any {
			return dto.FromServiceDefinition(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
