package dto

import (
	"vetdesk/internal/core/types"
	"vetdesk/internal/domain/catalogs/servicedef"
)

// --- Request DTOs ---

// CreateServiceDefinitionRequest is the request body for creating a service definition.
type CreateServiceDefinitionRequest struct {
	Code            string      `json:"code"`
	Name            string      `json:"name" binding:"required"`
	DefaultPrice    types.Money `json:"defaultPrice"`
	DurationMinutes int         `json:"durationMinutes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateServiceDefinitionRequest) ToEntity() *servicedef.ServiceDefinition {
	s := servicedef.NewServiceDefinition(r.Code, r.Name, r.DefaultPrice)
	s.DurationMinutes = r.DurationMinutes
	return s
}

// UpdateServiceDefinitionRequest is the request body for updating a service definition.
type UpdateServiceDefinitionRequest struct {
	Code            string      `json:"code"`
	Name            string      `json:"name" binding:"required"`
	DefaultPrice    types.Money `json:"defaultPrice"`
	DurationMinutes int         `json:"durationMinutes"`
	Active          bool        `json:"active"`
	Version         int         `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateServiceDefinitionRequest) ApplyTo(s *servicedef.ServiceDefinition) {
	s.Code = r.Code
	s.Name = r.Name
	s.DefaultPrice = r.DefaultPrice
	s.DurationMinutes = r.DurationMinutes
	s.Active = r.Active
	s.Version = r.Version
}

// --- Response DTOs ---

// ServiceDefinitionResponse is the response body for a service definition.
type ServiceDefinitionResponse struct {
	ID              string      `json:"id"`
	Code            string      `json:"code"`
	Name            string      `json:"name"`
	DefaultPrice    types.Money `json:"defaultPrice"`
	DurationMinutes int         `json:"durationMinutes"`
	Active          bool        `json:"active"`
	DeletionMark    bool        `json:"deletionMark"`
	Version         int         `json:"version"`
}

// FromServiceDefinition creates response DTO from domain entity.
func FromServiceDefinition(s *servicedef.ServiceDefinition) *ServiceDefinitionResponse {
	return &ServiceDefinitionResponse{
		ID:              s.ID.String(),
		Code:            s.Code,
		Name:            s.Name,
		DefaultPrice:    s.DefaultPrice,
		DurationMinutes: s.DurationMinutes,
		Active:          s.Active,
		DeletionMark:    s.DeletionMark,
		Version:         s.Version,
	}
}
