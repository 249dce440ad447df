package dto

import (
	"time"

	"vetdesk/internal/core/id"
	"vetdesk/internal/domain/catalogs/animal"
)

// --- Request DTOs ---

// CreateAnimalRequest is the request body for creating an animal.
type CreateAnimalRequest struct {
	Code      string     `json:"code"`
	Name      string     `json:"name" binding:"required"`
	TutorID   string     `json:"tutorId" binding:"required,uuid"`
	Species   string     `json:"species" binding:"required"`
	Breed     *string    `json:"breed"`
	Sex       animal.Sex `json:"sex"`
	BirthDate *time.Time `json:"birthDate"`
	WeightKg  *float64   `json:"weightKg"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateAnimalRequest) ToEntity() (*animal.Animal, error) {
	tutorID, err := id.Parse(r.TutorID)
	if err != nil {
		return nil, err
	}

	a := animal.NewAnimal(r.Code, r.Name, tutorID, r.Species)
	a.Breed = r.Breed
	if r.Sex != "" {
		a.Sex = r.Sex
	}
	a.BirthDate = r.BirthDate
	a.WeightKg = r.WeightKg
	return a, nil
}

// UpdateAnimalRequest is the request body for updating an animal.
type UpdateAnimalRequest struct {
	Code      string     `json:"code"`
	Name      string     `json:"name" binding:"required"`
	TutorID   string     `json:"tutorId" binding:"required,uuid"`
	Species   string     `json:"species" binding:"required"`
	Breed     *string    `json:"breed"`
	Sex       animal.Sex `json:"sex"`
	BirthDate *time.Time `json:"birthDate"`
	WeightKg  *float64   `json:"weightKg"`
	Deceased  bool       `json:"deceased"`
	Version   int        `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateAnimalRequest) ApplyTo(a *animal.Animal) error {
	tutorID, err := id.Parse(r.TutorID)
	if err != nil {
		return err
	}

	a.Code = r.Code
	a.Name = r.Name
	a.TutorID = tutorID
	a.Species = r.Species
	a.Breed = r.Breed
	if r.Sex != "" {
		a.Sex = r.Sex
	}
	a.BirthDate = r.BirthDate
	a.WeightKg = r.WeightKg
	a.Deceased = r.Deceased
	a.Version = r.Version
	return nil
}

// --- Response DTOs ---

// AnimalResponse is the response body for an animal.
type AnimalResponse struct {
	ID           string     `json:"id"`
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	TutorID      string     `json:"tutorId"`
	Species      string     `json:"species"`
	Breed        *string    `json:"breed,omitempty"`
	Sex          animal.Sex `json:"sex"`
	BirthDate    *time.Time `json:"birthDate,omitempty"`
	WeightKg     *float64   `json:"weightKg,omitempty"`
	Deceased     bool       `json:"deceased"`
	DeletionMark bool       `json:"deletionMark"`
	Version      int        `json:"version"`
}

// FromAnimal creates response DTO from domain entity.
func FromAnimal(a *animal.Animal) *AnimalResponse {
	return &AnimalResponse{
		ID:           a.ID.String(),
		Code:         a.Code,
		Name:         a.Name,
		TutorID:      a.TutorID.String(),
		Species:      a.Species,
		Breed:        a.Breed,
		Sex:          a.Sex,
		BirthDate:    a.BirthDate,
		WeightKg:     a.WeightKg,
		Deceased:     a.Deceased,
		DeletionMark: a.DeletionMark,
		Version:      a.Version,
	}
}
