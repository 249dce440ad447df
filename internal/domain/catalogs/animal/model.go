// Package animal provides the Animal catalog.
package animal

import (
	"context"
	"time"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/entity"
	"vetdesk/internal/core/id"
)

// Sex of the animal.
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Animal represents a patient.
type Animal struct {
	entity.Catalog

	// TutorID references the responsible owner
	TutorID id.ID `db:"tutor_id" json:"tutorId"`

	// Species (dog, cat, ...)
	Species string `db:"species" json:"species"`

	// Breed is optional
	Breed *string `db:"breed" json:"breed,omitempty"`

	// Sex of the animal
	Sex Sex `db:"sex" json:"sex"`

	// BirthDate is optional (estimated for rescues)
	BirthDate *time.Time `db:"birth_date" json:"birthDate,omitempty"`

	// WeightKg is the last recorded weight
	WeightKg *float64 `db:"weight_kg" json:"weightKg,omitempty"`

	// Deceased marks animals no longer schedulable
	Deceased bool `db:"deceased" json:"deceased"`
}

// NewAnimal creates a new Animal with required fields.
func NewAnimal(code, name string, tutorID id.ID, species string) *Animal {
	return &Animal{
		Catalog: entity.NewCatalog(code, name),
		TutorID: tutorID,
		Species: species,
		Sex:     SexUnknown,
	}
}

// Validate implements entity.Validatable interface.
func (a *Animal) Validate(ctx context.Context) error {
	if err := a.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(a.TutorID) {
		return apperror.NewValidation("tutor is required").
			WithDetail("field", "tutorId")
	}

	if a.Species == "" {
		return apperror.NewValidation("species is required").
			WithDetail("field", "species")
	}

	switch a.Sex {
	case SexMale, SexFemale, SexUnknown:
	default:
		return apperror.NewValidation("invalid sex").
			WithDetail("field", "sex").
			WithDetail("value", string(a.Sex))
	}

	if a.WeightKg != nil && *a.WeightKg < 0 {
		return apperror.NewValidation("weight cannot be negative").
			WithDetail("field", "weightKg")
	}

	return nil
}
