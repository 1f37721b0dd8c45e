package catalog

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/shelf/internal/apperr"
	"github.com/starford/shelf/internal/models"
)

var errNegativeCopies = errors.New("must be no less than 0")

// nonNegative rejects a set OptionalInt below zero.
var nonNegative = validation.By(func(value any) error {
	o, _ := value.(models.OptionalInt)
	if v, ok := o.Get(); ok && v < 0 {
		return errNegativeCopies
	}
	return nil
})

func validateCreate(in *models.BookInput) error {
	return wrapValidation(validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Copies, nonNegative),
	))
}

func validateUpdate(in *models.BookInput) error {
	return wrapValidation(validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.NilOrNotEmpty),
		validation.Field(&in.Copies, nonNegative),
	))
}

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return apperr.NewValidationError(err)
}
