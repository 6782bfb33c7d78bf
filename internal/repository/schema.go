package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/validation"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
		return validation.IsEmail(fl.Field().String())
	})
	return v
}

// prepare normalises msg in place, defaults its creation time and checks it
// against the schema tags on model.ContactSubmission.
func prepare(msg *model.ContactSubmission, now time.Time) error {
	f := validation.Normalize(msg.Fields())
	msg.Name, msg.Email, msg.Subject, msg.Message = f.Name, f.Email, f.Subject, f.Message

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	msg.UpdatedAt = now

	if err := validate.Struct(msg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrSchema, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}
