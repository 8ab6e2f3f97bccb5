// Package validator wraps go-playground/validator with the custom rules
// the crosswalk engine needs (coverage percentages, risk weights).
package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator validates request structures against their binding tags
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with the engine's custom rules registered
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// coverage: integer percentage in [0,100]
	_ = v.RegisterValidation("coverage", func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n >= 0 && n <= 100
	})

	// riskweight: integer in [1,10]
	_ = v.RegisterValidation("riskweight", func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n >= 1 && n <= 10
	})

	return &Validator{validate: v}
}

// Struct validates a structure and returns a single readable error
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed rule '%s'", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}

// Var validates a single variable against a rule expression
func (v *Validator) Var(field interface{}, tag string) error {
	return v.validate.Var(field, tag)
}
