package leads

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Submission is one inbound lead-capture form. Field names on the wire are
// Spanish; they are what validation reports back to the caller.
type Submission struct {
	Name    string `json:"nombre" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Phone   string `json:"telefono" validate:"required"`
	Company string `json:"empresa"`
	Service string `json:"servicio" validate:"required"`
	Source  string `json:"fuente" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report the wire name, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// normalized returns a copy with surrounding whitespace removed, so
// blank-after-trim values fail validation.
func (s Submission) normalized() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.TrimSpace(s.Email),
		Phone:   strings.TrimSpace(s.Phone),
		Company: strings.TrimSpace(s.Company),
		Service: strings.TrimSpace(s.Service),
		Source:  strings.TrimSpace(s.Source),
	}
}

// Validate checks the five required fields and reports every missing one.
func (s Submission) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return &ValidationError{Missing: missing}
}

// payload renders the submission as the free-form map recorded in the action
// log alongside the created opportunity.
func (s Submission) payload() map[string]any {
	p := map[string]any{
		"nombre":   s.Name,
		"email":    s.Email,
		"telefono": s.Phone,
		"servicio": s.Service,
		"fuente":   s.Source,
	}
	if s.Company != "" {
		p["empresa"] = s.Company
	}
	return p
}
