package models

import (
	"encoding/json"
	"strings"

	"registro/pkg/platform/validation"
)

// RegisterRequest is the POST /registro body.
type RegisterRequest struct {
	Names    string `json:"names" validate:"required,notblank"`
	Surname  string `json:"surname" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,notblank"`
	Phone    string `json:"phone" validate:"required,notblank"`
	Interest string `json:"interest" validate:"required,notblank"`
}

// registerRequestWire accepts both the English field names and the Spanish
// ones posted by the original form page.
type registerRequestWire struct {
	Names    *string `json:"names"`
	Surname  *string `json:"surname"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Interest *string `json:"interest"`

	Nombres  *string `json:"nombres"`
	Apellido *string `json:"apellido"`
	Celular  *string `json:"celular"`
	Interes  *string `json:"interes"`
}

// UnmarshalJSON fills each field from its English key, falling back to the
// Spanish alias. Null and whitespace-only values are treated as absent.
func (r *RegisterRequest) UnmarshalJSON(data []byte) error {
	var wire registerRequestWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = RegisterRequest{
		Names:    firstSet(wire.Names, wire.Nombres),
		Surname:  firstSet(wire.Surname, wire.Apellido),
		Email:    firstSet(wire.Email),
		Phone:    firstSet(wire.Phone, wire.Celular),
		Interest: firstSet(wire.Interest, wire.Interes),
	}
	return nil
}

func firstSet(values ...*string) string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return *v
		}
	}
	return ""
}

// Sanitize trims surrounding whitespace, so a whitespace-only value is empty.
func (r *RegisterRequest) Sanitize() {
	for _, f := range []*string{&r.Names, &r.Surname, &r.Email, &r.Phone, &r.Interest} {
		*f = strings.TrimSpace(*f)
	}
}

// Validate requires all five fields and bounds their length.
func (r *RegisterRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"names", r.Names, validation.MaxNameLength},
		{"surname", r.Surname, validation.MaxNameLength},
		{"email", r.Email, validation.MaxEmailLength},
		{"phone", r.Phone, validation.MaxPhoneLength},
		{"interest", r.Interest, validation.MaxInterestLength},
	}
	for _, c := range checks {
		if err := validation.CheckStringLength(c.field, c.value, c.max); err != nil {
			return err
		}
	}
	return nil
}

// RegisterResponse is the 200 body of POST /registro.
type RegisterResponse struct {
	OK    bool   `json:"ok"`
	ID    string `json:"id"`
	Stats Usage  `json:"stats"`
}

// CapacityExceededResponse is the 429 body of POST /registro.
type CapacityExceededResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	CurrentCount     int    `json:"currentCount"`
	MaxRecords       int    `json:"maxRecords"`
}

// InternalErrorResponse is the 500 body; Details is only filled outside production.
type InternalErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
