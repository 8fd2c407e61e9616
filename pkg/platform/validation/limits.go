package validation

import (
	"fmt"
	"unicode/utf8"

	dErrors "registro/pkg/domain-errors"
)

// MaxBodySize is the default request body limit. A registration form is five
// short strings.
const MaxBodySize = 16 * 1024

// Per-field limits, in characters.
const (
	MaxNameLength     = 200
	MaxEmailLength    = 255
	MaxPhoneLength    = 50
	MaxInterestLength = 200
)

// CheckStringLength rejects value when it holds more than max characters.
// Characters, not bytes: "Peña" is four.
func CheckStringLength(fieldName, value string, max int) error {
	if n := utf8.RuneCountInString(value); n > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}
