package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "registro/pkg/domain-errors"
)

func TestCheckStringLength(t *testing.T) {
	t.Run("exactly max passes", func(t *testing.T) {
		assert.NoError(t, CheckStringLength("email", strings.Repeat("a", MaxEmailLength), MaxEmailLength))
	})

	t.Run("empty passes", func(t *testing.T) {
		assert.NoError(t, CheckStringLength("phone", "", MaxPhoneLength))
	})

	t.Run("one over max fails", func(t *testing.T) {
		err := CheckStringLength("phone", strings.Repeat("9", MaxPhoneLength+1), MaxPhoneLength)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "phone exceeds max length of 50", err.Error())
	})

	t.Run("accented names count characters", func(t *testing.T) {
		name := strings.Repeat("ñ", MaxNameLength)
		require.Greater(t, len(name), MaxNameLength)
		assert.NoError(t, CheckStringLength("names", name, MaxNameLength))
		assert.Error(t, CheckStringLength("names", name+"ñ", MaxNameLength))
	})
}
