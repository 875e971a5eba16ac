package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadForm struct {
	Title    string `validate:"required"`
	FileName string `validate:"required,min=1,max=255"`
}

type questionForm struct {
	DocumentID string `validate:"required,uuid"`
	Question   string `validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		form := uploadForm{
			Title:    "Monopoly Rules",
			FileName: "monopoly.pdf",
		}

		err := ValidateStruct(&form)
		assert.NoError(t, err)
	})

	t.Run("missing required field", func(t *testing.T) {
		form := uploadForm{
			FileName: "monopoly.pdf",
		}

		err := ValidateStruct(&form)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		assert.Contains(t, fields, "Title")
		assert.Equal(t, "Title is required", fields["Title"])
	})

	t.Run("invalid uuid", func(t *testing.T) {
		form := questionForm{
			DocumentID: "not-a-uuid",
			Question:   "How many players?",
		}

		err := ValidateStruct(&form)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		assert.Contains(t, fields, "DocumentID")
		assert.Equal(t, "DocumentID must be a valid UUID", fields["DocumentID"])
	})

	t.Run("multiple failures reported together", func(t *testing.T) {
		form := questionForm{}

		err := ValidateStruct(&form)
		require.Error(t, err)

		fields := GetValidationFields(err)
		assert.Len(t, fields, 2)
		assert.Contains(t, fields, "DocumentID")
		assert.Contains(t, fields, "Question")
	})

	t.Run("max length exceeded", func(t *testing.T) {
		long := make([]byte, 300)
		for i := range long {
			long[i] = 'a'
		}
		form := uploadForm{
			Title:    "Rules",
			FileName: string(long),
		}

		err := ValidateStruct(&form)
		require.Error(t, err)

		fields := GetValidationFields(err)
		assert.Equal(t, "FileName must be at most 255", fields["FileName"])
	})
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Message: "Validation failed",
		Fields:  map[string]string{"Title": "Title is required"},
	}

	assert.Equal(t, "Validation failed", err.Error())
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(&ValidationError{Message: "Validation failed"}))
	assert.False(t, IsValidationError(errors.New("some other error")))
	assert.False(t, IsValidationError(nil))
}

func TestGetValidationFields(t *testing.T) {
	t.Run("returns fields from validation error", func(t *testing.T) {
		err := &ValidationError{
			Message: "Validation failed",
			Fields:  map[string]string{"Question": "Question is required"},
		}

		fields := GetValidationFields(err)
		assert.Equal(t, "Question is required", fields["Question"])
	})

	t.Run("returns nil for other errors", func(t *testing.T) {
		assert.Nil(t, GetValidationFields(errors.New("boom")))
	})
}
