package middleware

import (
	"errors"
	"testing"

	"github.com/dyehouse/backend/internal/application/validation"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=ACTIVE CANCELLED"`
	PageSize int    `form:"page_size" binding:"omitempty,max=100"`
}

func TestValidationDetails(t *testing.T) {
	SetupValidator()

	t.Run("binding errors use form names", func(t *testing.T) {
		err := binding.Validator.ValidateStruct(&listQuery{Status: "OPEN", PageSize: 500})
		require.Error(t, err)

		details, ok := ValidationDetails(err)
		require.True(t, ok)
		require.Len(t, details, 2)
		assert.Equal(t, "status", details[0].Field)
		assert.Equal(t, "Must be one of: ACTIVE CANCELLED", details[0].Message)
		assert.Equal(t, "page_size", details[1].Field)
	})

	t.Run("payload errors keep row paths", func(t *testing.T) {
		verr := &validation.Error{}
		verr.Add("items[2].discount_percent", "Must be less than or equal to 100")

		details, ok := ValidationDetails(verr)
		require.True(t, ok)
		assert.Equal(t, "items[2].discount_percent", details[0].Field)
	})

	t.Run("other errors", func(t *testing.T) {
		_, ok := ValidationDetails(errors.New("boom"))
		assert.False(t, ok)
	})
}
