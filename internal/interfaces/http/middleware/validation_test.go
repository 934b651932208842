package middleware

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	type payment struct {
		Method string `json:"payment_method" validate:"required,paymentmethod"`
	}

	t.Run("accepts known payment methods", func(t *testing.T) {
		for _, method := range []string{"bank_transfer", "cheque", "cash", "upi", "card"} {
			err := v.Struct(payment{Method: method})
			assert.NoError(t, err, "method %q should validate", method)
		}
	})

	t.Run("rejects unknown payment method", func(t *testing.T) {
		err := v.Struct(payment{Method: "barter"})
		require.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		require.True(t, ok)
		require.Len(t, validationErrors, 1)
		assert.Equal(t, "paymentmethod", validationErrors[0].Tag())
	})

	t.Run("reports json tag names in errors", func(t *testing.T) {
		err := v.Struct(payment{})
		require.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		require.True(t, ok)
		assert.Equal(t, "payment_method", validationErrors[0].Field())
	})
}
