package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "aprovame/pkg/domain-errors"
)

type sample struct {
	Document string  `json:"document" validate:"required,document"`
	Email    string  `json:"email" validate:"required,email,max=140"`
	Name     string  `json:"name" validate:"notblank,min=2"`
	Items    []child `json:"items" validate:"dive"`
}

type priced struct {
	Value decimal.Decimal `json:"value" validate:"maxdecimals2"`
}

type child struct {
	Assignor string `json:"assignor" validate:"required,uuid4"`
}

func valid() sample {
	return sample{
		Document: "123.456.789-09",
		Email:    "ops@example.com",
		Name:     "Ana",
		Items:    []child{{Assignor: "0b7e2f43-3f6c-4c52-9a33-6c4f2f7a1f10"}},
	}
}

func TestValidate(t *testing.T) {
	t.Run("accepts a valid struct", func(t *testing.T) {
		require.NoError(t, Validate(valid()))
	})

	t.Run("rejects invalid document with json field name", func(t *testing.T) {
		s := valid()
		s.Document = "12345678900"
		err := Validate(s)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "document must be a valid CPF or CNPJ", err.Error())
	})

	t.Run("rejects blank name", func(t *testing.T) {
		s := valid()
		s.Name = "   "
		assert.EqualError(t, Validate(s), "name must not be blank")
	})

	t.Run("reports nested slice path", func(t *testing.T) {
		s := valid()
		s.Items = append(s.Items, child{Assignor: "nope"})
		assert.EqualError(t, Validate(s), "items[1].assignor must be a valid uuid")
	})

	t.Run("reports max length", func(t *testing.T) {
		s := valid()
		s.Email = "x"
		assert.EqualError(t, Validate(s), "email must be a valid email")
	})
}

func TestMaxDecimals(t *testing.T) {
	assert.NoError(t, Validate(priced{Value: decimal.RequireFromString("10.5")}))
	assert.NoError(t, Validate(priced{Value: decimal.RequireFromString("10.500")}), "trailing zeros are not precision")
	assert.EqualError(t, Validate(priced{Value: decimal.RequireFromString("0.001")}),
		"value must have at most 2 decimal places")
}

func TestErrorMessage_NonValidatorError(t *testing.T) {
	assert.Equal(t, "invalid request body", ErrorMessage(assert.AnError))
}
