package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `validate:"valid_name"`
	Phone string `validate:"valid_phone"`
	Bio   string `validate:"no_emoji"`
	Email string `validate:"omitempty,email"`
}

func TestValidators(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(sample{}), "empty values are allowed")
	assert.NoError(t, v.Struct(sample{Name: "Mina O'Neil", Phone: "+82 10-1234-5678", Bio: "Diver"}))

	cases := map[string]sample{
		"valid_name":  {Name: "Mina <script>"},
		"valid_phone": {Phone: "12ab"},
		"no_emoji":    {Bio: "Diver 🐠"},
		"email":       {Email: "not-an-email"},
	}
	for tag, s := range cases {
		err := v.Struct(s)
		require.Error(t, err, tag)
		msgs := FormatValidationErrors(err)
		require.Len(t, msgs, 1, tag)
	}
}

func TestFormatValidationErrors_Labels(t *testing.T) {
	type req struct {
		BusinessName string `validate:"required"`
		SomeField    string `validate:"required"`
	}
	msgs := FormatValidationErrors(New().Struct(req{}))
	assert.Equal(t, []string{"Business name is required", "Some Field is required"}, msgs)
}
