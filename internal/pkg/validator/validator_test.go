package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type dateHolder struct {
	From string `validate:"omitempty,isodate"`
	To   string `validate:"required,isodate"`
}

func TestValidate_ISODate(t *testing.T) {
	assert.NoError(t, Validate(&dateHolder{To: "2024-01-31"}))
	assert.NoError(t, Validate(&dateHolder{From: "2024-01-01T00:00:00Z", To: "2024-01-31"}))
	assert.Error(t, Validate(&dateHolder{To: "31/01/2024"}))
	assert.Error(t, Validate(&dateHolder{From: "yesterday", To: "2024-01-31"}))
	assert.Error(t, Validate(&dateHolder{}))
}
