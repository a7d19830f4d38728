package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	cause := errors.New("FOREIGN KEY constraint failed")

	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"validation", Validation("name required"), ErrValidation},
		{"missing", MissingFields("name", "price"), ErrValidation},
		{"no fields", ErrNoFields, ErrValidation},
		{"not found", NotFound("material not found"), ErrNotFound},
		{"constraint", Constraint("seller does not exist", cause), ErrConstraint},
		{"unauthorized", Unauthorized("invalid token"), ErrUnauthorized},
		{"forbidden", Forbidden("not yours"), ErrForbidden},
		{"persistence", Persistence("failed", cause), ErrPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			wrapped := fmt.Errorf("handler: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.kind)
		})
	}
}

func TestConstraintKeepsCause(t *testing.T) {
	cause := errors.New("FOREIGN KEY constraint failed")
	err := Constraint("seller does not exist", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "seller does not exist: FOREIGN KEY constraint failed", err.Error())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "missing required fields: name, price", Message(MissingFields("name", "price"), "x"))
	assert.Equal(t, "no fields to update", Message(fmt.Errorf("wrap: %w", ErrNoFields), "x"))
	assert.Equal(t, "fallback", Message(errors.New("raw"), "fallback"))
}
