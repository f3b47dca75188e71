package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotPayload struct {
	ClientID  string `validate:"required"`
	StartTime string `validate:"required"`
	Day       int    `validate:"min=0,max=6"`
}

func TestInvalidReportsFields(t *testing.T) {
	err := validator.New().Struct(slotPayload{Day: 9})
	require.Error(t, err)

	appErr := Invalid(err, "invalid slot")
	assert.Equal(t, ErrValidation.Code, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, map[string]string{
		"client_id":  "required",
		"start_time": "required",
		"day":        "max",
	}, appErr.Fields)
}

func TestInvalidWithoutValidatorErrors(t *testing.T) {
	appErr := Invalid(fmt.Errorf("bad time"), "invalid start_time")
	assert.Nil(t, appErr.Fields)
	assert.Equal(t, "invalid start_time: bad time", appErr.Error())
}

func TestFromErrorAndIs(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", NotFound("client"))
	assert.True(t, Is(wrapped, ErrNotFound))
	assert.False(t, Is(wrapped, ErrConflict))
	assert.Equal(t, "client not found", FromError(wrapped).Message)

	internal := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, internal.Code)
	assert.ErrorIs(t, internal, sql.ErrConnDone)
	assert.Nil(t, FromError(nil))
}

func TestCloneKeepsKindUntouched(t *testing.T) {
	clone := Clone(ErrConflict, "slot already booked")
	assert.Equal(t, "slot already booked", clone.Message)
	assert.Equal(t, "conflict", ErrConflict.Message)
	assert.Nil(t, Clone(nil, "x"))
}
