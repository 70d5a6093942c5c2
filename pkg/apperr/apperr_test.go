package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedErrors(t *testing.T) {
	err := fmt.Errorf("load survey: %w", NotFound("Survey not found"))

	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, &Error{Code: CodeNotFound, Message: "Survey not found"}, e)
	assert.True(t, Is(err, CodeNotFound))
	assert.False(t, Is(err, CodeConflict))
	assert.Equal(t, "Invalid role", BadRequest("Invalid role").Error())

	_, ok = As(errors.New("connection reset"))
	assert.False(t, ok)
	assert.False(t, Is(nil, CodeNotFound))
}
