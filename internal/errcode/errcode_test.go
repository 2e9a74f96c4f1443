package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(Provider, "image upload failed", cause)

	assert.EqualError(t, err, "image upload failed")
	assert.ErrorIs(t, err, Provider)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, NotFound)

	wrapped := fmt.Errorf("update resume: %w", New(NotFound, "Resume not found"))
	assert.ErrorIs(t, wrapped, NotFound)
	assert.NotErrorIs(t, wrapped, Validation)
}
