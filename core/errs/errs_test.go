package errs

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
)

func TestUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("catalog level 1", cause)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "provider unavailable: catalog level 1: connection refused", err.Error())
}

func TestInvalid(t *testing.T) {
	err := Invalid("level %d has no selection", 2)
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Equal(t, "invalid selection: level 2 has no selection", err.Error())
}

func TestMessages(t *testing.T) {
	assert.Nil(t, Messages(nil))
	assert.Equal(t, []string{"boom"}, Messages(errors.New("boom")))

	var merr *multierror.Error
	merr = multierror.Append(merr, errors.New("a"), errors.New("b"))
	assert.Equal(t, []string{"a", "b"}, Messages(merr.ErrorOrNil()))
}
