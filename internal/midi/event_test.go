package midi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeviceError_MatchesErrDevice(t *testing.T) {
	cause := errors.New("unplugged")
	err := error(&DeviceError{Device: "DJ Controller", Err: cause})

	assert.ErrorIs(t, err, ErrDevice)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "DJ Controller")
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "cc ch=0 control=7 value=64", CC(7, 64).String())
	assert.Equal(t, "other", Event{}.String())
}
