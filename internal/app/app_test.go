package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppConfigValidate(t *testing.T) {
	valid := AppConfig{
		Secret:       "secret",
		DefaultTimer: 300,
		HardRoomTTL:  24,
		SoftRoomTTL:  6,
	}
	assert.NoError(t, valid.Validate())

	noSecret := valid
	noSecret.Secret = ""
	assert.Error(t, noSecret.Validate())

	zeroTimer := valid
	zeroTimer.DefaultTimer = 0
	assert.Error(t, zeroTimer.Validate())

	invertedTTL := valid
	invertedTTL.SoftRoomTTL = 48
	assert.Error(t, invertedTTL.Validate())
}
