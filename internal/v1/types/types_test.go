package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePlayerName_Valid(t *testing.T) {
	assert.NoError(t, ValidatePlayerName("Alice"))
	assert.NoError(t, ValidatePlayerName("Bob 2"))
	assert.NoError(t, ValidatePlayerName("A"))
}

func TestValidatePlayerName_TooShort(t *testing.T) {
	assert.Error(t, ValidatePlayerName(""))
}

func TestValidatePlayerName_TooLong(t *testing.T) {
	name := make([]byte, 21)
	for i := range name {
		name[i] = 'a'
	}
	assert.Error(t, ValidatePlayerName(PlayerName(name)))
}

func TestValidatePlayerName_ControlCharsAndAngleBrackets(t *testing.T) {
	assert.Error(t, ValidatePlayerName("<script>"))
	assert.Error(t, ValidatePlayerName("bad\x00name"))
}

func TestValidateRoomID_Valid(t *testing.T) {
	assert.NoError(t, ValidateRoomID("ABC123"))
	assert.NoError(t, ValidateRoomID("000000"))
}

func TestValidateRoomID_Invalid(t *testing.T) {
	assert.Error(t, ValidateRoomID("abc123")) // lowercase not allowed
	assert.Error(t, ValidateRoomID("ABC12"))  // too short
	assert.Error(t, ValidateRoomID("ABC1234")) // too long
	assert.Error(t, ValidateRoomID("ABC-12"))
}

func TestSeatIndex_Valid(t *testing.T) {
	assert.True(t, SeatIndex(0).Valid())
	assert.True(t, SeatIndex(3).Valid())
	assert.False(t, SeatIndex(4).Valid())
	assert.False(t, SeatIndex(-1).Valid())
	assert.False(t, NoSeat.Valid())
}
