package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_EncodeDecode(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(MsgBindSeat, BindSeatPayload{RoomID: "room-1", Seat: "A"})
	require.NoError(t, err)

	data, err := msg.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, MsgBindSeat, decoded.Type)

	payload, err := ParsePayload[BindSeatPayload](decoded)
	require.NoError(t, err)
	assert.Equal(t, "room-1", payload.RoomID)
	assert.Equal(t, "A", payload.Seat)
}

func TestNewMessage_NilPayload(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(MsgPong, nil)
	require.NoError(t, err)
	assert.Equal(t, MsgPong, msg.Type)
	assert.Nil(t, msg.Payload)
}

func TestDecode_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte("{not json"))
	assert.Error(t, err)
}

func TestParsePayload_Mismatch(t *testing.T) {
	t.Parallel()

	msg := MustNewMessage(MsgBindSeat, BindSeatPayload{RoomID: "room-1"})
	msg.Payload = []byte(`"just a string"`)

	_, err := ParsePayload[BindSeatPayload](msg)
	assert.Error(t, err)
}

func TestNewErrorMessage_KnownCode(t *testing.T) {
	t.Parallel()

	msg := NewErrorMessage(ErrCodeSeatOccupied)
	assert.Equal(t, MsgError, msg.Type)

	payload, err := ParsePayload[ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, ErrCodeSeatOccupied, payload.Code)
	assert.Equal(t, ErrorMessages[ErrCodeSeatOccupied], payload.Message)
	assert.NotEmpty(t, payload.Message)
}

func TestNewErrorMessageWithText(t *testing.T) {
	t.Parallel()

	msg := NewErrorMessageWithText(ErrCodeInvalidMsg, "自定义说明")
	payload, err := ParsePayload[ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "自定义说明", payload.Message)
}
