package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoveCommand(t *testing.T) {
	cmd, err := ParseCommand([]byte(`{"type":"move","from":"e2","to":"e4"}`))
	require.NoError(t, err)

	assert.Equal(t, CommandMove, cmd.Type)
	require.NotNil(t, cmd.Move)
	assert.Equal(t, "e2", cmd.Move.From)
	assert.Equal(t, "e4", cmd.Move.To)
	assert.Empty(t, cmd.Move.Promotion)
}

func TestParseMoveCommandWithPromotion(t *testing.T) {
	cmd, err := ParseCommand([]byte(`{"type":"move","from":"e7","to":"e8","promotion":"q"}`))
	require.NoError(t, err)

	assert.Equal(t, "q", cmd.Move.Promotion)
}

func TestParseMoveCommandMissingCoordinates(t *testing.T) {
	_, err := ParseCommand([]byte(`{"type":"move","from":"e2"}`))
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestParseReadyCommand(t *testing.T) {
	cmd, err := ParseCommand([]byte(`{"type":"ready"}`))
	require.NoError(t, err)

	assert.Equal(t, CommandReady, cmd.Type)
	assert.Nil(t, cmd.Move)
}

func TestParseChatCommand(t *testing.T) {
	cmd, err := ParseCommand([]byte(`{"type":"chat","message":"good luck"}`))
	require.NoError(t, err)

	assert.Equal(t, CommandChat, cmd.Type)
	require.NotNil(t, cmd.Chat)
	assert.Equal(t, "good luck", cmd.Chat.Message)
}

func TestParseSignalCommandKeepsPayloadOpaque(t *testing.T) {
	cmd, err := ParseCommand([]byte(`{"type":"signal","payload":{"peerId":"abc-123"}}`))
	require.NoError(t, err)

	assert.Equal(t, CommandSignal, cmd.Type)
	require.NotNil(t, cmd.Signal)
	assert.JSONEq(t, `{"peerId":"abc-123"}`, string(cmd.Signal.Payload))
}

func TestParseUnknownCommandType(t *testing.T) {
	_, err := ParseCommand([]byte(`{"type":"teleport"}`))
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := ParseCommand([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestParseEmptyChatRejected(t *testing.T) {
	_, err := ParseCommand([]byte(`{"type":"chat"}`))
	assert.ErrorIs(t, err, ErrMalformedFrame)
}
