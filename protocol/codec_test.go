package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	data, err := Marshal(MsgTranscript, TranscriptPayload{TurnID: "t-1", Text: "hello"})
	require.NoError(t, err)

	msgType, raw, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, MsgTranscript, msgType)

	payload, err := UnmarshalPayload[TranscriptPayload](raw)
	require.NoError(t, err)
	assert.Equal(t, "t-1", payload.TurnID)
	assert.Equal(t, "hello", payload.Text)
}

func TestMarshalNilPayload(t *testing.T) {
	data, err := Marshal(MsgReset, nil)
	require.NoError(t, err)

	msgType, raw, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, MsgReset, msgType)
	assert.Empty(t, raw)
}

func TestUnmarshalRejectsMissingType(t *testing.T) {
	_, _, err := Unmarshal([]byte(`{"payload": {}}`))
	assert.Error(t, err)
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, _, err := Unmarshal([]byte(`not json`))
	assert.Error(t, err)
}
