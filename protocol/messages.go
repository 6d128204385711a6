package protocol

import "encoding/json"

// MessageType enumerates all gateway message types.
type MessageType string

const (
	// Client -> gateway
	MsgStartTurn MessageType = "start_turn"
	MsgReset     MessageType = "reset"

	// Gateway -> client
	MsgReady      MessageType = "ready"
	MsgTranscript MessageType = "transcript"
	MsgReply      MessageType = "reply"
	MsgAudio      MessageType = "audio"
	MsgTurnError  MessageType = "turn_error"
)

// Envelope is the outer JSON wrapper for all text frames on the session
// socket. Audio itself travels as binary frames; MsgAudio announces the
// binary frame that follows it.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ReadyPayload is sent once after the session socket is established.
type ReadyPayload struct {
	SessionID string `json:"session_id"`
}

// StartTurnPayload announces an incoming turn; the next binary frame from
// the client is that turn's recorded audio.
type StartTurnPayload struct {
	TurnID string `json:"turn_id"`
}

// TranscriptPayload carries what the user was heard to say.
type TranscriptPayload struct {
	TurnID string `json:"turn_id"`
	Text   string `json:"text"`
}

// ReplyPayload carries the assistant's text reply. Text delivery is never
// blocked by audio: a reply is sent even when synthesis failed.
type ReplyPayload struct {
	TurnID string `json:"turn_id"`
	Text   string `json:"text"`
}

// AudioPayload describes the binary audio frame that follows it.
type AudioPayload struct {
	TurnID     string `json:"turn_id"`
	ItemID     string `json:"item_id"`
	Encoding   string `json:"encoding"` // "mp3", "wav" or "ulaw8000"
	SampleRate int    `json:"sample_rate,omitempty"`
	Size       int    `json:"size"`
}

// TurnErrorPayload reports a degraded or failed turn.
type TurnErrorPayload struct {
	TurnID string `json:"turn_id"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}
