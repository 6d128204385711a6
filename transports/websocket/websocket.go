package websocket

import (
	"fmt"
	"net/http"
	"sync"

	"wondervoice/core"
	"wondervoice/protocol"
	"wondervoice/session"
	"wondervoice/utils/audio"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Gateway serves conversation sessions over a WebSocket. One connection is
// one session: the session (and its playback queue) is created on upgrade
// and torn down when the connection drops.
//
// Wire format: text frames carry protocol envelopes; audio crosses as
// binary frames. The client announces a turn with start_turn, then sends
// the recorded audio as the next binary frame. The gateway answers with
// transcript and reply envelopes and, when synthesis produced audio, an
// audio envelope followed by the binary payload.
type Gateway struct {
	config     Config
	newSession SessionFactory
	logger     *core.Logger
	upgrader   websocket.Upgrader
}

// SessionFactory builds a fresh session for an accepted connection.
type SessionFactory func() (*session.Session, error)

// Config holds gateway-level audio output settings.
type Config struct {
	// OutputEncoding selects the audio encoding delivered to clients:
	// "mp3" (passthrough), "wav" (PCM synth wrapped in a RIFF container)
	// or "ulaw8000" (PCM synth resampled to 8 kHz and μ-law encoded).
	OutputEncoding string `json:"output_encoding"`
	// SynthSampleRate is the sample rate of PCM payloads produced by the
	// synthesis service. Ignored for mp3 passthrough.
	SynthSampleRate int `json:"synth_sample_rate"`
}

// DefaultConfig returns a gateway config that passes synthesized mp3
// through untouched.
func DefaultConfig() Config {
	return Config{
		OutputEncoding:  "mp3",
		SynthSampleRate: 24000,
	}
}

// NewGateway creates a gateway that builds a session per connection.
func NewGateway(config Config, factory SessionFactory, logger *core.Logger) *Gateway {
	if config.OutputEncoding == "" {
		config.OutputEncoding = "mp3"
	}
	if config.SynthSampleRate == 0 {
		config.SynthSampleRate = 24000
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &Gateway{
		config:     config,
		newSession: factory,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1 << 16,
			WriteBufferSize: 1 << 16,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	sess, err := g.newSession()
	if err != nil {
		g.logger.Error("session construction failed", "error", err)
		conn.Close()
		return
	}

	c := &sessionConn{
		gateway: g,
		conn:    conn,
		sess:    sess,
		logger:  g.logger.With(map[string]interface{}{"session": sess.ID().String()}),
	}
	defer c.close()

	if err := c.writeEnvelope(protocol.MsgReady, protocol.ReadyPayload{SessionID: sess.ID().String()}); err != nil {
		return
	}
	c.readLoop(r)
}

// sessionConn binds one WebSocket connection to one session.
type sessionConn struct {
	gateway *Gateway
	conn    *websocket.Conn
	sess    *session.Session
	logger  *core.Logger

	writeMu sync.Mutex // protects writes

	// pendingTurn is the announced turn waiting for its binary audio frame.
	pendingTurn uuid.UUID
	hasPending  bool
}

func (c *sessionConn) close() {
	if err := c.sess.Close(); err != nil {
		c.logger.Warn("session teardown error", "error", err)
	}
	c.conn.Close()
	c.logger.Info("session closed")
}

func (c *sessionConn) readLoop(r *http.Request) {
	for {
		messageType, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("connection dropped", "error", err)
			}
			return
		}

		switch messageType {
		case websocket.TextMessage:
			if err := c.handleEnvelope(msg); err != nil {
				c.logger.Warn("bad client envelope", "error", err)
			}
		case websocket.BinaryMessage:
			if !c.hasPending {
				c.logger.Warn("binary frame without start_turn, dropped", "bytes", len(msg))
				continue
			}
			turnID := c.pendingTurn
			c.hasPending = false
			c.runTurn(r, turnID, msg)
		}
	}
}

func (c *sessionConn) handleEnvelope(msg []byte) error {
	msgType, raw, err := protocol.Unmarshal(msg)
	if err != nil {
		return err
	}

	switch msgType {
	case protocol.MsgStartTurn:
		payload, err := protocol.UnmarshalPayload[protocol.StartTurnPayload](raw)
		if err != nil {
			return err
		}
		turnID, err := uuid.Parse(payload.TurnID)
		if err != nil {
			return fmt.Errorf("invalid turn id %q: %w", payload.TurnID, err)
		}
		c.pendingTurn = turnID
		c.hasPending = true
		return nil
	case protocol.MsgReset:
		return c.sess.Reset()
	default:
		return fmt.Errorf("unexpected message type %q", msgType)
	}
}

// runTurn drives one turn and streams the outcome back to the client.
func (c *sessionConn) runTurn(r *http.Request, turnID uuid.UUID, audioIn []byte) {
	result, err := c.sess.RunTurn(r.Context(), turnID, audioIn)
	if err != nil {
		c.logger.Warn("turn abandoned", "turn", turnID.String(), "error", err)
		return
	}

	if result.State == session.StateIdle {
		// Nothing recognizable was said; the client just re-arms.
		return
	}

	if result.Transcript != "" {
		c.writeEnvelope(protocol.MsgTranscript, protocol.TranscriptPayload{
			TurnID: turnID.String(),
			Text:   result.Transcript,
		})
	}

	if result.Failure != nil {
		c.writeEnvelope(protocol.MsgTurnError, protocol.TurnErrorPayload{
			TurnID: turnID.String(),
			Kind:   string(result.Failure.Kind),
			Detail: result.Failure.Error(),
		})
	}

	if !result.Committed() {
		return
	}

	// Text delivery never waits on audio.
	c.writeEnvelope(protocol.MsgReply, protocol.ReplyPayload{
		TurnID: turnID.String(),
		Text:   result.ReplyText,
	})

	for {
		item, ok := c.sess.Playback().DequeueNext()
		if !ok {
			break
		}
		c.sendAudio(turnID, item)
	}
}

// sendAudio converts a playback item to the configured client encoding and
// ships it as an audio envelope plus a binary frame.
func (c *sessionConn) sendAudio(turnID uuid.UUID, item session.PlaybackItem) {
	payload := item.Audio
	encoding := c.gateway.config.OutputEncoding
	sampleRate := c.gateway.config.SynthSampleRate

	switch encoding {
	case "wav":
		payload = audio.WrapPCMInWAV(payload, sampleRate, 1)
	case "ulaw8000":
		pcm8k, err := audio.ResamplePCM16(payload, sampleRate, 8000)
		if err != nil {
			c.logger.Warn("telephony downsample failed, sending raw", "error", err)
		} else {
			payload = audio.PCMToULaw(pcm8k)
			sampleRate = 8000
		}
	}

	header := protocol.AudioPayload{
		TurnID:     turnID.String(),
		ItemID:     item.ID.String(),
		Encoding:   encoding,
		SampleRate: sampleRate,
		Size:       len(payload),
	}
	if err := c.writeEnvelope(protocol.MsgAudio, header); err != nil {
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		c.logger.Warn("audio frame write failed", "error", err)
	}
}

func (c *sessionConn) writeEnvelope(msgType protocol.MessageType, payload interface{}) error {
	data, err := protocol.Marshal(msgType, payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.logger.Warn("envelope write failed", "type", string(msgType), "error", err)
		return err
	}
	return nil
}
