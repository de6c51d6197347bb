package sessionHandler

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"

	"voicechess/internal/api/session"
	"voicechess/internal/game"
	"voicechess/pkg/chessrules"
	"voicechess/pkg/log"
)

const (
	wsReadTimeout = 120 * time.Second
	wsCallTimeout = 10 * time.Second
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// wsWriter serializes frames with jsoniter and bounds every write. The
// bridge and the read loop both write, so writes are serialized.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) WriteJSON(v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
		return err
	}
	return w.conn.WriteMessage(websocket.TextMessage, payload)
}

func (h *SessionHandler) handleWebSocket(c *websocket.Conn) {
	gameID := c.Params("id")
	fields := log.Fields{"game_id": gameID}

	sess, bridge, err := h.sessionService.Connect(gameID)
	if err != nil {
		h.log.WithFields(fields).WithError(err).Warn("WebSocket for unknown game")
		_ = c.WriteJSON(session.ServerMessage{Type: session.MsgError, Error: err.Error()})
		return
	}

	h.log.WithFields(fields).Info("Game WebSocket client connected")
	defer h.log.WithFields(fields).Info("Game WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	writer := &wsWriter{conn: c}
	bridge.Attach(writer)
	defer bridge.Detach(writer)

	snap := sess.Snapshot()
	_ = writer.WriteJSON(session.ServerMessage{Type: session.MsgState, State: &snap})

	for {
		if err := c.SetReadDeadline(time.Now().Add(wsReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			return
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithFields(fields).Errorf("Game WebSocket error: %v", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			h.log.WithFields(fields).Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		var msg session.ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			_ = writer.WriteJSON(session.ServerMessage{Type: session.MsgError, Error: err.Error()})
			continue
		}

		if err := h.dispatch(gameID, sess, bridge, msg); err != nil {
			h.log.WithFields(fields).WithField("type", msg.Type).Debugf("Client message rejected: %v", err)
			_ = writer.WriteJSON(session.ServerMessage{Type: session.MsgError, Error: err.Error()})
		}
	}
}

func (h *SessionHandler) dispatch(gameID string, sess *game.Session, bridge *session.Bridge, msg session.ClientMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), wsCallTimeout)
	defer cancel()

	switch msg.Type {
	case session.MsgTranscript:
		return h.sessionService.SubmitTranscript(ctx, gameID, session.TranscriptRequest{
			Text:  msg.Text,
			Final: msg.Final,
		})
	case session.MsgRecognitionEnded:
		bridge.RecognitionEnded()
		return nil
	case session.MsgMove:
		_, err := sess.Move(ctx, msg.From, msg.To, chessrules.PromotionFromLetter(msg.Promotion))
		return err
	case session.MsgUndo:
		_, err := sess.Undo(ctx)
		return err
	case session.MsgFlipBoard:
		return sess.FlipBoard(ctx)
	case session.MsgToggleSound:
		return sess.ToggleSound(ctx)
	case session.MsgStartListening:
		return sess.StartListening(ctx)
	case session.MsgStopListening:
		return sess.StopListening(ctx)
	}
	return session.ErrUnknownMessage
}
