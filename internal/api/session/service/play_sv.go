package sessionService

import (
	"context"

	"voicechess/internal/api/session"
	"voicechess/pkg/chessrules"
	contextPkg "voicechess/pkg/context"
	"voicechess/pkg/log"
	"voicechess/pkg/speech"
)

// SubmitTranscript goes through the bridge when the session is listening
// so recognition restarts are counted; otherwise straight to the session.
func (s *sessionService) SubmitTranscript(ctx context.Context, gameID string, req session.TranscriptRequest) error {
	sess, entry, err := s.lookup(gameID)
	if err != nil {
		return err
	}

	final := true
	if req.Final != nil {
		final = *req.Final
	}
	t := speech.NewTranscript(req.Text, final)

	logEntry := log.WithContext(s.log, contextPkg.WithSessionID(ctx, gameID)).WithField("final", final)
	if entry.bridge.Deliver(t) {
		logEntry.Debug("Transcript delivered to the listening recognizer")
		return nil
	}
	logEntry.Debug("Transcript submitted to the session")
	return sess.SubmitTranscript(t)
}

func (s *sessionService) Move(ctx context.Context, gameID string, req session.MoveRequest) (*session.MoveResponse, error) {
	sess, _, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}

	rec, err := sess.Move(ctx, req.From, req.To, chessrules.PromotionFromLetter(req.Promotion))
	if err != nil {
		log.WithContext(s.log, contextPkg.WithSessionID(ctx, gameID)).WithFields(log.Fields{
			"from":  req.From,
			"to":    req.To,
			"error": err.Error(),
		}).Info("Move rejected")
		return nil, err
	}
	return &session.MoveResponse{Move: rec, State: sess.Snapshot()}, nil
}

func (s *sessionService) Undo(ctx context.Context, gameID string) (*session.UndoResponse, error) {
	sess, _, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}

	n, err := sess.Undo(ctx)
	if err != nil {
		return nil, err
	}
	return &session.UndoResponse{Plies: n, State: sess.Snapshot()}, nil
}

func (s *sessionService) History(ctx context.Context, gameID string) (*session.HistoryResponse, error) {
	sess, _, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}
	return &session.HistoryResponse{Entries: sess.VoiceHistory()}, nil
}
