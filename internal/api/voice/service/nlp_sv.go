package voiceService

import (
	"context"
	"fmt"

	"voicechess/internal/api/voice"
	"voicechess/pkg/nlp"
)

func catalogByName(name string) (nlp.Catalog, error) {
	switch name {
	case "", "default":
		return nlp.DefaultCatalog, nil
	case "lobby":
		return nlp.LobbyCatalog, nil
	case "game":
		return nlp.GameCatalog, nil
	}
	return nlp.Catalog{}, voice.ErrUnknownCatalog
}

func (s *voiceService) Classify(ctx context.Context, req voice.ClassifyRequest) (*voice.ClassifyResponse, error) {
	catalog, err := catalogByName(req.Catalog)
	if err != nil {
		return nil, err
	}

	resp := &voice.ClassifyResponse{Normalized: nlp.Normalize(req.Text)}
	m, ok := catalog.Classify(req.Text)
	if !ok {
		return resp, nil
	}
	resp.Recognized = true
	resp.Match = &m
	resp.Feedback = nlp.Feedback(m.Intent)
	return resp, nil
}

func (s *voiceService) Commands(ctx context.Context, catalog string) (*voice.CommandsResponse, error) {
	c, err := catalogByName(catalog)
	if err != nil {
		return nil, err
	}
	if catalog == "" {
		catalog = "default"
	}
	return &voice.CommandsResponse{
		Catalog:  catalog,
		Commands: c.Patterns(),
		Help:     c.Help(),
	}, nil
}

// ResolveMove matches a spoken move against the legal moves of the given
// position, or the starting position when no FEN is sent.
func (s *voiceService) ResolveMove(ctx context.Context, req voice.ResolveRequest) (*voice.ResolveResponse, error) {
	pos := s.oracle.Start()
	if req.FEN != "" {
		loaded, err := s.oracle.Load(req.FEN)
		if err != nil {
			return nil, err
		}
		pos = loaded
	}

	legal := s.oracle.LegalMoves(pos)
	m, err := nlp.ResolveMove(req.Text, legal)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", req.Text, err)
	}

	resp := &voice.ResolveResponse{
		From:      m.From,
		To:        m.To,
		Promotion: m.Promotion.Letter(),
		UCI:       m.UCI(),
	}
	for _, lm := range legal {
		if lm.From == m.From && lm.To == m.To && lm.Promotion == m.Promotion {
			resp.SAN = lm.Notation
			break
		}
	}
	return resp, nil
}
