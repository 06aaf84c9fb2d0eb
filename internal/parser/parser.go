// Package parser turns free text (typed notes, speech transcriptions, OCR
// output of payment screenshots) into a transaction draft using a remote
// language model, with a deterministic local date scan layered on top.
package parser

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-ledger/internal/dateextract"
	"github.com/dvloznov/expense-ledger/internal/domain"
)

// Provider is the swappable remote-completion capability. Implementations
// issue exactly one outbound call per invocation and return the model's raw
// textual payload. Transport and credential failures come back as the typed
// errors in this package.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// Service parses free text into transaction drafts via a Provider.
type Service struct {
	provider Provider
	log      zerolog.Logger
	now      func() time.Time
}

// NewService creates a parsing service backed by the given provider.
func NewService(provider Provider, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		log:      log,
		now:      time.Now,
	}
}

// Parse sends text to the remote model and returns a fully populated draft.
//
// The reference instant is captured before the network call so that "no date
// evidence" inputs resolve to the moment parsing began, not the moment the
// response arrived. A date found locally by dateextract overrides whatever the
// model returned; local regex evidence wins ties.
func (s *Service) Parse(ctx context.Context, text string) (*domain.Draft, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	ref := s.now()
	localDate, hasLocalDate := dateextract.Extract(text)

	system := buildSystemPrompt(ref, domain.Categories)

	raw, err := s.provider.Complete(ctx, system, text)
	if err != nil {
		return nil, err
	}

	payload, err := extractObject(raw)
	if err != nil {
		return nil, err
	}

	draft, modelDate, err := draftFromModelOutput(payload, text)
	if err != nil {
		return nil, err
	}

	switch {
	case hasLocalDate:
		draft.Date = localDate
	case !modelDate.IsZero():
		draft.Date = modelDate
	default:
		draft.Date = ref
	}

	if draft.Category != "" && !domain.ValidCategory(draft.Category) {
		s.log.Warn().
			Str("provider", s.provider.Name()).
			Str("category", draft.Category).
			Msg("Model returned a category outside the taxonomy")
	}

	s.log.Debug().
		Str("provider", s.provider.Name()).
		Float64("amount", draft.Amount).
		Str("kind", string(draft.Kind)).
		Str("category", draft.Category).
		Time("date", draft.Date).
		Msg("Parsed transaction draft")

	return draft, nil
}

// extractObject strips markdown fencing the model may have added despite
// instructions and keeps the substring from the first '{' to the last '}'.
func extractObject(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &ContentError{Reason: "empty response from model"}
	}

	if strings.HasPrefix(s, "```") {
		// Drop the fence line itself (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", &ContentError{Reason: "no JSON object in response", Raw: raw}
	}

	return s[start : end+1], nil
}
