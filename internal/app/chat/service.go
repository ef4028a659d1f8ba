// Package chat exposes the operations the UI layer calls. Every operation
// updates the conversation log synchronously and returns immediately; the
// caller observes streaming progress through the log's message flags.
package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/prismchat/prism/internal/app/orchestrator"
	"github.com/prismchat/prism/internal/domain"
	"github.com/prismchat/prism/internal/observability"
	"github.com/prismchat/prism/internal/store"
)

type Service struct {
	log  *store.Log
	orch *orchestrator.Orchestrator
}

func NewService(log *store.Log, orch *orchestrator.Orchestrator) *Service {
	return &Service{
		log:  log,
		orch: orch,
	}
}

// SendMessage appends the user turn and its empty streaming placeholder in
// one ordered insertion, then kicks off generation. Generation runs on a
// detached context: once a stream or poll loop begins it is never cancelled
// mid-flight.
func (s *Service) SendMessage(ctx context.Context, text string, att *domain.Attachment) (*domain.Message, *domain.Message, error) {
	if text == "" && att == nil {
		return nil, nil, fmt.Errorf("message needs text or an attachment")
	}

	userMsg := domain.NewUserMessage(text, att)
	placeholder := domain.NewModelPlaceholder()
	s.log.Append(userMsg, placeholder)

	go s.orch.Generate(context.WithoutCancel(ctx), text, att, placeholder.ID)

	return userMsg, placeholder, nil
}

// Retry resets a model message in place and re-runs the original turn. The
// immediate predecessor in the log must be the paired user message; anything
// else means the log was corrupted, so the retry is refused without touching
// the store.
func (s *Service) Retry(ctx context.Context, id domain.MessageID) error {
	log := observability.LoggerFromContext(ctx).With("message_id", id)

	target, err := s.log.Get(id)
	if err != nil {
		return err
	}
	if target.Role != domain.RoleModel {
		log.Error("retry refused: target is not a model message")
		return domain.ErrInternalInconsistency
	}

	userTurn, err := s.log.PrecedingUserTurn(id)
	if err != nil {
		if errors.Is(err, domain.ErrInternalInconsistency) {
			log.Error("retry refused: no user turn precedes the target")
		}
		return err
	}

	if err := s.log.Patch(id, func(m *domain.Message) {
		m.ResetForRetry()
	}); err != nil {
		return err
	}

	go s.orch.Generate(context.WithoutCancel(ctx), userTurn.Content, userTurn.Attachment, id)

	return nil
}

// SubmitFeedback toggles the rating on a message: submitting the value it
// already has clears it.
func (s *Service) SubmitFeedback(id domain.MessageID, fb domain.Feedback) error {
	return s.log.Patch(id, func(m *domain.Message) {
		if m.Feedback == fb {
			m.Feedback = ""
			return
		}
		m.Feedback = fb
	})
}

// ClearConversation drops the whole log and the provider-side session.
func (s *Service) ClearConversation() {
	s.log.Clear()
	s.orch.ResetSession()
}

// Messages returns a snapshot of the conversation in insertion order.
func (s *Service) Messages() []*domain.Message {
	return s.log.Messages()
}
