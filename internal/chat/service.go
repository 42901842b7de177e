package chat

import (
	"context"
	"errors"
	"time"

	"github.com/nmorales-dev/localchat-backend/pkg/enums"
	pkgerrors "github.com/nmorales-dev/localchat-backend/pkg/errors"
	"github.com/nmorales-dev/localchat-backend/pkg/logger"
	"github.com/nmorales-dev/localchat-backend/pkg/metrics"
	"github.com/nmorales-dev/localchat-backend/pkg/ollama"
	"gorm.io/gorm"
)

// Runtime is the inference surface the turn pipeline needs.
type Runtime interface {
	StreamChat(ctx context.Context, model string, history []ollama.Message) (string, error)
}

// Service runs the conversation turn pipeline against a tenant chat store.
type Service struct {
	repo      *Repository
	runtime   Runtime
	inference *metrics.InferenceMetrics
	logg      *logger.Logger
}

func NewService(repo *Repository, runtime Runtime, inference *metrics.InferenceMetrics, logg *logger.Logger) *Service {
	return &Service{repo: repo, runtime: runtime, inference: inference, logg: logg}
}

// TurnResult is the outcome of one submitted turn.
type TurnResult struct {
	Reply string
	Empty bool
}

// SubmitTurn persists the user message, replays the full thread to the model,
// stores the assembled reply, and returns the display-formatted text. The
// user message stays persisted even when inference fails, matching the
// append-only history contract. An all-empty stream stores nothing and
// returns Empty.
func (s *Service) SubmitTurn(ctx context.Context, conn *gorm.DB, conversationID, userText, model string) (*TurnResult, error) {
	if conversationID == "" || userText == "" || model == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "conversation id, message, and model are required")
	}

	if _, err := s.repo.GetConversation(ctx, conn, conversationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "conversation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading conversation")
	}

	if _, err := s.repo.AppendMessage(ctx, conn, conversationID, enums.MessageRoleUser, userText); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing user message")
	}

	history, err := s.repo.History(ctx, conn, conversationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading history")
	}

	window := make([]ollama.Message, 0, len(history))
	for _, msg := range history {
		window = append(window, ollama.Message{Role: string(msg.Role), Content: msg.Content})
	}

	start := time.Now()
	reply, err := s.runtime.StreamChat(ctx, model, window)
	if err != nil {
		s.inference.ObserveTurn(model, "error", time.Since(start))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "model runtime failed")
	}

	if reply == "" {
		s.inference.ObserveTurn(model, "empty", time.Since(start))
		if s.logg != nil {
			s.logg.Warn(s.logg.WithConversationID(ctx, conversationID), "chat.turn.empty_reply")
		}
		return &TurnResult{Empty: true}, nil
	}

	if _, err := s.repo.AppendMessage(ctx, conn, conversationID, enums.MessageRoleAssistant, reply); err != nil {
		s.inference.ObserveTurn(model, "error", time.Since(start))
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing assistant message")
	}
	s.inference.ObserveTurn(model, "ok", time.Since(start))

	return &TurnResult{Reply: FormatReply(reply)}, nil
}
