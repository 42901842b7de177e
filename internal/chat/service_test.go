package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/nmorales-dev/localchat-backend/pkg/db"
	"github.com/nmorales-dev/localchat-backend/pkg/db/models"
	"github.com/nmorales-dev/localchat-backend/pkg/enums"
	pkgerrors "github.com/nmorales-dev/localchat-backend/pkg/errors"
	"github.com/nmorales-dev/localchat-backend/pkg/ollama"
	"gorm.io/gorm"
)

type stubRuntime struct {
	reply   string
	err     error
	history []ollama.Message
	model   string
}

func (s *stubRuntime) StreamChat(ctx context.Context, model string, history []ollama.Message) (string, error) {
	s.model = model
	s.history = history
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestStore(t *testing.T) *gorm.DB {
	t.Helper()
	client, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	if err := client.DB().AutoMigrate(&models.Conversation{}, &models.Message{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return client.DB()
}

func seedConversation(t *testing.T, conn *gorm.DB) *models.Conversation {
	t.Helper()
	repo := NewRepository()
	convo, err := repo.CreateConversation(context.Background(), conn, "")
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	return convo
}

func TestSubmitTurnHappyPath(t *testing.T) {
	conn := newTestStore(t)
	convo := seedConversation(t, conn)
	runtime := &stubRuntime{reply: "**Answer** here"}
	svc := NewService(NewRepository(), runtime, nil, nil)

	result, err := svc.SubmitTurn(context.Background(), conn, convo.ID, "hello", "llama3:8b")
	if err != nil {
		t.Fatalf("submit turn: %v", err)
	}
	if result.Empty {
		t.Fatal("unexpected empty result")
	}
	if result.Reply != "<h2>Answer</h2> here" {
		t.Errorf("reply = %q", result.Reply)
	}
	if runtime.model != "llama3:8b" {
		t.Errorf("model = %s", runtime.model)
	}

	// Both halves of the turn persisted, raw assistant text unformatted.
	history, err := NewRepository().History(context.Background(), conn, convo.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Role != enums.MessageRoleUser || history[0].Content != "hello" {
		t.Errorf("first message = %+v", history[0])
	}
	if history[1].Role != enums.MessageRoleAssistant || history[1].Content != "**Answer** here" {
		t.Errorf("second message = %+v", history[1])
	}
}

func TestSubmitTurnSendsFullHistory(t *testing.T) {
	conn := newTestStore(t)
	convo := seedConversation(t, conn)
	repo := NewRepository()
	ctx := context.Background()

	if _, err := repo.AppendMessage(ctx, conn, convo.ID, enums.MessageRoleUser, "earlier question"); err != nil {
		t.Fatalf("seed message: %v", err)
	}
	if _, err := repo.AppendMessage(ctx, conn, convo.ID, enums.MessageRoleAssistant, "earlier answer"); err != nil {
		t.Fatalf("seed message: %v", err)
	}

	runtime := &stubRuntime{reply: "ok"}
	svc := NewService(repo, runtime, nil, nil)
	if _, err := svc.SubmitTurn(ctx, conn, convo.ID, "followup", "llama3:8b"); err != nil {
		t.Fatalf("submit turn: %v", err)
	}

	if len(runtime.history) != 3 {
		t.Fatalf("runtime got %d messages, want 3", len(runtime.history))
	}
	if runtime.history[0].Content != "earlier question" || runtime.history[2].Content != "followup" {
		t.Errorf("history order wrong: %+v", runtime.history)
	}
}

func TestSubmitTurnEmptyReplyNotStored(t *testing.T) {
	conn := newTestStore(t)
	convo := seedConversation(t, conn)
	svc := NewService(NewRepository(), &stubRuntime{reply: ""}, nil, nil)

	result, err := svc.SubmitTurn(context.Background(), conn, convo.ID, "hello", "llama3:8b")
	if err != nil {
		t.Fatalf("submit turn: %v", err)
	}
	if !result.Empty {
		t.Fatal("expected empty result")
	}

	history, err := NewRepository().History(context.Background(), conn, convo.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected only the user message, got %d rows", len(history))
	}
}

func TestSubmitTurnRuntimeFailureKeepsUserMessage(t *testing.T) {
	conn := newTestStore(t)
	convo := seedConversation(t, conn)
	svc := NewService(NewRepository(), &stubRuntime{err: errors.New("connection refused")}, nil, nil)

	_, err := svc.SubmitTurn(context.Background(), conn, convo.ID, "hello", "llama3:8b")
	if err == nil {
		t.Fatal("expected runtime error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Errorf("expected dependency code, got %v", err)
	}

	history, err := NewRepository().History(context.Background(), conn, convo.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("user message should persist, got %d rows", len(history))
	}
}

func TestSubmitTurnUnknownConversation(t *testing.T) {
	conn := newTestStore(t)
	svc := NewService(NewRepository(), &stubRuntime{reply: "x"}, nil, nil)

	_, err := svc.SubmitTurn(context.Background(), conn, "missing", "hello", "llama3:8b")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmitTurnValidation(t *testing.T) {
	conn := newTestStore(t)
	svc := NewService(NewRepository(), &stubRuntime{}, nil, nil)

	for _, tc := range [][3]string{
		{"", "msg", "model"},
		{"c1", "", "model"},
		{"c1", "msg", ""},
	} {
		_, err := svc.SubmitTurn(context.Background(), conn, tc[0], tc[1], tc[2])
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Errorf("inputs %v: expected validation error, got %v", tc, err)
		}
	}
}
