// Package chat implements the conversational turn handler: one authenticated
// message in, one coached reply out, with both sides of the exchange
// persisted to history.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ironcoachapp/ironcoach/internal/auth"
	"github.com/ironcoachapp/ironcoach/internal/guard"
	"github.com/ironcoachapp/ironcoach/internal/prompt"
	"github.com/ironcoachapp/ironcoach/internal/storage"
)

// ErrEmptyMessage is returned when the inbound message is blank.
var ErrEmptyMessage = errors.New("message must not be empty")

// ErrGeneration marks failures of the external generation call. The user's
// inbound turn is already durable when this is returned.
var ErrGeneration = errors.New("generation failed")

// ErrPersistence marks history or profile store failures.
var ErrPersistence = errors.New("persistence failed")

// Generator produces a reply for an assembled prompt. Implemented by llm.Client.
type Generator interface {
	Generate(ctx context.Context, promptText string) (string, error)
}

// Store defines the persistence operations the Service needs.
// Implemented by storage.Store.
type Store interface {
	AppendTurn(t storage.Turn) error
	RecentTurns(userID string, limit int) ([]storage.Turn, error)
	GetProfile(userID string) (storage.Profile, error)
}

// Service orchestrates a single conversational turn. Invocations share no
// mutable state; concurrent turns for different users are independent.
type Service struct {
	store        Store
	llm          Generator
	historyLimit int
	now          func() time.Time
	newID        func() string
}

// NewService creates a Service fetching up to historyLimit recent turns for
// prompt context. If historyLimit <= 0, the default (10) is used.
func NewService(store Store, llm Generator, historyLimit int) *Service {
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &Service{
		store:        store,
		llm:          llm,
		historyLimit: historyLimit,
		now:          time.Now,
		newID:        func() string { return uuid.New().String() },
	}
}

// Respond handles one turn for the verified caller:
//
//  1. the inbound message is appended under sender "user" before anything
//     else, so history is durable even if generation fails;
//  2. messages tripping the self-harm guard receive exactly the fixed safety
//     text through the normal success path, with no generation call;
//  3. otherwise the stored goal and recent history are rendered into the
//     prompt contract, the generation service is called once (no retries),
//     and the reply is appended under sender "ai" and returned verbatim.
func (s *Service) Respond(ctx context.Context, caller auth.Identity, message string) (string, error) {
	if caller.UserID == "" {
		return "", auth.ErrUnauthenticated
	}
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	log := slog.Default().With("user_id", caller.UserID)

	userTurn := storage.Turn{
		ID:        s.newID(),
		UserID:    caller.UserID,
		Sender:    storage.SenderUser,
		Message:   message,
		CreatedAt: s.now(),
	}
	if err := s.store.AppendTurn(userTurn); err != nil {
		return "", fmt.Errorf("%w: appending user turn: %v", ErrPersistence, err)
	}

	if guard.Triggered(message) {
		log.Info("safety override triggered")
		if err := s.appendReply(caller.UserID, guard.SafetyMessage); err != nil {
			return "", err
		}
		return guard.SafetyMessage, nil
	}

	goal := ""
	profile, err := s.store.GetProfile(caller.UserID)
	switch {
	case err == nil:
		goal = profile.Goal
	case errors.Is(err, storage.ErrNotFound):
		// No onboarding yet; the prompt falls back to its placeholder goal.
	default:
		return "", fmt.Errorf("%w: loading profile: %v", ErrPersistence, err)
	}

	history, err := s.store.RecentTurns(caller.UserID, s.historyLimit)
	if err != nil {
		return "", fmt.Errorf("%w: loading history: %v", ErrPersistence, err)
	}

	promptText := prompt.Render(goal, history, message)

	reply, err := s.llm.Generate(ctx, promptText)
	if err != nil {
		log.Error("generation call failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	if err := s.appendReply(caller.UserID, reply); err != nil {
		return "", err
	}

	log.Debug("turn completed", "history_turns", len(history))
	return reply, nil
}

func (s *Service) appendReply(userID, text string) error {
	aiTurn := storage.Turn{
		ID:        s.newID(),
		UserID:    userID,
		Sender:    storage.SenderAI,
		Message:   text,
		CreatedAt: s.now(),
	}
	if err := s.store.AppendTurn(aiTurn); err != nil {
		return fmt.Errorf("%w: appending ai turn: %v", ErrPersistence, err)
	}
	return nil
}
