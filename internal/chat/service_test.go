package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironcoachapp/ironcoach/internal/auth"
	"github.com/ironcoachapp/ironcoach/internal/guard"
	"github.com/ironcoachapp/ironcoach/internal/storage"
)

type fakeStore struct {
	appended    []storage.Turn
	appendErrAt int // fail the Nth append (1-based); 0 disables
	profile     storage.Profile
	profileErr  error
	history     []storage.Turn // returned newest-first, like storage.Store
	historyErr  error
}

func (f *fakeStore) AppendTurn(t storage.Turn) error {
	if f.appendErrAt > 0 && len(f.appended)+1 == f.appendErrAt {
		return errors.New("disk full")
	}
	f.appended = append(f.appended, t)
	return nil
}

func (f *fakeStore) RecentTurns(userID string, limit int) ([]storage.Turn, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

func (f *fakeStore) GetProfile(userID string) (storage.Profile, error) {
	if f.profileErr != nil {
		return storage.Profile{}, f.profileErr
	}
	return f.profile, nil
}

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, promptText string) (string, error) {
	f.prompts = append(f.prompts, promptText)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestService(store *fakeStore, gen *fakeGenerator) *Service {
	s := NewService(store, gen, 10)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Millisecond)
	}
	return s
}

var caller = auth.Identity{UserID: "u-1", Email: "u@example.com"}

func TestRespondSuccess(t *testing.T) {
	store := &fakeStore{
		profile: storage.Profile{UserID: "u-1", Tone: storage.ToneTough, Intensity: 70, Goal: "lose 10kg"},
		history: []storage.Turn{
			{Sender: storage.SenderAI, Message: "Do not fail this time."},
			{Sender: storage.SenderUser, Message: "I'll go tomorrow"},
		},
	}
	gen := &fakeGenerator{reply: "Unacceptable. Train now."}
	svc := newTestService(store, gen)

	reply, err := svc.Respond(context.Background(), caller, "I'm too tired to work out")
	require.NoError(t, err)
	assert.Equal(t, "Unacceptable. Train now.", reply)

	// Exactly two appends: user turn first, then the AI turn.
	require.Len(t, store.appended, 2)
	assert.Equal(t, storage.SenderUser, store.appended[0].Sender)
	assert.Equal(t, "I'm too tired to work out", store.appended[0].Message)
	assert.Equal(t, storage.SenderAI, store.appended[1].Sender)
	assert.Equal(t, "Unacceptable. Train now.", store.appended[1].Message)
	assert.True(t, store.appended[1].CreatedAt.After(store.appended[0].CreatedAt))

	// Prompt carries the goal, the persona instructions, and the message.
	require.Len(t, gen.prompts, 1)
	p := gen.prompts[0]
	assert.Contains(t, p, "User's Goal: lose 10kg")
	assert.Contains(t, p, "[Tough Coach]")
	assert.Contains(t, p, "User: I'm too tired to work out")
}

func TestRespondHistoryChronological(t *testing.T) {
	store := &fakeStore{
		// Newest-first, as the storage query returns it.
		history: []storage.Turn{
			{Sender: storage.SenderUser, Message: "newest"},
			{Sender: storage.SenderAI, Message: "middle"},
			{Sender: storage.SenderUser, Message: "oldest"},
		},
	}
	gen := &fakeGenerator{reply: "ok"}
	svc := newTestService(store, gen)

	_, err := svc.Respond(context.Background(), caller, "next")
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	p := gen.prompts[0]
	oldest := strings.Index(p, "User: oldest")
	middle := strings.Index(p, "AI: middle")
	newest := strings.Index(p, "User: newest")
	require.NotEqual(t, -1, oldest)
	assert.Less(t, oldest, middle)
	assert.Less(t, middle, newest)
}

func TestRespondSafetyOverride(t *testing.T) {
	store := &fakeStore{
		// Persona settings must not influence the override.
		profile: storage.Profile{UserID: "u-1", Tone: storage.ToneBro, Intensity: 100, Goal: "ship the project"},
	}
	gen := &fakeGenerator{reply: "should never be used"}
	svc := newTestService(store, gen)

	reply, err := svc.Respond(context.Background(), caller, "I want to end it all")
	require.NoError(t, err)
	assert.Equal(t, guard.SafetyMessage, reply)

	// No generation call, but both turns persisted through the success path.
	assert.Empty(t, gen.prompts)
	require.Len(t, store.appended, 2)
	assert.Equal(t, storage.SenderUser, store.appended[0].Sender)
	assert.Equal(t, guard.SafetyMessage, store.appended[1].Message)
}

func TestRespondUnauthenticatedNoSideEffects(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGenerator{}
	svc := newTestService(store, gen)

	_, err := svc.Respond(context.Background(), auth.Identity{}, "hello")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	assert.Empty(t, store.appended)
	assert.Empty(t, gen.prompts)
}

func TestRespondEmptyMessage(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeGenerator{})

	_, err := svc.Respond(context.Background(), caller, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, store.appended)
}

func TestRespondGenerationFailureKeepsUserTurn(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGenerator{err: errors.New("upstream 503")}
	svc := newTestService(store, gen)

	_, err := svc.Respond(context.Background(), caller, "I skipped the gym")
	assert.ErrorIs(t, err, ErrGeneration)

	// The inbound turn is durable; no AI turn was written.
	require.Len(t, store.appended, 1)
	assert.Equal(t, storage.SenderUser, store.appended[0].Sender)
}

func TestRespondMissingProfileUsesDefaultGoal(t *testing.T) {
	store := &fakeStore{profileErr: storage.ErrNotFound}
	gen := &fakeGenerator{reply: "ok"}
	svc := newTestService(store, gen)

	_, err := svc.Respond(context.Background(), caller, "hello")
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "User's Goal: No goals set.")
}

func TestRespondProfileStoreFailure(t *testing.T) {
	store := &fakeStore{profileErr: errors.New("connection reset")}
	svc := newTestService(store, &fakeGenerator{reply: "ok"})

	_, err := svc.Respond(context.Background(), caller, "hello")
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestRespondAIAppendFailureSurfaced(t *testing.T) {
	store := &fakeStore{appendErrAt: 2}
	gen := &fakeGenerator{reply: "reply"}
	svc := newTestService(store, gen)

	_, err := svc.Respond(context.Background(), caller, "hello")
	assert.ErrorIs(t, err, ErrPersistence)
	require.Len(t, store.appended, 1)
}
