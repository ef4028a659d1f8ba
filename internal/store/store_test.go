package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prismchat/prism/internal/domain"
	"github.com/prismchat/prism/internal/store"
)

func TestAppendKeepsInsertionOrder(t *testing.T) {
	log := store.NewLog()

	user := domain.NewUserMessage("hello", nil)
	placeholder := domain.NewModelPlaceholder()
	log.Append(user, placeholder)

	msgs := log.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, user.ID, msgs[0].ID)
	require.Equal(t, placeholder.ID, msgs[1].ID)
	require.True(t, msgs[1].IsStreaming)
	require.Empty(t, msgs[1].Content)
}

func TestPatchMutatesByID(t *testing.T) {
	log := store.NewLog()
	msg := domain.NewModelPlaceholder()
	log.Append(msg)

	err := log.Patch(msg.ID, func(m *domain.Message) {
		m.Content = "partial"
	})
	require.NoError(t, err)

	got, err := log.Get(msg.ID)
	require.NoError(t, err)
	require.Equal(t, "partial", got.Content)
	require.True(t, got.IsStreaming)
}

func TestPatchUnknownID(t *testing.T) {
	log := store.NewLog()
	err := log.Patch("nope", func(m *domain.Message) {})
	require.ErrorIs(t, err, domain.ErrMessageNotFound)
}

func TestPatchCannotChangeIdentity(t *testing.T) {
	log := store.NewLog()
	msg := domain.NewModelPlaceholder()
	log.Append(msg)

	require.NoError(t, log.Patch(msg.ID, func(m *domain.Message) {
		m.ID = "hijacked"
	}))

	got, err := log.Get(msg.ID)
	require.NoError(t, err)
	require.Equal(t, msg.ID, got.ID)
}

func TestSnapshotsAreCopies(t *testing.T) {
	log := store.NewLog()
	msg := domain.NewUserMessage("original", nil)
	log.Append(msg)

	snapshot := log.Messages()
	snapshot[0].Content = "mutated by reader"

	got, err := log.Get(msg.ID)
	require.NoError(t, err)
	require.Equal(t, "original", got.Content)
}

func TestClear(t *testing.T) {
	log := store.NewLog()
	log.Append(domain.NewUserMessage("hi", nil), domain.NewModelPlaceholder())
	require.Equal(t, 2, log.Len())

	log.Clear()
	require.Equal(t, 0, log.Len())
	require.Empty(t, log.Messages())
}

func TestPrecedingUserTurn(t *testing.T) {
	log := store.NewLog()
	user := domain.NewUserMessage("tell me a story", nil)
	model := domain.NewModelPlaceholder()
	log.Append(user, model)

	got, err := log.PrecedingUserTurn(model.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, "tell me a story", got.Content)
}

func TestPrecedingUserTurnInconsistentLog(t *testing.T) {
	log := store.NewLog()

	// Model message at the head of the log: nothing precedes it.
	head := domain.NewModelPlaceholder()
	log.Append(head)
	_, err := log.PrecedingUserTurn(head.ID)
	require.ErrorIs(t, err, domain.ErrInternalInconsistency)

	// Two model messages back to back: predecessor is not user-authored.
	second := domain.NewModelPlaceholder()
	log.Append(second)
	_, err = log.PrecedingUserTurn(second.ID)
	require.ErrorIs(t, err, domain.ErrInternalInconsistency)

	_, err = log.PrecedingUserTurn("missing")
	require.ErrorIs(t, err, domain.ErrMessageNotFound)
}
