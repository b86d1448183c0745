package test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/stretchr/testify/require"

	"github.com/sitewizard/sitewizard/store"
)

func createTestingSession(ctx context.Context, t *testing.T, ts *store.Store, owner string) *store.IntakeSession {
	t.Helper()
	now := time.Now().Unix()
	session, err := ts.CreateIntakeSession(ctx, &store.IntakeSession{
		ID:            uuid.NewString(),
		Token:         shortuuid.New(),
		OwnerID:       owner,
		Provider:      "openai",
		CollectedData: "{}",
		CreatedTs:     now,
		UpdatedTs:     now,
	})
	require.NoError(t, err)
	return session
}

func TestIntakeSessionStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	session := createTestingSession(ctx, t, ts, "owner-1")
	require.NotEmpty(t, session.ID)
	require.Equal(t, "{}", session.CollectedData)
	require.Equal(t, int32(0), session.Progress)
	require.False(t, session.IsComplete)

	// Find by id.
	found, err := ts.GetIntakeSession(ctx, &store.FindIntakeSession{ID: &session.ID})
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, session.Token, found.Token)

	// Find by token.
	byToken, err := ts.GetIntakeSession(ctx, &store.FindIntakeSession{Token: &session.Token})
	require.NoError(t, err)
	require.NotNil(t, byToken)
	require.Equal(t, session.ID, byToken.ID)

	// Missing session returns nil, not an error.
	missing := "missing-id"
	none, err := ts.GetIntakeSession(ctx, &store.FindIntakeSession{ID: &missing})
	require.NoError(t, err)
	require.Nil(t, none)

	// Update.
	data := `{"name":"Jordan Lee"}`
	progress := int32(15)
	updatedTs := time.Now().Unix() + 1
	updated, err := ts.UpdateIntakeSession(ctx, &store.UpdateIntakeSession{
		ID:            session.ID,
		CollectedData: &data,
		Progress:      &progress,
		UpdatedTs:     &updatedTs,
	})
	require.NoError(t, err)
	require.Equal(t, data, updated.CollectedData)
	require.Equal(t, progress, updated.Progress)
	require.False(t, updated.IsComplete)

	// List by owner.
	createTestingSession(ctx, t, ts, "owner-2")
	owner := "owner-1"
	list, err := ts.ListIntakeSessions(ctx, &store.FindIntakeSession{OwnerID: &owner})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, session.ID, list[0].ID)

	// Delete.
	err = ts.DeleteIntakeSession(ctx, &store.DeleteIntakeSession{ID: session.ID})
	require.NoError(t, err)
	gone, err := ts.GetIntakeSession(ctx, &store.FindIntakeSession{ID: &session.ID})
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestIntakeMessageStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	session := createTestingSession(ctx, t, ts, "owner-1")
	now := time.Now().Unix()

	first, err := ts.CreateIntakeMessage(ctx, &store.IntakeMessage{
		UID:       shortuuid.New(),
		SessionID: session.ID,
		Role:      store.IntakeMessageRoleAssistant,
		Content:   "Welcome!",
		CreatedTs: now,
	})
	require.NoError(t, err)
	require.Greater(t, first.ID, int32(0))

	second, err := ts.CreateIntakeMessage(ctx, &store.IntakeMessage{
		UID:       shortuuid.New(),
		SessionID: session.ID,
		Role:      store.IntakeMessageRoleUser,
		Content:   "Hello",
		CreatedTs: now,
	})
	require.NoError(t, err)
	require.Greater(t, second.ID, first.ID)

	messages, err := ts.ListIntakeMessages(ctx, &store.FindIntakeMessage{SessionID: &session.ID})
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "Welcome!", messages[0].Content)
	require.Equal(t, store.IntakeMessageRoleUser, messages[1].Role)

	// Deleting the session cascades to its messages.
	err = ts.DeleteIntakeSession(ctx, &store.DeleteIntakeSession{ID: session.ID})
	require.NoError(t, err)
	messages, err = ts.ListIntakeMessages(ctx, &store.FindIntakeMessage{SessionID: &session.ID})
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestCommitIntakeTurn(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	session := createTestingSession(ctx, t, ts, "owner-1")
	now := time.Now().Unix()

	data := `{"name":"Jordan Lee"}`
	progress := int32(15)
	complete := false
	updated, err := ts.CommitIntakeTurn(ctx, &store.IntakeTurn{
		SessionID: session.ID,
		UserMessage: &store.IntakeMessage{
			UID:       shortuuid.New(),
			SessionID: session.ID,
			Role:      store.IntakeMessageRoleUser,
			Content:   "I'm Jordan Lee",
			CreatedTs: now,
		},
		AssistantMessage: &store.IntakeMessage{
			UID:       shortuuid.New(),
			SessionID: session.ID,
			Role:      store.IntakeMessageRoleAssistant,
			Content:   "Nice to meet you!",
			CreatedTs: now,
		},
		Update: &store.UpdateIntakeSession{
			ID:            session.ID,
			CollectedData: &data,
			Progress:      &progress,
			IsComplete:    &complete,
			UpdatedTs:     &now,
		},
	})
	require.NoError(t, err)
	require.Equal(t, data, updated.CollectedData)
	require.Equal(t, progress, updated.Progress)

	messages, err := ts.ListIntakeMessages(ctx, &store.FindIntakeMessage{SessionID: &session.ID})
	require.NoError(t, err)
	require.Len(t, messages, 2)
}

func TestCommitIntakeTurnRollsBackOnMissingSession(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	session := createTestingSession(ctx, t, ts, "owner-1")
	now := time.Now().Unix()

	data := "{}"
	progress := int32(0)
	complete := false
	_, err := ts.CommitIntakeTurn(ctx, &store.IntakeTurn{
		SessionID: "no-such-session",
		UserMessage: &store.IntakeMessage{
			UID:       shortuuid.New(),
			SessionID: "no-such-session",
			Role:      store.IntakeMessageRoleUser,
			Content:   "hello",
			CreatedTs: now,
		},
		AssistantMessage: &store.IntakeMessage{
			UID:       shortuuid.New(),
			SessionID: "no-such-session",
			Role:      store.IntakeMessageRoleAssistant,
			Content:   "hi",
			CreatedTs: now,
		},
		Update: &store.UpdateIntakeSession{
			ID:            "no-such-session",
			CollectedData: &data,
			Progress:      &progress,
			IsComplete:    &complete,
			UpdatedTs:     &now,
		},
	})
	require.Error(t, err)

	// Nothing leaked into the existing session or the message table.
	messages, err := ts.ListIntakeMessages(ctx, &store.FindIntakeMessage{SessionID: &session.ID})
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestDeleteIntakeSessionsBefore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	stale := createTestingSession(ctx, t, ts, "owner-1")
	oldTs := time.Now().Add(-48 * time.Hour).Unix()
	data := "{}"
	_, err := ts.UpdateIntakeSession(ctx, &store.UpdateIntakeSession{
		ID:            stale.ID,
		CollectedData: &data,
		UpdatedTs:     &oldTs,
	})
	require.NoError(t, err)

	fresh := createTestingSession(ctx, t, ts, "owner-1")

	n, err := ts.DeleteIntakeSessionsBefore(ctx, time.Now().Add(-24*time.Hour).Unix())
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	gone, err := ts.GetIntakeSession(ctx, &store.FindIntakeSession{ID: &stale.ID})
	require.NoError(t, err)
	require.Nil(t, gone)

	kept, err := ts.GetIntakeSession(ctx, &store.FindIntakeSession{ID: &fresh.ID})
	require.NoError(t, err)
	require.NotNil(t, kept)
}
