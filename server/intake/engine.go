package intake

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"

	"github.com/sitewizard/sitewizard/plugin/llm"
	intakeerrors "github.com/sitewizard/sitewizard/server/internal/errors"
	"github.com/sitewizard/sitewizard/store"
)

// fallbackReply is shown when the model's response contained nothing but the
// structured block.
const fallbackReply = "Got it. Anything else you'd like to add?"

// ProviderGateway is the engine's view of the language-model boundary.
type ProviderGateway interface {
	Complete(ctx context.Context, provider string, messages []llm.Message) (string, error)
	Has(provider string) bool
}

// Message is one transcript entry as exposed to callers.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the caller-facing session aggregate.
type Session struct {
	ID            string        `json:"id"`
	Token         string        `json:"token"`
	Provider      string        `json:"provider"`
	Messages      []Message     `json:"messages"`
	CollectedData CollectedData `json:"collectedData"`
	Progress      int32         `json:"progress"`
	IsComplete    bool          `json:"isComplete"`
	OwnerID       string        `json:"ownerId,omitempty"`
}

// Engine owns session lifecycle: creation, concurrency-safe turn processing,
// retrieval and deletion. All caller-visible errors originate here; gateway
// and extraction failures are translated, never passed through raw.
type Engine struct {
	store       *store.Store
	gateway     ProviderGateway
	schema      *Schema
	turnTimeout time.Duration

	// inflight holds a marker per session with a turn in progress. A second
	// concurrent turn fails fast with SessionLocked instead of queueing.
	inflight sync.Map
}

// Option configures the engine.
type Option func(*Engine)

// WithSchema overrides the default profile schema.
func WithSchema(schema *Schema) Option {
	return func(e *Engine) { e.schema = schema }
}

// WithTurnTimeout bounds one sendMessage call end to end, covering provider
// retries and backoff sleeps.
func WithTurnTimeout(d time.Duration) Option {
	return func(e *Engine) { e.turnTimeout = d }
}

// NewEngine creates an intake engine.
func NewEngine(st *store.Store, gateway ProviderGateway, opts ...Option) *Engine {
	e := &Engine{
		store:       st,
		gateway:     gateway,
		schema:      DefaultSchema(),
		turnTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schema returns the engine's active field schema.
func (e *Engine) Schema() *Schema {
	return e.schema
}

// Start creates a session in the given provider's care with the static
// opening message. No provider call happens here, so start always succeeds
// for a known provider.
func (e *Engine) Start(ctx context.Context, provider string, ownerID string) (*Session, error) {
	if !e.gateway.Has(provider) {
		return nil, intakeerrors.InvalidProvider(provider)
	}

	now := time.Now().Unix()
	row, err := e.store.CreateIntakeSession(ctx, &store.IntakeSession{
		ID:            uuid.NewString(),
		Token:         shortuuid.New(),
		OwnerID:       ownerID,
		Provider:      provider,
		CollectedData: "{}",
		Progress:      0,
		IsComplete:    false,
		CreatedTs:     now,
		UpdatedTs:     now,
	})
	if err != nil {
		return nil, intakeerrors.Internal("failed to create session", err)
	}

	opening, err := e.store.CreateIntakeMessage(ctx, &store.IntakeMessage{
		UID:       shortuuid.New(),
		SessionID: row.ID,
		Role:      store.IntakeMessageRoleAssistant,
		Content:   openingMessage,
		CreatedTs: now,
	})
	if err != nil {
		// A session without its opening message is invalid; drop it again.
		if derr := e.store.DeleteIntakeSession(ctx, &store.DeleteIntakeSession{ID: row.ID}); derr != nil {
			slog.Warn("failed to clean up half-created session",
				slog.String("session_id", row.ID),
				slog.String("error", derr.Error()))
		}
		return nil, intakeerrors.Internal("failed to create opening message", err)
	}

	return e.toView(row, []*store.IntakeMessage{opening}), nil
}

// SendMessage processes one user turn. The user message is staged, the
// provider is called, and only a fully successful turn commits: on any
// failure the session is left exactly as it was before the call.
func (e *Engine) SendMessage(ctx context.Context, sessionID string, text string) (*Session, error) {
	if strings.TrimSpace(text) == "" {
		return nil, intakeerrors.InvalidArgument("message must not be empty")
	}

	if !e.tryLock(sessionID) {
		return nil, intakeerrors.SessionLocked(sessionID)
	}
	defer e.unlock(sessionID)

	ctx, cancel := context.WithTimeout(ctx, e.turnTimeout)
	defer cancel()

	row, history, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Stage the transcript for the provider; nothing is persisted yet.
	transcript := make([]llm.Message, 0, len(history)+2)
	transcript = append(transcript, llm.SystemPrompt(systemPrompt(e.schema)))
	for _, m := range history {
		transcript = append(transcript, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	transcript = append(transcript, llm.UserMessage(text))

	raw, err := e.gateway.Complete(ctx, row.Provider, transcript)
	if err != nil {
		return nil, translateProviderError(err)
	}

	ext := ParseExtraction(e.schema, raw)
	reply := ext.Reply
	if reply == "" {
		reply = fallbackReply
	}

	data, err := ParseCollectedData(row.CollectedData)
	if err != nil {
		return nil, intakeerrors.Internal("corrupt collected data", err)
	}
	merged := Merge(e.schema, data, ext.Delta)
	encoded, err := merged.Encode()
	if err != nil {
		return nil, intakeerrors.Internal("failed to encode collected data", err)
	}

	progress := Progress(e.schema, merged)
	complete := IsComplete(e.schema, merged)
	now := time.Now().Unix()

	userMessage := &store.IntakeMessage{
		UID:       shortuuid.New(),
		SessionID: row.ID,
		Role:      store.IntakeMessageRoleUser,
		Content:   text,
		CreatedTs: now,
	}
	assistantMessage := &store.IntakeMessage{
		UID:       shortuuid.New(),
		SessionID: row.ID,
		Role:      store.IntakeMessageRoleAssistant,
		Content:   reply,
		CreatedTs: now,
	}

	updated, err := e.store.CommitIntakeTurn(ctx, &store.IntakeTurn{
		SessionID:        row.ID,
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
		Update: &store.UpdateIntakeSession{
			ID:            row.ID,
			CollectedData: &encoded,
			Progress:      &progress,
			IsComplete:    &complete,
			UpdatedTs:     &now,
		},
	})
	if err != nil {
		return nil, intakeerrors.Internal("failed to commit turn", err)
	}

	slog.Info("intake turn committed",
		slog.String("session_id", row.ID),
		slog.Int("delta_fields", len(ext.Delta)),
		slog.Int("progress", int(progress)),
		slog.Bool("complete", complete))

	history = append(history, userMessage, assistantMessage)
	return e.toView(updated, history), nil
}

// Get returns a session by id.
func (e *Engine) Get(ctx context.Context, sessionID string) (*Session, error) {
	row, history, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return e.toView(row, history), nil
}

// GetByToken returns a session by its opaque resumption token.
func (e *Engine) GetByToken(ctx context.Context, token string) (*Session, error) {
	row, err := e.store.GetIntakeSession(ctx, &store.FindIntakeSession{Token: &token})
	if err != nil {
		return nil, intakeerrors.Internal("failed to load session", err)
	}
	if row == nil {
		return nil, intakeerrors.SessionNotFound(token)
	}
	history, err := e.store.ListIntakeMessages(ctx, &store.FindIntakeMessage{SessionID: &row.ID})
	if err != nil {
		return nil, intakeerrors.Internal("failed to load messages", err)
	}
	return e.toView(row, history), nil
}

// List returns all sessions belonging to an owner, most recent first.
func (e *Engine) List(ctx context.Context, ownerID string) ([]*Session, error) {
	rows, err := e.store.ListIntakeSessions(ctx, &store.FindIntakeSession{OwnerID: &ownerID})
	if err != nil {
		return nil, intakeerrors.Internal("failed to list sessions", err)
	}

	sessions := make([]*Session, 0, len(rows))
	for _, row := range rows {
		history, err := e.store.ListIntakeMessages(ctx, &store.FindIntakeMessage{SessionID: &row.ID})
		if err != nil {
			return nil, intakeerrors.Internal("failed to load messages", err)
		}
		sessions = append(sessions, e.toView(row, history))
	}
	return sessions, nil
}

// Delete removes a session and its transcript. Deleting a missing session is
// a no-op.
func (e *Engine) Delete(ctx context.Context, sessionID string) error {
	if err := e.store.DeleteIntakeSession(ctx, &store.DeleteIntakeSession{ID: sessionID}); err != nil {
		return intakeerrors.Internal("failed to delete session", err)
	}
	return nil
}

func (e *Engine) tryLock(sessionID string) bool {
	_, loaded := e.inflight.LoadOrStore(sessionID, struct{}{})
	return !loaded
}

func (e *Engine) unlock(sessionID string) {
	e.inflight.Delete(sessionID)
}

func (e *Engine) load(ctx context.Context, sessionID string) (*store.IntakeSession, []*store.IntakeMessage, error) {
	row, err := e.store.GetIntakeSession(ctx, &store.FindIntakeSession{ID: &sessionID})
	if err != nil {
		return nil, nil, intakeerrors.Internal("failed to load session", err)
	}
	if row == nil {
		return nil, nil, intakeerrors.SessionNotFound(sessionID)
	}

	history, err := e.store.ListIntakeMessages(ctx, &store.FindIntakeMessage{SessionID: &sessionID})
	if err != nil {
		return nil, nil, intakeerrors.Internal("failed to load messages", err)
	}
	return row, history, nil
}

func (e *Engine) toView(row *store.IntakeSession, history []*store.IntakeMessage) *Session {
	messages := make([]Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, Message{
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: time.Unix(m.CreatedTs, 0).UTC(),
		})
	}

	data, err := ParseCollectedData(row.CollectedData)
	if err != nil {
		slog.Warn("corrupt collected data in session row, serving empty",
			slog.String("session_id", row.ID),
			slog.String("error", err.Error()))
		data = CollectedData{}
	}

	return &Session{
		ID:            row.ID,
		Token:         row.Token,
		Provider:      row.Provider,
		Messages:      messages,
		CollectedData: data,
		Progress:      row.Progress,
		IsComplete:    row.IsComplete,
		OwnerID:       row.OwnerID,
	}
}

// translateProviderError maps gateway sentinels onto the caller-visible
// error surface.
func translateProviderError(err error) error {
	switch {
	case errors.Is(err, llm.ErrAuth):
		return intakeerrors.ProviderAuth("provider rejected configured credentials", err)
	case errors.Is(err, llm.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return intakeerrors.ProviderTimeout("provider call timed out", err)
	case errors.Is(err, context.Canceled):
		return intakeerrors.ExtractionFailed("turn canceled", err)
	default:
		return intakeerrors.ExtractionFailed("all providers failed for this turn", err)
	}
}
