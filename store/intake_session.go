package store

// IntakeSession is one user's profile-building conversation and its
// accumulated structured data. CollectedData is a JSON object mapping field
// names to strings or string arrays; Progress and IsComplete are derived from
// it by the intake engine and persisted for cheap listing.
type IntakeSession struct {
	ID            string
	Token         string
	OwnerID       string
	Provider      string
	CollectedData string // JSON object
	Progress      int32
	IsComplete    bool
	CreatedTs     int64
	UpdatedTs     int64
}

type FindIntakeSession struct {
	ID      *string
	Token   *string
	OwnerID *string
}

type UpdateIntakeSession struct {
	ID            string
	CollectedData *string
	Progress      *int32
	IsComplete    *bool
	UpdatedTs     *int64
}

type DeleteIntakeSession struct {
	ID string
}

type IntakeMessageRole string

const (
	IntakeMessageRoleUser      IntakeMessageRole = "user"
	IntakeMessageRoleAssistant IntakeMessageRole = "assistant"
	IntakeMessageRoleSystem    IntakeMessageRole = "system"
)

type IntakeMessage struct {
	ID        int32
	UID       string
	SessionID string
	Role      IntakeMessageRole
	Content   string
	CreatedTs int64
}

type FindIntakeMessage struct {
	ID        *int32
	UID       *string
	SessionID *string
}

type DeleteIntakeMessage struct {
	ID        *int32
	SessionID *string
}

// IntakeTurn is the atomic unit committed at the end of a successful turn:
// the user message, the assistant reply, and the session update land in one
// transaction or not at all.
type IntakeTurn struct {
	SessionID        string
	UserMessage      *IntakeMessage
	AssistantMessage *IntakeMessage
	Update           *UpdateIntakeSession
}
