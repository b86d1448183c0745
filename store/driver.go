package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// IntakeSession model related methods.
	CreateIntakeSession(ctx context.Context, create *IntakeSession) (*IntakeSession, error)
	ListIntakeSessions(ctx context.Context, find *FindIntakeSession) ([]*IntakeSession, error)
	UpdateIntakeSession(ctx context.Context, update *UpdateIntakeSession) (*IntakeSession, error)
	DeleteIntakeSession(ctx context.Context, delete *DeleteIntakeSession) error

	// IntakeMessage model related methods.
	CreateIntakeMessage(ctx context.Context, create *IntakeMessage) (*IntakeMessage, error)
	ListIntakeMessages(ctx context.Context, find *FindIntakeMessage) ([]*IntakeMessage, error)
	DeleteIntakeMessage(ctx context.Context, delete *DeleteIntakeMessage) error

	// CommitIntakeTurn applies one accepted turn transactionally: both
	// messages and the session update become visible together or not at all.
	CommitIntakeTurn(ctx context.Context, turn *IntakeTurn) (*IntakeSession, error)

	// DeleteIntakeSessionsBefore removes sessions last updated before the
	// given timestamp. Used by the retention runner.
	DeleteIntakeSessionsBefore(ctx context.Context, beforeTs int64) (int64, error)
}
