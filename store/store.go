package store

import (
	"context"
	"time"

	"github.com/sitewizard/sitewizard/internal/profile"
	"github.com/sitewizard/sitewizard/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// sessionCache caches IntakeSession rows by id. Invalidated on every
	// mutation so reads after a commit always observe the committed row.
	sessionCache *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
		sessionCache: cache.New(cache.Config{
			DefaultTTL:      10 * time.Minute,
			CleanupInterval: 5 * time.Minute,
			MaxItems:        1000,
		}),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.sessionCache.Close()
	return s.driver.Close()
}

func (s *Store) CreateIntakeSession(ctx context.Context, create *IntakeSession) (*IntakeSession, error) {
	session, err := s.driver.CreateIntakeSession(ctx, create)
	if err != nil {
		return nil, err
	}
	s.sessionCache.Set(session.ID, session)
	return session, nil
}

// GetIntakeSession returns the single session matching find, or nil when none
// matches. The cache is only consulted for lookups by id.
func (s *Store) GetIntakeSession(ctx context.Context, find *FindIntakeSession) (*IntakeSession, error) {
	if find.ID != nil && find.Token == nil && find.OwnerID == nil {
		if cached, ok := s.sessionCache.Get(*find.ID); ok {
			return cached.(*IntakeSession), nil
		}
	}

	list, err := s.driver.ListIntakeSessions(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	session := list[0]
	s.sessionCache.Set(session.ID, session)
	return session, nil
}

func (s *Store) ListIntakeSessions(ctx context.Context, find *FindIntakeSession) ([]*IntakeSession, error) {
	return s.driver.ListIntakeSessions(ctx, find)
}

func (s *Store) UpdateIntakeSession(ctx context.Context, update *UpdateIntakeSession) (*IntakeSession, error) {
	session, err := s.driver.UpdateIntakeSession(ctx, update)
	if err != nil {
		return nil, err
	}
	s.sessionCache.Set(session.ID, session)
	return session, nil
}

func (s *Store) DeleteIntakeSession(ctx context.Context, delete *DeleteIntakeSession) error {
	if err := s.driver.DeleteIntakeSession(ctx, delete); err != nil {
		return err
	}
	s.sessionCache.Delete(delete.ID)
	return nil
}

func (s *Store) CreateIntakeMessage(ctx context.Context, create *IntakeMessage) (*IntakeMessage, error) {
	return s.driver.CreateIntakeMessage(ctx, create)
}

func (s *Store) ListIntakeMessages(ctx context.Context, find *FindIntakeMessage) ([]*IntakeMessage, error) {
	return s.driver.ListIntakeMessages(ctx, find)
}

func (s *Store) DeleteIntakeMessage(ctx context.Context, delete *DeleteIntakeMessage) error {
	return s.driver.DeleteIntakeMessage(ctx, delete)
}

func (s *Store) CommitIntakeTurn(ctx context.Context, turn *IntakeTurn) (*IntakeSession, error) {
	session, err := s.driver.CommitIntakeTurn(ctx, turn)
	if err != nil {
		return nil, err
	}
	s.sessionCache.Set(session.ID, session)
	return session, nil
}

func (s *Store) DeleteIntakeSessionsBefore(ctx context.Context, beforeTs int64) (int64, error) {
	n, err := s.driver.DeleteIntakeSessionsBefore(ctx, beforeTs)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		// The driver does not report which ids were removed.
		s.sessionCache.Purge()
	}
	return n, nil
}
