package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/storefront-api/internal/domains/users/domain"
	"github.com/Apurer/storefront-api/internal/domains/users/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

var errSessionOwnerRequired = errors.New("session token and owner are required")

// SessionStore keeps bearer sessions in the user_sessions table. Expired rows
// linger until PurgeExpired runs; Get still returns them and the service
// rejects them by expiry.
type SessionStore struct {
	db *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	if db != nil {
		_ = db.AutoMigrate(&sessionRecord{})
	}
	return &SessionStore{db: db}
}

type sessionRecord struct {
	Token     string    `gorm:"primaryKey;column:token;size:128"`
	UserID    string    `gorm:"column:user_id;size:64;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

func (r sessionRecord) session() domain.Session {
	return domain.Session{Token: r.Token, UserID: r.UserID, ExpiresAt: r.ExpiresAt, CreatedAt: r.CreatedAt}
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	if strings.TrimSpace(session.Token) == "" || strings.TrimSpace(session.UserID) == "" {
		return errSessionOwnerRequired
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return db.Create(&sessionRecord{
		Token:     session.Token,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt.UTC(),
		CreatedAt: session.CreatedAt.UTC(),
	}).Error
}

func (s *SessionStore) Get(ctx context.Context, token string) (domain.Session, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	var rec sessionRecord
	err = db.Where("token = ?", token).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Session{}, ports.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	return rec.session(), nil
}

// Delete is a no-op for unknown tokens.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return db.Where("token = ?", token).Delete(&sessionRecord{}).Error
}

func (s *SessionStore) DeleteForUser(ctx context.Context, userID, keep string) (int64, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	query := db.Where("user_id = ?", userID)
	if keep != "" {
		query = query.Where("token <> ?", keep)
	}
	result := query.Delete(&sessionRecord{})
	return result.RowsAffected, result.Error
}

// PurgeExpired deletes sessions whose expiry is at or before now. It backs
// both the in-process ticker and the session-purger command.
func (s *SessionStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	result := db.Where("expires_at <= ?", now.UTC()).Delete(&sessionRecord{})
	return result.RowsAffected, result.Error
}

func (s *SessionStore) conn(ctx context.Context) (*gorm.DB, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("postgres session store not configured")
	}
	return s.db.WithContext(ctx), nil
}
