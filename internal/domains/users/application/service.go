package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/storefront-api/internal/domains/users/domain"
	"github.com/Apurer/storefront-api/internal/domains/users/ports"
	"github.com/Apurer/storefront-api/internal/shared/identity"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	DefaultResetTTL   = time.Hour
	defaultTimeout    = 5 * time.Second
)

// Service exposes account and session use cases.
type Service struct {
	repo       ports.Repository
	sessions   ports.SessionStore
	mailer     ports.ResetMailer
	sessionTTL time.Duration
	resetTTL   time.Duration
	hashCost   int
	timeout    time.Duration
	now        func() time.Time
	newID      func() string
	newToken   func() string
}

type Option func(*Service)

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithResetMailer sets where reset links go. Without one,
// RequestPasswordReset fails for existing accounts.
func WithResetMailer(mailer ports.ResetMailer) Option {
	return func(s *Service) {
		s.mailer = mailer
	}
}

func WithResetTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.resetTTL = ttl
		}
	}
}

// WithHashCost sets the bcrypt cost; tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.hashCost = cost
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		sessions:   sessions,
		sessionTTL: DefaultSessionTTL,
		resetTTL:   DefaultResetTTL,
		hashCost:   bcrypt.DefaultCost,
		timeout:    defaultTimeout,
		now:        time.Now,
		newID:      uuid.NewString,
		newToken:   func() string { return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "") },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register creates a customer account and signs it in.
func (s *Service) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, domain.Session, error) {
	user, err := domain.NewUser(s.newID(), input.Name, input.Email, input.Phone)
	if err != nil {
		return nil, domain.Session{}, mapError("users.register", err)
	}
	if err := user.SetPassword(input.Password, s.hashCost); err != nil {
		return nil, domain.Session{}, mapError("users.register", err)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, domain.Session{}, mapError("users.register", err)
	}
	session, err := s.openSession(ctx, saved.ID)
	if err != nil {
		return nil, domain.Session{}, mapError("users.register", err)
	}
	return saved, session, nil
}

// Login verifies credentials and issues a session.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, domain.Session, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Session{}, mapError("users.login", ports.ErrInvalidCredentials)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	user, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, domain.Session{}, mapError("users.login", ports.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, domain.Session{}, mapError("users.login", err)
	}
	if !user.CheckPassword(password) {
		return nil, domain.Session{}, mapError("users.login", ports.ErrInvalidCredentials)
	}
	if !user.IsActive {
		return nil, domain.Session{}, mapError("users.login", ErrAccountDisabled)
	}
	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, domain.Session{}, mapError("users.login", err)
	}
	return user, session, nil
}

// Logout revokes the token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	err := s.sessions.Delete(ctx, token)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return nil
	}
	return mapError("users.logout", err)
}

// Authenticate resolves a bearer token to the acting user.
func (s *Service) Authenticate(ctx context.Context, token string) (identity.Actor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return identity.Actor{}, mapError("users.authenticate", ErrInvalidSession)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return identity.Actor{}, mapError("users.authenticate", err)
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return identity.Actor{}, mapError("users.authenticate", ErrInvalidSession)
	}
	user, err := s.repo.GetByID(ctx, session.UserID)
	if errors.Is(err, ports.ErrNotFound) {
		return identity.Actor{}, mapError("users.authenticate", ErrInvalidSession)
	}
	if err != nil {
		return identity.Actor{}, mapError("users.authenticate", err)
	}
	if !user.IsActive {
		return identity.Actor{}, mapError("users.authenticate", ErrAccountDisabled)
	}
	return user.Actor(), nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapError("users.profile", err)
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, update ports.ProfileUpdate) (*domain.User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapError("users.update_profile", err)
	}
	if err := user.UpdateProfile(update.Name, update.Phone); err != nil {
		return nil, mapError("users.update_profile", err)
	}
	if update.Password != "" {
		if err := user.SetPassword(update.Password, s.hashCost); err != nil {
			return nil, mapError("users.update_profile", err)
		}
	}
	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, mapError("users.update_profile", err)
	}
	if update.Password != "" {
		if _, err := s.sessions.DeleteForUser(ctx, userID, update.KeepSession); err != nil {
			return nil, mapError("users.revoke_sessions", err)
		}
	}
	return saved, nil
}

// EnsureAdmin creates the admin account when missing, or promotes an existing
// account with that email. The password is only set on creation.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == identity.RoleAdmin && existing.IsActive {
			return existing, nil
		}
		existing.Role = identity.RoleAdmin
		existing.IsActive = true
		saved, err := s.repo.Save(ctx, existing)
		return saved, mapError("users.ensure_admin", err)
	case !errors.Is(err, ports.ErrNotFound):
		return nil, mapError("users.ensure_admin", err)
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	user, err := domain.NewUser(s.newID(), name, email, "")
	if err != nil {
		return nil, mapError("users.ensure_admin", err)
	}
	if err := user.SetPassword(password, s.hashCost); err != nil {
		return nil, mapError("users.ensure_admin", err)
	}
	user.Role = identity.RoleAdmin
	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, mapError("users.ensure_admin", err)
	}
	return saved, nil
}

func (s *Service) openSession(ctx context.Context, userID string) (domain.Session, error) {
	now := s.now().UTC()
	session := domain.Session{Token: s.newToken(), UserID: userID, CreatedAt: now, ExpiresAt: now.Add(s.sessionTTL)}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

var _ ports.Service = (*Service)(nil)
