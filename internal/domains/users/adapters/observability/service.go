package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	userdomain "github.com/Apurer/storefront-api/internal/domains/users/domain"
	userports "github.com/Apurer/storefront-api/internal/domains/users/ports"
	"github.com/Apurer/storefront-api/internal/shared/fault"
	"github.com/Apurer/storefront-api/internal/shared/identity"
)

const tracerName = "github.com/Apurer/storefront-api/internal/domains/users/adapters/observability/service"

// Service traces account operations and counts sign-ups, logins and profile
// changes. Emails, passwords and tokens never reach spans or logs.
type Service struct {
	inner   userports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics accountMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		if tr != nil {
			s.tracer = tr
		}
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newAccountMetrics(m) }
}

func New(inner userports.Service, opts ...Option) userports.Service {
	s := &Service{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// observe runs call inside a span. Client faults log at warn, everything else
// at error.
func observe[T any](ctx context.Context, s *Service, name string, attrs []attribute.KeyValue, call func(context.Context) (T, error)) (T, error) {
	ctx, span := s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	defer span.End()
	out, err := call(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		level := slog.LevelWarn
		if fault.IsRetryable(err) || fault.Kind(err) == nil {
			level = slog.LevelError
		}
		s.logger.LogAttrs(ctx, level, "account operation failed",
			slog.String("operation", name), slog.String("error", err.Error()))
	}
	return out, err
}

type signedIn struct {
	user    *userdomain.User
	session userdomain.Session
}

func (s *Service) Register(ctx context.Context, input userports.RegisterInput) (*userdomain.User, userdomain.Session, error) {
	out, err := observe(ctx, s, "UserService.Register", nil, func(ctx context.Context) (signedIn, error) {
		user, session, err := s.inner.Register(ctx, input)
		return signedIn{user, session}, err
	})
	if err != nil {
		return nil, userdomain.Session{}, err
	}
	s.metrics.registered.add(ctx)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "account registered", slog.String("user.id", out.user.ID))
	return out.user, out.session, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*userdomain.User, userdomain.Session, error) {
	out, err := observe(ctx, s, "UserService.Login", nil, func(ctx context.Context) (signedIn, error) {
		user, session, err := s.inner.Login(ctx, email, password)
		return signedIn{user, session}, err
	})
	if err != nil {
		s.metrics.logins.add(ctx, attribute.String("outcome", loginOutcome(err)))
		return nil, userdomain.Session{}, err
	}
	s.metrics.logins.add(ctx, attribute.String("outcome", "accepted"))
	return out.user, out.session, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	_, err := observe(ctx, s, "UserService.Logout", nil, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.inner.Logout(ctx, token)
	})
	return err
}

// Authenticate runs on every protected request; rejected tokens are expected
// traffic and stay out of the logs.
func (s *Service) Authenticate(ctx context.Context, token string) (identity.Actor, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()
	actor, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if fault.IsRetryable(err) || fault.Kind(err) == nil {
			span.RecordError(err)
			s.logger.LogAttrs(ctx, slog.LevelError, "session lookup failed", slog.String("error", err.Error()))
		}
		return identity.Actor{}, err
	}
	span.SetAttributes(attribute.String("user.id", actor.UserID), attribute.String("user.role", string(actor.Role)))
	return actor, nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*userdomain.User, error) {
	return observe(ctx, s, "UserService.GetProfile", []attribute.KeyValue{attribute.String("user.id", userID)},
		func(ctx context.Context) (*userdomain.User, error) { return s.inner.GetProfile(ctx, userID) })
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, update userports.ProfileUpdate) (*userdomain.User, error) {
	rotated := update.Password != ""
	user, err := observe(ctx, s, "UserService.UpdateProfile",
		[]attribute.KeyValue{attribute.String("user.id", userID), attribute.Bool("user.password_rotated", rotated)},
		func(ctx context.Context) (*userdomain.User, error) { return s.inner.UpdateProfile(ctx, userID, update) })
	if err != nil {
		return nil, err
	}
	s.metrics.updated.add(ctx, attribute.Bool("password_rotated", rotated))
	if rotated {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "password changed, other sessions revoked", slog.String("user.id", userID))
	}
	return user, nil
}

func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (*userdomain.User, error) {
	user, err := observe(ctx, s, "UserService.EnsureAdmin", nil,
		func(ctx context.Context) (*userdomain.User, error) {
			return s.inner.EnsureAdmin(ctx, name, email, password)
		})
	if err == nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "admin account ready", slog.String("user.id", user.ID))
	}
	return user, err
}

func (s *Service) ChangePassword(ctx context.Context, userID string, change userports.PasswordChange) error {
	_, err := observe(ctx, s, "UserService.ChangePassword", []attribute.KeyValue{attribute.String("user.id", userID)},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.inner.ChangePassword(ctx, userID, change)
		})
	if err != nil {
		return err
	}
	s.metrics.updated.add(ctx, attribute.Bool("password_rotated", true))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "password changed, other sessions revoked", slog.String("user.id", userID))
	return nil
}

// RequestPasswordReset counts requests, not mails: unknown emails look the
// same from outside.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := observe(ctx, s, "UserService.RequestPasswordReset", nil,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.inner.RequestPasswordReset(ctx, email)
		})
	if err == nil {
		s.metrics.resets.add(ctx, attribute.String("stage", "requested"))
	}
	return err
}

func (s *Service) ResetPassword(ctx context.Context, token, password string) (*userdomain.User, userdomain.Session, error) {
	out, err := observe(ctx, s, "UserService.ResetPassword", nil, func(ctx context.Context) (signedIn, error) {
		user, session, err := s.inner.ResetPassword(ctx, token, password)
		return signedIn{user, session}, err
	})
	if err != nil {
		return nil, userdomain.Session{}, err
	}
	s.metrics.resets.add(ctx, attribute.String("stage", "completed"))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "password reset, all sessions revoked", slog.String("user.id", out.user.ID))
	return out.user, out.session, nil
}

func (s *Service) AddAddress(ctx context.Context, userID string, address userdomain.Address) ([]userdomain.Address, error) {
	return observe(ctx, s, "UserService.AddAddress", []attribute.KeyValue{attribute.String("user.id", userID)},
		func(ctx context.Context) ([]userdomain.Address, error) {
			return s.inner.AddAddress(ctx, userID, address)
		})
}

func (s *Service) UpdateAddress(ctx context.Context, userID, addressID string, address userdomain.Address) ([]userdomain.Address, error) {
	return observe(ctx, s, "UserService.UpdateAddress",
		[]attribute.KeyValue{attribute.String("user.id", userID), attribute.String("address.id", addressID)},
		func(ctx context.Context) ([]userdomain.Address, error) {
			return s.inner.UpdateAddress(ctx, userID, addressID, address)
		})
}

func (s *Service) DeleteAddress(ctx context.Context, userID, addressID string) ([]userdomain.Address, error) {
	return observe(ctx, s, "UserService.DeleteAddress",
		[]attribute.KeyValue{attribute.String("user.id", userID), attribute.String("address.id", addressID)},
		func(ctx context.Context) ([]userdomain.Address, error) {
			return s.inner.DeleteAddress(ctx, userID, addressID)
		})
}

func loginOutcome(err error) string {
	switch fault.Kind(err) {
	case fault.ErrUnauthorized:
		return "rejected"
	case fault.ErrForbidden:
		return "disabled"
	default:
		return "error"
	}
}

type counter struct{ c metric.Int64Counter }

func (c counter) add(ctx context.Context, attrs ...attribute.KeyValue) {
	if c.c != nil {
		c.c.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

type accountMetrics struct {
	registered counter
	updated    counter
	logins     counter
	resets     counter
}

func newAccountMetrics(m metric.Meter) accountMetrics {
	if m == nil {
		return accountMetrics{}
	}
	registered, _ := m.Int64Counter("users.service.registered", metric.WithDescription("Accounts registered"))
	updated, _ := m.Int64Counter("users.service.updated", metric.WithDescription("Profile updates by whether the password rotated"))
	logins, _ := m.Int64Counter("users.service.logins", metric.WithDescription("Login attempts by outcome"))
	resets, _ := m.Int64Counter("users.service.password_resets", metric.WithDescription("Password resets by stage"))
	return accountMetrics{
		registered: counter{registered},
		updated:    counter{updated},
		logins:     counter{logins},
		resets:     counter{resets},
	}
}

var _ userports.Service = (*Service)(nil)
