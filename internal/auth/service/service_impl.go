package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/auth/domain"
	"github.com/smallbiznis/haccp/internal/auth/password"
	"github.com/smallbiznis/haccp/internal/auth/token"
	"github.com/smallbiznis/haccp/internal/clock"
	obsmetrics "github.com/smallbiznis/haccp/internal/observability/metrics"
	"github.com/smallbiznis/haccp/internal/ratelimit"
	"github.com/smallbiznis/haccp/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const generatedPasswordBytes = 12

type Params struct {
	fx.In

	Log     *zap.Logger
	Repo    domain.Repository
	Tokens  *token.Manager
	GenID   *snowflake.Node
	Clock   clock.Clock
	Limiter *ratelimit.LoginLimiter `optional:"true"`
	Metrics *obsmetrics.Metrics     `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	repo    domain.Repository
	tokens  *token.Manager
	genID   *snowflake.Node
	clock   clock.Clock
	limiter *ratelimit.LoginLimiter
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("auth.service"),
		repo:    p.Repo,
		tokens:  p.Tokens,
		genID:   p.GenID,
		clock:   p.Clock,
		limiter: p.Limiter,
		metrics: p.Metrics,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	result, err := s.login(ctx, req)
	s.metrics.RecordLogin(ctx, loginResult(err))
	return result, err
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	case errors.Is(err, domain.ErrInactiveUser):
		return "inactive"
	}
	return "error"
}

func (s *Service) login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.limiter.Enabled() {
		res, err := s.limiter.Allow(ctx, email, req.IPAddress)
		if err != nil {
			s.log.Warn("login limiter unavailable", zap.Error(err))
		} else if !res.Allowed {
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.repo.FindOne(ctx, domain.User{Email: email})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Verify(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrInactiveUser
	}
	if password.NeedsRehash(user.PasswordHash) {
		if err := s.setPassword(ctx, user.ID, req.Password); err != nil {
			s.log.Warn("failed to upgrade password hash", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	raw, expiresAt, err := s.tokens.Issue(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID.String()))
	return &domain.LoginResult{
		Token:     raw,
		ExpiresAt: expiresAt,
		User:      *user,
	}, nil
}

// Authenticate verifies the token and re-reads the user, so a deactivated
// account or a changed role takes effect before the token expires.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Claims, error) {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	userID, err := snowflake.ParseString(claims.UserID)
	if err != nil || userID == 0 {
		return nil, domain.ErrInvalidToken
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrInactiveUser
	}

	return &domain.Claims{
		TokenID: claims.ID,
		UserID:  user.ID.String(),
		Email:   user.Email,
		Role:    user.Role,
	}, nil
}

func (s *Service) Me(ctx context.Context) (*domain.User, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.FindByID(ctx, userID)
}

func (s *Service) ChangePassword(ctx context.Context, req domain.ChangePasswordRequest) error {
	user, err := s.Me(ctx)
	if err != nil {
		return err
	}
	if !password.Verify(req.CurrentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	return s.setPassword(ctx, user.ID, req.NewPassword)
}

func (s *Service) ListUsers(ctx context.Context, req domain.ListUsersRequest) ([]domain.User, error) {
	filter := domain.ListFilter{Active: req.Active}
	if strings.TrimSpace(req.Role) != "" {
		role, ok := domain.ParseRole(req.Role)
		if !ok {
			return nil, domain.ErrInvalidRole
		}
		filter.Role = role
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	role := domain.RoleEmployee
	if strings.TrimSpace(req.Role) != "" {
		parsed, ok := domain.ParseRole(req.Role)
		if !ok {
			return nil, domain.ErrInvalidRole
		}
		role = parsed
	}
	if err := password.Validate(req.Password); err != nil {
		return nil, domain.ErrWeakPassword
	}

	if _, err := s.repo.FindOne(ctx, domain.User{Email: email}); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	user := &domain.User{
		ID:                  s.genID.Generate(),
		Email:               email,
		Name:                name,
		Role:                role,
		Active:              true,
		PasswordHash:        hashed,
		LastPasswordChanged: &now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, req domain.UpdateUserRequest) (*domain.User, error) {
	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.Role != nil {
		role, ok := domain.ParseRole(*req.Role)
		if !ok {
			return nil, domain.ErrInvalidRole
		}
		fields["role"] = role
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	if req.Password != nil {
		if err := s.setPassword(ctx, userID, *req.Password); err != nil {
			return nil, err
		}
	}
	if len(fields) > 0 {
		fields["updated_at"] = s.clock.Now().UTC()
		if err := s.repo.UpdateFields(ctx, userID, fields); err != nil {
			return nil, err
		}
	}
	return s.repo.FindByID(ctx, userID)
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	userID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.repo.UpdateFields(ctx, userID, map[string]any{
		"active":     false,
		"updated_at": s.clock.Now().UTC(),
	})
}

func (s *Service) EnsureBootstrapAdmin(ctx context.Context, email, secret, name string) (*domain.User, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}

	if strings.TrimSpace(secret) == "" {
		secret, err = generatePassword()
		if err != nil {
			return nil, err
		}
		s.log.Warn("bootstrap admin password generated, change it after first login",
			zap.String("email", email),
			zap.String("password", secret),
		)
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	return s.CreateUser(ctx, domain.CreateUserRequest{
		Email:    email,
		Name:     name,
		Role:     string(domain.RoleAdmin),
		Password: secret,
	})
}

func (s *Service) setPassword(ctx context.Context, userID snowflake.ID, newPassword string) error {
	if err := password.Validate(newPassword); err != nil {
		return domain.ErrWeakPassword
	}
	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	now := s.clock.Now().UTC()
	return s.repo.UpdateFields(ctx, userID, map[string]any{
		"password_hash":         hashed,
		"last_password_changed": &now,
		"updated_at":            now,
	})
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}

func generatePassword() (string, error) {
	buf := make([]byte, generatedPasswordBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
