package service

import (
	"context"
	"errors"
	"fmt"
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/auth"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var errBadCredentials = fmt.Errorf("incorrect email or password: %w", domain.ErrUnauthorized)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, actor domain.Actor, req dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, actor domain.Actor)

	// Authenticate resolves a bearer token to an active user.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

type authService struct {
	users       ports.UserRepository
	tokens      *auth.JWTService
	hasher      *auth.PasswordHasher
	audit       AuditService
	minPassword int
	log         *zap.Logger
	now         func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	tokens *auth.JWTService,
	hasher *auth.PasswordHasher,
	audit AuditService,
	minPassword int,
	log *zap.Logger,
) AuthService {
	return &authService{
		users:       users,
		tokens:      tokens,
		hasher:      hasher,
		audit:       audit,
		minPassword: minPassword,
		log:         log.Named("auth"),
		now:         time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	if len([]rune(req.Password)) < s.minPassword {
		return nil, domain.NewValidationError("password must be at least %d characters", s.minPassword)
	}
	role := req.Role
	if role == "" {
		role = domain.RoleRecruiter
	}
	if !role.Valid() {
		return nil, domain.NewValidationError("unknown role %q", role)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Role:         role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Company:      req.Company,
		Security:     datatypes.NewJSONType(domain.SecuritySettings{}),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: email already registered", domain.ErrAlreadyExists)
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	resp := dto.NewUserResponse(u)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, actor domain.Actor, req dto.LoginRequest) (*dto.TokenResponse, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}

	sec := u.Security.Data()
	ok, err := s.hasher.Verify(u.PasswordHash, req.Password)
	if err != nil {
		s.log.Warn("stored password hash unreadable", zap.String("user_id", u.ID), zap.Error(err))
	}
	if !ok {
		sec.FailedLoginAttempts++
		if err := s.users.UpdateSecurity(ctx, u.ID, sec); err != nil {
			s.log.Error("failed to record login failure", zap.String("user_id", u.ID), zap.Error(err))
		}
		return nil, errBadCredentials
	}

	if !u.IsActive {
		return nil, fmt.Errorf("account is inactive: %w", domain.ErrForbidden)
	}

	now := s.now().UTC()
	sec.FailedLoginAttempts = 0
	sec.LastLogin = &now
	if err := s.users.UpdateSecurity(ctx, u.ID, sec); err != nil {
		return nil, fmt.Errorf("update login state: %w", err)
	}
	u.Security = datatypes.NewJSONType(sec)

	token, err := s.tokens.GenerateToken(u)
	if err != nil {
		return nil, err
	}

	actor.UserID = u.ID
	s.audit.Record(ctx, actor, AuditEntry{
		Action:       domain.AuditLogin,
		ResourceType: domain.ResourceUser,
		ResourceID:   u.ID,
	})

	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokens.TTL().Seconds()),
		User:        dto.NewUserResponse(u),
	}, nil
}

func (s *authService) Logout(ctx context.Context, actor domain.Actor) {
	s.audit.Record(ctx, actor, AuditEntry{
		Action:       domain.AuditLogout,
		ResourceType: domain.ResourceUser,
		ResourceID:   actor.UserID,
	})
}

func (s *authService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, claims.Subject)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("user not found: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("user account is inactive: %w", domain.ErrForbidden)
	}
	return u, nil
}
