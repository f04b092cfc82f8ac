package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	domainauth "stayhub/internal/domain/auth"
	domainuser "stayhub/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
	ErrNotConfigured      = errors.New("auth: service not configured")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// AccessTokenIssuer mints short-lived access tokens carrying identity claims.
type AccessTokenIssuer interface {
	Issue(userID, email, role string, now time.Time) (string, error)
}

// TokenGenerator produces opaque refresh tokens.
type TokenGenerator interface {
	NewToken() (string, error)
}

type Service struct {
	Users      domainuser.Repository
	Sessions   domainauth.SessionStore
	Passwords  PasswordHasher
	Access     AccessTokenIssuer
	Refresh    TokenGenerator
	RefreshTTL time.Duration
	Logger     *slog.Logger

	refreshGroup singleflight.Group
}

type SignUpParams struct {
	Email    string
	Password string
	Role     string
}

type SignInParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User         *domainuser.User
	AccessToken  string
	RefreshToken string
}

type RefreshResult struct {
	User        *domainuser.User
	AccessToken string
}

// SignUp registers the account only; no tokens are issued until the user
// signs in.
func (s *Service) SignUp(ctx context.Context, params SignUpParams) (*domainuser.User, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := domainuser.NormalizeEmail(params.Email)
	role, err := domainuser.ParseRole(params.Role)
	if err != nil {
		return nil, err
	}
	if err := s.validatePassword(params.Password); err != nil {
		return nil, err
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user signed up", "user_id", user.ID, "email", user.Email, "role", user.Role)
	}
	return user, nil
}

func (s *Service) SignIn(ctx context.Context, params SignInParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := domainuser.NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Passwords.Compare(user.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	result, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user signed in", "user_id", user.ID)
	}
	return result, nil
}

// RefreshAccess trades a refresh token for a new access token. Concurrent
// calls with the same refresh token are coalesced so a burst of expired
// requests from one client produces a single lookup and a single new token.
func (s *Service) RefreshAccess(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, domainauth.ErrTokenRequired
	}
	v, err, _ := s.refreshGroup.Do(refreshToken, func() (any, error) {
		session, err := s.Sessions.Get(ctx, domainauth.Token(refreshToken))
		if err != nil {
			return nil, err
		}
		if session.Expired(time.Now()) {
			_ = s.Sessions.Delete(ctx, session.Token)
			return nil, domainauth.ErrSessionNotFound
		}
		user, err := s.Users.ByID(ctx, session.UserID)
		if err != nil {
			_ = s.Sessions.Delete(ctx, session.Token)
			if errors.Is(err, domainuser.ErrNotFound) {
				return nil, domainauth.ErrSessionNotFound
			}
			return nil, err
		}
		access, err := s.Access.Issue(string(user.ID), user.Email, string(user.Role), time.Now())
		if err != nil {
			return nil, err
		}
		return &RefreshResult{User: user, AccessToken: access}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*RefreshResult), nil
}

// SignOut invalidates every session of the user behind the given refresh
// token. An unknown token is treated as already signed out.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	session, err := s.Sessions.Get(ctx, domainauth.Token(refreshToken))
	if err != nil {
		if errors.Is(err, domainauth.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	if err := s.Sessions.DeleteByUser(ctx, session.UserID); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("user signed out", "user_id", session.UserID)
	}
	return nil
}

func (s *Service) CurrentUser(ctx context.Context, userID string) (*domainuser.User, error) {
	if s.Users == nil {
		return nil, ErrNotConfigured
	}
	return s.Users.ByID(ctx, domainuser.ID(userID))
}

func (s *Service) issueTokens(ctx context.Context, user *domainuser.User) (*AuthResult, error) {
	now := time.Now()
	access, err := s.Access.Issue(string(user.ID), user.Email, string(user.Role), now)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Refresh.NewToken()
	if err != nil {
		return nil, err
	}
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  domainauth.Token(refresh),
		UserID: user.ID,
		TTL:    s.refreshTTL(),
		Now:    now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return 7 * 24 * time.Hour
}

func (s *Service) validatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *Service) ensureDependencies() error {
	if s.Users == nil || s.Sessions == nil || s.Passwords == nil || s.Access == nil || s.Refresh == nil {
		return ErrNotConfigured
	}
	return nil
}
