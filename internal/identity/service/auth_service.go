package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"auth-session-gateway/internal/audit"
	auditdomain "auth-session-gateway/internal/audit/domain"
	"auth-session-gateway/internal/identity"
	"auth-session-gateway/internal/security"
	sessiondomain "auth-session-gateway/internal/session/domain"
	tokendomain "auth-session-gateway/internal/token/domain"
	userdomain "auth-session-gateway/internal/user/domain"
)

// Sentinel errors for auth service; handler maps them to HTTP status codes.
var (
	ErrUnauthenticated  = errors.New("no valid credential")
	ErrForgeryDetected  = errors.New("anti-forgery token mismatch")
	ErrIdentityRejected = errors.New("provider identity rejected")
)

// LoginResult holds everything issued on a successful login: the resolved
// user plus the fresh session, anti-forgery token, and bearer token. Raw
// token values appear here only; storage holds hashes.
type LoginResult struct {
	User      *userdomain.User
	SessionID string
	CSRFToken string
	Bearer    string
	ExpiresAt time.Time
}

// RefreshResult holds rotated credentials. SessionID and CSRFToken are set
// when a session was rotated; Bearer when a bearer token was rotated.
type RefreshResult struct {
	UserID    string
	SessionID string
	CSRFToken string
	Bearer    string
	ExpiresAt time.Time
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	Update(ctx context.Context, u *userdomain.User) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	Revoke(ctx context.Context, id string) error
	Rotate(ctx context.Context, oldID, newID, csrfTokenHash string, refreshedAt, expiresAt time.Time) error
}

// TokenRepo is the minimal bearer token repository needed by the auth service.
type TokenRepo interface {
	GetByHash(ctx context.Context, tokenHash string) (*tokendomain.BearerToken, error)
	Create(ctx context.Context, t *tokendomain.BearerToken) error
	Delete(ctx context.Context, id string) error
}

// AuthService implements provider login, credential resolution, refresh
// rotation, and logout.
type AuthService struct {
	userRepo    UserRepo
	sessionRepo SessionRepo
	tokenRepo   TokenRepo
	auditor     audit.AuditLogger
	sessionTTL  time.Duration
	maxLifetime time.Duration
}

// NewAuthService returns an AuthService with the given dependencies.
// sessionTTL is the sliding expiry added on login and refresh; maxLifetime
// caps how far a session chain can extend past its original creation.
func NewAuthService(
	userRepo UserRepo,
	sessionRepo SessionRepo,
	tokenRepo TokenRepo,
	auditor audit.AuditLogger,
	sessionTTL, maxLifetime time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokenRepo:   tokenRepo,
		auditor:     auditor,
		sessionTTL:  sessionTTL,
		maxLifetime: maxLifetime,
	}
}

// Login resolves the provider identity to a local user, creating the user on
// first login, and issues a session, anti-forgery token, and bearer token.
func (s *AuthService) Login(ctx context.Context, ident *identity.Identity) (*LoginResult, error) {
	if ident == nil || strings.TrimSpace(ident.Email) == "" {
		return nil, ErrIdentityRejected
	}
	email := strings.TrimSpace(strings.ToLower(ident.Email))
	now := time.Now().UTC()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &userdomain.User{
			ID:        uuid.New().String(),
			Email:     email,
			Name:      strings.TrimSpace(ident.Name),
			Role:      userdomain.RoleUser,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := user.Validate(); err != nil {
			return nil, err
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	} else if name := strings.TrimSpace(ident.Name); name != "" && name != user.Name {
		user.Name = name
		user.UpdatedAt = now
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	csrfToken, err := security.GenerateToken()
	if err != nil {
		return nil, err
	}
	bearer, err := security.GenerateToken()
	if err != nil {
		return nil, err
	}
	sessionID := uuid.New().String()
	expiresAt := now.Add(s.sessionTTL)
	sess := &sessiondomain.Session{
		ID:            sessionID,
		UserID:        user.ID,
		CSRFTokenHash: security.HashToken(csrfToken),
		CreatedAt:     now,
		ExpiresAt:     expiresAt,
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}
	tok := &tokendomain.BearerToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: security.HashToken(bearer),
		CreatedAt: now,
	}
	if err := s.tokenRepo.Create(ctx, tok); err != nil {
		return nil, err
	}
	s.auditor.LogEvent(ctx, auditdomain.EventLoginSuccess, user.ID, "")
	return &LoginResult{
		User:      user,
		SessionID: sessionID,
		CSRFToken: csrfToken,
		Bearer:    bearer,
		ExpiresAt: expiresAt,
	}, nil
}

// ResolveSession returns the user and session for a session id presented by
// a cookie. Returns ErrUnauthenticated for unknown, revoked, or expired
// sessions.
func (s *AuthService) ResolveSession(ctx context.Context, sessionID string) (*userdomain.User, *sessiondomain.Session, error) {
	if sessionID == "" {
		return nil, nil, ErrUnauthenticated
	}
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if !sess.ValidAt(time.Now().UTC()) {
		return nil, nil, ErrUnauthenticated
	}
	user, err := s.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUnauthenticated
	}
	return user, sess, nil
}

// ResolveBearer returns the user for a raw bearer token. Returns
// ErrUnauthenticated when the token is unknown.
func (s *AuthService) ResolveBearer(ctx context.Context, rawToken string) (*userdomain.User, error) {
	if rawToken == "" {
		return nil, ErrUnauthenticated
	}
	tok, err := s.tokenRepo.GetByHash(ctx, security.HashToken(rawToken))
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.GetByID(ctx, tok.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// RefreshSession rotates the session id and anti-forgery token and extends
// expiry. The presented anti-forgery token must match the hash stored on the
// session. Expiry never extends past CreatedAt plus the lifetime cap; a
// session at its cap is revoked and the refresh rejected.
func (s *AuthService) RefreshSession(ctx context.Context, sessionID, csrfToken string) (*RefreshResult, error) {
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if !sess.ValidAt(now) {
		return nil, ErrUnauthenticated
	}
	if !security.TokenHashEqual(csrfToken, sess.CSRFTokenHash) {
		return nil, ErrForgeryDetected
	}
	expiresAt := now.Add(s.sessionTTL)
	if cap := sess.CreatedAt.Add(s.maxLifetime); expiresAt.After(cap) {
		expiresAt = cap
	}
	if !expiresAt.After(now) {
		_ = s.sessionRepo.Revoke(ctx, sess.ID)
		return nil, ErrUnauthenticated
	}
	newID := uuid.New().String()
	newCSRF, err := security.GenerateToken()
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Rotate(ctx, sess.ID, newID, security.HashToken(newCSRF), now, expiresAt); err != nil {
		return nil, err
	}
	s.auditor.LogEvent(ctx, auditdomain.EventTokenRefreshed, sess.UserID, "")
	return &RefreshResult{
		UserID:    sess.UserID,
		SessionID: newID,
		CSRFToken: newCSRF,
		ExpiresAt: expiresAt,
	}, nil
}

// RefreshBearer rotates a bearer token: the old token is deleted and a new
// one issued for the same user. ExpiresAt on the result bounds the cookie
// re-issued for the rotated token.
func (s *AuthService) RefreshBearer(ctx context.Context, rawToken string) (*RefreshResult, error) {
	if rawToken == "" {
		return nil, ErrUnauthenticated
	}
	tok, err := s.tokenRepo.GetByHash(ctx, security.HashToken(rawToken))
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, ErrUnauthenticated
	}
	now := time.Now().UTC()
	newRaw, err := security.GenerateToken()
	if err != nil {
		return nil, err
	}
	newTok := &tokendomain.BearerToken{
		ID:        uuid.New().String(),
		UserID:    tok.UserID,
		TokenHash: security.HashToken(newRaw),
		CreatedAt: now,
	}
	if err := s.tokenRepo.Create(ctx, newTok); err != nil {
		return nil, err
	}
	if err := s.tokenRepo.Delete(ctx, tok.ID); err != nil {
		return nil, err
	}
	s.auditor.LogEvent(ctx, auditdomain.EventTokenRefreshed, tok.UserID, "")
	return &RefreshResult{UserID: tok.UserID, Bearer: newRaw, ExpiresAt: now.Add(s.sessionTTL)}, nil
}

// Logout revokes whatever credentials were presented. Missing or already
// invalid credentials are not an error; the caller responds identically
// either way. Revocation failures are returned so the caller can log them.
func (s *AuthService) Logout(ctx context.Context, sessionID, rawBearer string) error {
	var userID string
	var revoked bool
	var firstErr error

	if sessionID != "" {
		sess, err := s.sessionRepo.GetByID(ctx, sessionID)
		if err != nil {
			firstErr = err
		} else if sess != nil {
			userID = sess.UserID
			if err := s.sessionRepo.Revoke(ctx, sess.ID); err != nil {
				firstErr = err
			} else {
				revoked = true
			}
		}
	}
	if rawBearer != "" {
		tok, err := s.tokenRepo.GetByHash(ctx, security.HashToken(rawBearer))
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else if tok != nil {
			if userID == "" {
				userID = tok.UserID
			}
			if err := s.tokenRepo.Delete(ctx, tok.ID); err != nil {
				if firstErr == nil {
					firstErr = err
				}
			} else {
				revoked = true
			}
		}
	}
	if revoked {
		s.auditor.LogEvent(ctx, auditdomain.EventLogout, userID, "")
	}
	return firstErr
}

// LogOAuthFailure records a failed provider login attempt. reason is stored
// as metadata; no user is attached.
func (s *AuthService) LogOAuthFailure(ctx context.Context, reason string) {
	s.auditor.LogEvent(ctx, auditdomain.EventOAuthFailed, "", reason)
}
