package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"abantech/internal/access"
	"abantech/internal/auth"
	apperrors "abantech/internal/errors"
	"abantech/internal/events"
	"abantech/internal/log"
	"abantech/internal/model"
	"abantech/internal/repository"
	"abantech/internal/session"
)

// SessionTTL bounds how long a login lasts without logging in again.
const SessionTTL = auth.RefreshTokenExpiry

// RegisterInput is a self-service registration.
type RegisterInput struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
	ShopID          *uuid.UUID
}

// TokenPair is returned by Login and Refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Profile is the authenticated user together with their shop, if any.
type Profile struct {
	User *model.User `json:"user"`
	Shop *model.Shop `json:"shop,omitempty"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, *model.User, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	// Authorize resolves sessionID and checks it may open a view requiring
	// role. The user is reloaded on every call so that status and role
	// changes apply on the next request; a fired or deleted user's session
	// is cleared. An empty role accepts any role.
	Authorize(ctx context.Context, sessionID string, role model.Role) (*session.Session, error)
	Profile(ctx context.Context, s *session.Session) (*Profile, error)
}

type authService struct {
	users    repository.UserRepository
	shops    repository.ShopRepository
	sessions session.Store
	jwt      *auth.JWTService
	notifier notifier
	logger   *log.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	shops repository.ShopRepository,
	sessions session.Store,
	jwtService *auth.JWTService,
	publisher events.Publisher,
	logger *log.Logger,
) AuthService {
	n := newNotifier(publisher, logger)
	return &authService{
		users:    users,
		shops:    shops,
		sessions: sessions,
		jwt:      jwtService,
		notifier: n,
		logger:   n.logger.WithComponent("auth"),
	}
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user account with a hashed password. New accounts are
// always active users; admins are created with the addadmin command.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := NormalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)

	if email == "" {
		return nil, apperrors.NewValidationError("email", "is required")
	}
	if in.Password == "" {
		return nil, apperrors.NewValidationError("password", "is required")
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperrors.NewValidationError("confirm_password", "passwords do not match")
	}

	// Emails and usernames share one namespace because either can end up as
	// the owner identifier stamped on records.
	if err := s.ensureIdentifierFree(ctx, email); err != nil {
		return nil, err
	}
	if username != "" {
		if err := s.ensureIdentifierFree(ctx, username); err != nil {
			return nil, err
		}
	}

	if in.ShopID != nil {
		shop, err := s.shops.FindByID(ctx, *in.ShopID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationError("shop_id", "unknown shop")
		}
		if err != nil {
			return nil, fmt.Errorf("find shop: %w", err)
		}
		if shop.Status != model.ShopStatusActive {
			return nil, apperrors.NewValidationError("shop_id", "shop is closed")
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleUser,
		ShopID:       in.ShopID,
		Status:       model.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.notifier.emit(ctx, events.UserRegistered, user.Identifier(), user.ID.String(), "", nil)
	return user, nil
}

func (s *authService) ensureIdentifierFree(ctx context.Context, name string) error {
	_, err := repository.FindByIdentifier(ctx, s.users, name)
	if err == nil {
		return apperrors.ErrUserAlreadyExists
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("check user existence: %w", err)
	}
	return nil
}

// Login verifies credentials and starts a session. An unknown email and a
// wrong password are indistinguishable; a fired user is told so only after
// the password matched.
func (s *authService) Login(ctx context.Context, email, password string) (*TokenPair, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}
	if err := access.CheckLogin(user); err != nil {
		return nil, nil, err
	}

	sess := session.New(user)
	if err := s.sessions.Set(ctx, sess, SessionTTL); err != nil {
		return nil, nil, fmt.Errorf("store session: %w", err)
	}

	pair, err := s.issue(sess.ID, user)
	if err != nil {
		return nil, nil, err
	}
	s.logger.InfoContext(ctx, "user logged in", "user", user.Identifier(), "role", user.Role)
	return pair, user, nil
}

func (s *authService) issue(sessionID string, user *model.User) (*TokenPair, error) {
	accessToken, err := s.jwt.GenerateAccessToken(sessionID, user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refreshToken, err := s.jwt.GenerateRefreshToken(sessionID, user)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(auth.AccessTokenExpiry.Seconds()),
	}, nil
}

// Refresh issues a new access token for a live session. It fails once the
// session was cleared or the user fired.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	sess, err := s.sessions.Get(ctx, claims.SessionID())
	if errors.Is(err, session.ErrNotFound) {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.UserID != claims.UserID {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	user, err := s.reload(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := access.CheckLogin(user); err != nil {
		s.revoke(ctx, sess)
		return nil, err
	}

	accessToken, err := s.jwt.GenerateAccessToken(sess.ID, user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(auth.AccessTokenExpiry.Seconds()),
	}, nil
}

// Logout clears the session the refresh token belongs to.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return apperrors.ErrInvalidRefreshToken
	}
	return s.sessions.Clear(ctx, claims.SessionID())
}

func (s *authService) Authorize(ctx context.Context, sessionID string, role model.Role) (*session.Session, error) {
	if sessionID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, apperrors.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	user, err := s.reload(ctx, sess)
	if err != nil {
		return nil, err
	}
	sess.Refresh(user)
	if role == "" {
		role = sess.Role
	}

	if err := access.Check(sess, role); err != nil {
		if errors.Is(err, apperrors.ErrAccountDeactivated) {
			s.revoke(ctx, sess)
		}
		return nil, err
	}
	return sess, nil
}

// reload fetches the session's user, clearing the session if the user is gone.
func (s *authService) reload(ctx context.Context, sess *session.Session) (*model.User, error) {
	user, err := s.users.FindByID(ctx, sess.UserID)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.revoke(ctx, sess)
		return nil, apperrors.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	return user, nil
}

func (s *authService) revoke(ctx context.Context, sess *session.Session) {
	if err := s.sessions.Clear(ctx, sess.ID); err != nil {
		s.logger.ErrorContext(ctx, "clear session failed", "session", sess.ID, "error", err)
		return
	}
	s.logger.InfoContext(ctx, "session revoked", "user", sess.Identifier(), "status", sess.Status)
}

func (s *authService) Profile(ctx context.Context, sess *session.Session) (*Profile, error) {
	user, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	profile := &Profile{User: user}
	if user.ShopID != nil {
		shop, err := s.shops.FindByID(ctx, *user.ShopID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("find shop: %w", err)
		}
		profile.Shop = shop
	}
	return profile, nil
}
