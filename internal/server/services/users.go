// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, and issuing/refreshing JWTs
// plus server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkaranov/brospace/internal/common"
	"github.com/mkaranov/brospace/internal/dbx"
	"github.com/mkaranov/brospace/internal/logging"
	"github.com/mkaranov/brospace/internal/server/auth"
	"github.com/mkaranov/brospace/internal/server/config"
	"github.com/mkaranov/brospace/internal/server/models"
	"github.com/mkaranov/brospace/internal/server/password"
	"github.com/mkaranov/brospace/internal/server/repositories/repomanager"
)

const minPasswordLength = 8

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService provides authentication-related operations:
//   - Register: create accounts and kick off profile provisioning
//   - Login: verify credentials and mint tokens
//   - RefreshToken: rotate refresh tokens and mint new access tokens
//   - Logout: revoke a refresh token
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	profiles                     *ProfileService
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	profileProvisionDelay        time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, ps *ProfileService, l logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		profiles:                     ps,
		logger:                       l.With("module", "users"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		profileProvisionDelay:        cfg.ProfileProvisionDelay,
	}
}

// Register creates a new account. The password is argon2id-hashed, the
// account is confirmed immediately, and profile provisioning is scheduled
// in the background after ProfileProvisionDelay. The register response does
// not wait for the profile row to exist; clients tolerate that window.
func (s *UserService) Register(ctx context.Context, email, plainPassword, username string) (*models.User, error) {
	if len(plainPassword) < minPasswordLength {
		return nil, common.ErrWeakPassword
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, fmt.Errorf("password hash error: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:               uuid.NewString(),
		Email:            email,
		Username:         username,
		PasswordHash:     hash,
		EmailConfirmedAt: &now,
	}

	repo := s.repomanager.Users(s.db)
	created, err := repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.scheduleProfileProvisioning(created.ID, created.Username)

	return created, nil
}

// scheduleProfileProvisioning runs the profile-creation job the way a
// database trigger would: detached from the request, after a short delay.
func (s *UserService) scheduleProfileProvisioning(userID, username string) {
	time.AfterFunc(s.profileProvisionDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if _, err := s.profiles.Ensure(ctx, userID, &username); err != nil {
			s.logger.Error(ctx, "profile provisioning failed", "user_id", userID, "error", err.Error())
			return
		}
		s.logger.Info(ctx, "profile provisioned", "user_id", userID)
	})
}

// Login verifies the email/password pair and, on success, returns a new
// TokenPair. Unknown accounts and wrong passwords are indistinguishable to
// the caller (both yield common.ErrUnauthorized).
func (s *UserService) Login(ctx context.Context, email, plainPassword string) (*models.User, *TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrUnauthorized
		}
		return nil, nil, common.ErrInternal
	}

	ok, err := password.Verify(plainPassword, user.PasswordHash)
	if err != nil || !ok {
		return nil, nil, common.ErrUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes the given refresh token. Revoking an already-absent token
// is not an error; sign-out must be idempotent.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	repo := s.repomanager.RefreshTokens(s.db)
	return repo.Delete(ctx, refreshToken)
}

// VerifyAccessToken returns the user ID carried by a valid access token.
func (s *UserService) VerifyAccessToken(tokenString string) (string, error) {
	return auth.GetUserIDFromToken(tokenString, s.jwtSecret)
}

// --- helpers below ---

func (s *UserService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
