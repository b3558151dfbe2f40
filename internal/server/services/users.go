// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, and issuing/verifying
// signed access tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/finmetrics/portfolio-api/internal/common"
	"github.com/finmetrics/portfolio-api/internal/dbx"
	"github.com/finmetrics/portfolio-api/internal/server/auth"
	"github.com/finmetrics/portfolio-api/internal/server/config"
	"github.com/finmetrics/portfolio-api/internal/server/models"
	"github.com/finmetrics/portfolio-api/internal/server/repositories/repomanager"
)

var (
	// usernameRe also keeps the token payload delimiter '|' out of subjects.
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,}$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	upperRe = regexp.MustCompile(`[A-Z]`)
	lowerRe = regexp.MustCompile(`[a-z]`)
	digitRe = regexp.MustCompile(`\d`)
)

// LoginResult bundles the signed access token and the user's role names.
type LoginResult struct {
	Token string
	Roles []string
}

// Profile is the user view returned to authenticated callers.
type Profile struct {
	ID       int64
	UserName string
	Email    string
	Roles    []string
}

// UserService provides authentication-related operations:
// - Register: create accounts with the default role
// - Login: verify credentials and mint a token
// - VerifyToken: resolve a presented token to its subject
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	secretKey             []byte
	tokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		secretKey:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// Register creates a new user with the given username, email, and password
// and maps it to the default viewer role in one transaction.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, internalError("hash password", err)
	}

	var user *models.User
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		created, err := repo.Create(ctx, &models.User{UserName: username, Email: email, PasswordHash: hash})
		if err != nil {
			return err
		}
		if err := repo.AssignRole(ctx, created.ID, models.RoleViewer); err != nil {
			return err
		}
		user = created
		return nil
	}); err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		return nil, internalError("register user", err)
	}

	return user, nil
}

// Login verifies the provided password against the stored hash and, on
// success, returns a fresh token and the user's roles. An unknown username
// and a wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, internalError("login", err)
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	roles, err := repo.FindRoles(ctx, user.ID)
	if err != nil {
		return nil, internalError("login", err)
	}

	token := auth.GenerateToken(user.UserName, s.secretKey, s.tokenValidityDuration)

	return &LoginResult{Token: token, Roles: roles}, nil
}

// VerifyToken resolves a token to the username it asserts. It performs no
// existence check; handlers that need user attributes re-load the record.
func (s *UserService) VerifyToken(tokenString string) (string, error) {
	return auth.GetUserFromToken(tokenString, s.secretKey)
}

// GetProfile loads the account and role set for the given username.
func (s *UserService) GetProfile(ctx context.Context, username string) (*Profile, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, internalError("get profile", err)
	}

	roles, err := repo.FindRoles(ctx, user.ID)
	if err != nil {
		return nil, internalError("get profile", err)
	}

	return &Profile{ID: user.ID, UserName: user.UserName, Email: user.Email, Roles: roles}, nil
}

// Roles returns the role names held by the given user.
func (s *UserService) Roles(ctx context.Context, username string) ([]string, error) {
	profile, err := s.GetProfile(ctx, username)
	if err != nil {
		return nil, err
	}
	return profile.Roles, nil
}

// ListUsers returns all accounts with their role sets.
func (s *UserService) ListUsers(ctx context.Context) ([]*Profile, error) {
	repo := s.repomanager.Users(s.db)

	users, err := repo.List(ctx)
	if err != nil {
		return nil, internalError("list users", err)
	}

	profiles := make([]*Profile, 0, len(users))
	for _, u := range users {
		roles, err := repo.FindRoles(ctx, u.ID)
		if err != nil {
			return nil, internalError("list users", err)
		}
		profiles = append(profiles, &Profile{ID: u.ID, UserName: u.UserName, Email: u.Email, Roles: roles})
	}

	return profiles, nil
}

// DeleteUser removes an account by id.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	repo := s.repomanager.Users(s.db)

	err := repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return internalError("delete user", err)
	}

	return nil
}

func validateRegistration(username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return fmt.Errorf("%w: username, email, and password are required", common.ErrorValidation)
	}
	if !usernameRe.MatchString(username) {
		return fmt.Errorf("%w: username must be at least 3 characters of letters, numbers, and underscores", common.ErrorValidation)
	}
	if !emailRe.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", common.ErrorValidation)
	}
	if !validPassword(password) {
		return fmt.Errorf("%w: password must be at least 8 characters with uppercase, lowercase, and number", common.ErrorValidation)
	}
	return nil
}

func validPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	return upperRe.MatchString(password) && lowerRe.MatchString(password) && digitRe.MatchString(password)
}
