package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/auth"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

// LoginInput is the body of a token login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult bundles the signed-in user with the token issued for them.
type AuthResult struct {
	User  *model.User
	Token string
}

// AuthService issues and revokes access tokens.
//
//	AuthHandler (HTTP) → AuthService → UserRepository (DB)
//	                               ↘ TokenService (JWT), PasswordService (bcrypt)
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// Login checks email and password and issues a token. Unknown email and
// wrong password produce the same validation error so the response does not
// reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	invalid := apperror.ValidationFailed("", "unable to log in with the provided credentials")

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}
	if user.PasswordHash == "" {
		return nil, invalid
	}
	if err := s.passwords.Verify(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, invalid
		}
		return nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}

	return s.issue(user, "password")
}

// Logout revokes the token for the rest of its lifetime.
func (s *AuthService) Logout(tokenStr string) error {
	if err := s.tokens.Revoke(tokenStr); err != nil {
		return apperror.Unauthorized("invalid token")
	}
	return nil
}

// LoginOrRegisterGitHub links a GitHub identity to a local account, creating
// one on first sign-in. The GitHub login becomes the username; if a local
// user already holds that name, the GitHub id is appended.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	githubID := ghUser.ID
	email := ghUser.Email
	if email == "" {
		email = fmt.Sprintf("%d+%s@users.noreply.github.com", ghUser.ID, ghUser.Login)
	}
	user := &model.User{
		Email:     email,
		Username:  ghUser.Login,
		FirstName: ghUser.Name,
		GitHubID:  &githubID,
	}

	err := s.users.UpsertGitHubUser(ctx, user)
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && errors.Is(err, apperror.ErrConflict) && appErr.Field == "username" {
		user.Username = fmt.Sprintf("%s_%d", ghUser.Login, ghUser.ID)
		err = s.users.UpsertGitHubUser(ctx, user)
	}
	if err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	return s.issue(user, "github")
}

// UserIDFromToken validates a token and returns the user id it carries.
func (s *AuthService) UserIDFromToken(tokenStr string) (int64, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return 0, fmt.Errorf("service/auth: %w", err)
	}
	return userID, nil
}

func (s *AuthService) issue(user *model.User, method string) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}

	s.logger.Info("user authenticated",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
		slog.String("method", method),
	)
	return &AuthResult{User: user, Token: token}, nil
}
