// Package account wraps the auth service endpoints: credentials, email
// verification, password recovery, and the profile lookup that completes a
// login.
package account

import (
	"context"
	"fmt"
	"log/slog"

	"clipo/internal/api"
	"clipo/internal/logging"
	"clipo/internal/session"
)

// Service calls the auth endpoints through the shared API client.
type Service struct {
	client *api.Client
	logger *slog.Logger
}

// NewService constructs an account service.
func NewService(client *api.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		client: client,
		logger: logging.NewComponentLogger(logger, "account"),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Login exchanges credentials for a token pair, persists it, and loads the
// profile so the session becomes authenticated. A 401 here is reported as a
// credential error, never as an expired session.
func (s *Service) Login(ctx context.Context, email, password string) (*session.User, error) {
	var tokens tokenResponse
	err := s.client.PostJSON(api.WithoutRefresh(ctx), s.client.AuthURL("/auth/login"),
		loginRequest{Email: email, Password: password}, &tokens)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("login: response missing access token")
	}
	if err := s.client.Sessions().SetTokens(tokens.AccessToken, tokens.RefreshToken); err != nil {
		return nil, fmt.Errorf("store tokens: %w", err)
	}

	user, err := s.Me(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("logged in", logging.String("email", user.Email))
	return user, nil
}

// Register creates a new account. The service sends a verification email;
// the account stays unusable until it is confirmed.
func (s *Service) Register(ctx context.Context, email, password string) error {
	err := s.client.PostJSON(api.WithoutRefresh(ctx), s.client.AuthURL("/auth/register"),
		loginRequest{Email: email, Password: password}, nil)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// VerifyEmail confirms an account with the token from the verification email.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	err := s.client.PostJSON(api.WithoutRefresh(ctx), s.client.AuthURL("/auth/verify-email"),
		map[string]string{"token": token}, nil)
	if err != nil {
		return fmt.Errorf("verify email: %w", err)
	}
	return nil
}

// ResendVerification asks for a fresh verification email.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	err := s.client.PostJSON(api.WithoutRefresh(ctx), s.client.AuthURL("/auth/resend-verification"),
		map[string]string{"email": email}, nil)
	if err != nil {
		return fmt.Errorf("resend verification: %w", err)
	}
	return nil
}

// ForgotPassword starts password recovery for the given address.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	err := s.client.PostJSON(api.WithoutRefresh(ctx), s.client.AuthURL("/auth/forgot-password"),
		map[string]string{"email": email}, nil)
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	return nil
}

// ResetPassword completes password recovery with the emailed token.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	err := s.client.PostJSON(api.WithoutRefresh(ctx), s.client.AuthURL("/auth/reset-password"),
		map[string]string{"token": token, "new_password": newPassword}, nil)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

// Me fetches the current profile and stores it in the session.
func (s *Service) Me(ctx context.Context) (*session.User, error) {
	var user session.User
	if err := s.client.GetJSON(ctx, s.client.AuthURL("/auth/me"), &user); err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if err := s.client.Sessions().SetUser(user); err != nil {
		return nil, fmt.Errorf("store profile: %w", err)
	}
	return &user, nil
}

// Logout clears the local session. Tokens are stateless on the service side,
// so there is nothing to revoke remotely.
func (s *Service) Logout() error {
	if err := s.client.Sessions().Logout(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.Info("logged out")
	return nil
}
