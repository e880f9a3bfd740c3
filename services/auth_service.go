package services

import (
	"fmt"

	"rtchat/auth"
	"rtchat/config"
	"rtchat/errs"
	"rtchat/models"
	"rtchat/repository"
)

type AuthService struct {
	users repository.UserRepository
	cfg   *config.Config
}

func NewAuthService(users repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{users: users, cfg: cfg}
}

// Signup registers a new user and issues its first credential.
func (s *AuthService) Signup(email, password string) (string, *models.User, error) {
	if err := auth.ValidateSignup(auth.SignupRequest{Email: email, Password: password}); err != nil {
		return "", nil, err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(email, hashed)
	if err != nil {
		return "", nil, err
	}

	token, err := auth.IssueToken(s.cfg.JWTSecret, user.ID, user.Email, s.cfg.TokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

// Login checks credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(email, password string) (string, *models.User, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		return "", nil, errs.ErrUnauthorized
	}
	if user.PasswordHash == "" || !auth.CheckPassword(password, user.PasswordHash) {
		return "", nil, errs.ErrUnauthorized
	}

	token, err := auth.IssueToken(s.cfg.JWTSecret, user.ID, user.Email, s.cfg.TokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

// VerifyToken resolves a bearer credential to a verified identity.
func (s *AuthService) VerifyToken(token string) (auth.Identity, error) {
	return auth.VerifyToken(s.cfg.JWTSecret, token)
}

func (s *AuthService) UpdatePushToken(userID, token string) (*models.User, error) {
	return s.users.UpdatePushToken(userID, token)
}
