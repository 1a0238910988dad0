package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"kintree/internal/email"
	"kintree/internal/model"
	"kintree/internal/repository"
	"kintree/internal/util"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email address is not verified")
	ErrEmailTaken         = errors.New("email address is already registered")
	ErrInvalidActivation  = errors.New("invalid activation code")
)

type AuthService struct {
	repo    repository.Repository
	mail    email.Sender
	limiter *RateLimiter
	logger  *slog.Logger
}

func NewAuthService(repo repository.Repository, mail email.Sender, limiter *RateLimiter, logger *slog.Logger) *AuthService {
	return &AuthService{
		repo:    repo,
		mail:    mail,
		limiter: limiter,
		logger:  logger.With("component", "auth"),
	}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=128,password_strength"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (model.User, error) {
	emailAddr := strings.TrimSpace(strings.ToLower(req.Email))

	if err := s.limiter.CheckRegister(ctx, emailAddr); err != nil {
		return model.User{}, err
	}

	if _, err := s.repo.GetUserByEmail(ctx, emailAddr); err == nil {
		return model.User{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return model.User{}, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        emailAddr,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	code, err := util.RandomString(24)
	if err != nil {
		return model.User{}, fmt.Errorf("generate activation code: %w", err)
	}
	reg := model.UserRegistration{ID: uuid.New(), UserID: user.ID, ActivationCode: code}
	if err := s.repo.CreateUserRegistration(ctx, reg); err != nil {
		return model.User{}, fmt.Errorf("create registration: %w", err)
	}

	if err := s.mail.SendVerification(ctx, user.Email, code); err != nil {
		// Registration stands; the user can request a new code.
		s.logger.Error("failed to send verification email", "user_id", user.ID, "error", err)
	}

	return user, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, userID uuid.UUID, code string) error {
	reg, err := s.repo.GetUserRegistrationByUserID(ctx, userID)
	if err != nil {
		return ErrInvalidActivation
	}
	if reg.ActivationCode != code {
		return ErrInvalidActivation
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	user.EmailVerified = true
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return s.repo.DeleteUserRegistration(ctx, reg.ID)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (model.User, error) {
	emailAddr := strings.TrimSpace(strings.ToLower(req.Email))

	if err := s.limiter.CheckLogin(ctx, emailAddr); err != nil {
		return model.User{}, err
	}

	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Same answer as a wrong password, to block enumeration.
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.User{}, ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return model.User{}, ErrEmailNotVerified
	}

	return user, nil
}
