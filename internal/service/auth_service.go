package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"antgiftbox/internal/models"
	"antgiftbox/internal/repository"
	"antgiftbox/internal/security"
	"antgiftbox/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo        *repository.UserRepository
	parentRepo      *repository.ParentRepository
	emailService    Mailer
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, parentRepo *repository.ParentRepository, emailService Mailer, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		parentRepo:      parentRepo,
		emailService:    emailService,
		sessionDuration: sessionDuration,
	}
}

// Register creates a new parent account with its parent profile
func (s *AuthService) Register(email, password, displayName string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validation.Email(email); err != nil {
		return nil, err
	}
	if err := validation.Password(password); err != nil {
		return nil, err
	}
	if err := validation.DisplayName(displayName); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		UID:          security.GenerateUID(),
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		Role:         "PARENT",
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.createParentProfile(user); err != nil {
		return nil, err
	}

	s.notifyWelcome(user)
	return user, nil
}

// notifyWelcome sends the welcome email off the request path. Email
// failures are logged and never fail registration.
func (s *AuthService) notifyWelcome(user *models.User) {
	if s.emailService == nil || !s.emailService.IsEnabled() {
		return
	}
	email, name := user.Email, user.DisplayName
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.emailService.SendWelcomeEmail(ctx, email, name); err != nil {
			log.Printf("Failed to send welcome email: %v", err)
		}
	}()
}

// Login authenticates a parent and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// SocialLogin authenticates or registers a parent from a verified social
// identity. The provider has already verified the email.
func (s *AuthService) SocialLogin(provider, email, displayName string) (*models.Session, *models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validation.Email(email); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		if displayName == "" {
			displayName = strings.Split(email, "@")[0]
		}
		// Social accounts never log in with a password; store an
		// unguessable hash so the column is never empty.
		passwordHash, err := security.HashPassword(security.GenerateSessionToken())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user = &models.User{
			UID:          security.GenerateUID(),
			Email:        email,
			PasswordHash: passwordHash,
			DisplayName:  displayName,
			Provider:     provider,
			Role:         "PARENT",
		}
		if err := s.userRepo.CreateUser(user); err != nil {
			return nil, nil, fmt.Errorf("failed to create user: %w", err)
		}
		if err := s.createParentProfile(user); err != nil {
			return nil, nil, err
		}
	}

	session, err := s.createSession(user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (s *AuthService) createParentProfile(user *models.User) error {
	parent := &models.Parent{
		UID:         user.UID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
	}
	if err := s.parentRepo.CreateParent(parent); err != nil {
		return fmt.Errorf("failed to create parent profile: %w", err)
	}
	return nil
}

func (s *AuthService) createSession(user *models.User) (*models.Session, error) {
	token := security.GenerateSessionToken()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.userRepo.CreateSession(token, user.UID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := s.userRepo.TouchUser(user.UID); err != nil {
		return nil, fmt.Errorf("failed to touch user: %w", err)
	}
	return session, nil
}

// Logout deletes the session for the given token
func (s *AuthService) Logout(token string) error {
	if err := s.userRepo.DeleteSession(token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ValidateSession resolves a session token to its user, expiring stale
// sessions on the way
func (s *AuthService) ValidateSession(token string) (*models.User, error) {
	session, err := s.userRepo.GetSession(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.IsExpired() {
		if err := s.userRepo.DeleteSession(token); err != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", err)
		}
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}
	return user, nil
}

// FlowStatus returns the routing flags the client uses after login. Flags
// that lag behind reality are healed here: a parent who already owns a
// family group went through the whole flow, whatever the flags say.
func (s *AuthService) FlowStatus(uid string) (*models.UserFlowStatus, error) {
	user, err := s.userRepo.GetUserByID(uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if !user.PhoneVerified || !user.OnboardingCompleted {
		parent, err := s.parentRepo.GetParentByUID(uid)
		if err != nil {
			return nil, fmt.Errorf("failed to get parent: %w", err)
		}
		if parent != nil && parent.GroupID != nil {
			if err := s.userRepo.SetFlowStatus(uid, true, true); err != nil {
				return nil, fmt.Errorf("failed to heal flow status: %w", err)
			}
			return &models.UserFlowStatus{PhoneVerified: true, OnboardingCompleted: true}, nil
		}
	}

	return &models.UserFlowStatus{
		PhoneVerified:       user.PhoneVerified,
		OnboardingCompleted: user.OnboardingCompleted,
	}, nil
}

// MarkPhoneVerified records that phone verification has completed
func (s *AuthService) MarkPhoneVerified(uid string) error {
	if err := s.userRepo.SetPhoneVerified(uid); err != nil {
		return fmt.Errorf("failed to mark phone verified: %w", err)
	}
	return nil
}

// CompleteOnboarding records that onboarding has completed
func (s *AuthService) CompleteOnboarding(uid string) error {
	if err := s.userRepo.SetOnboardingCompleted(uid); err != nil {
		return fmt.Errorf("failed to complete onboarding: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes sessions past their expiry
func (s *AuthService) CleanupExpiredSessions() error {
	return s.userRepo.DeleteExpiredSessions()
}
