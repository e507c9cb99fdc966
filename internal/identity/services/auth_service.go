package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/clipbook/backend/internal/apperr"
	"github.com/clipbook/backend/internal/config"
	"github.com/clipbook/backend/internal/dto"
	"github.com/clipbook/backend/internal/identity/models"
	"github.com/clipbook/backend/internal/notify"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db          *gorm.DB
	cfg         *config.Config
	notifier    notify.Notifier
	provisioner *Provisioner
}

func NewAuthService(db *gorm.DB, cfg *config.Config, notifier notify.Notifier, provisioner *Provisioner) *AuthService {
	return &AuthService{db: db, cfg: cfg, notifier: notifier, provisioner: provisioner}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if len(req.Email) == 0 || len(req.Password) < 8 {
		return nil, apperr.Validationf("email required and password must be at least 8 characters")
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, apperr.Conflictf("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	token := uuid.NewString()
	expiry := time.Now().Add(24 * time.Hour)
	user := models.User{
		ID:                      uuid.New(),
		Email:                   req.Email,
		Password:                string(hash),
		FullName:                req.FullName,
		Phone:                   req.Phone,
		Role:                    models.RoleCustomer,
		VerificationToken:       &token,
		VerificationTokenExpiry: &expiry,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.sendBestEffort(ctx, &user, "identity.welcome", "Welcome to Clipbook",
		"Hi "+user.FullName+", your account is ready.")
	s.sendBestEffort(ctx, &user, "identity.verify_email", "Verify your email",
		"Your verification token: "+token)

	return s.tokenPair(ctx, &user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		return nil, apperr.Authorizationf("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Authorizationf("invalid email or password")
	}

	return s.tokenPair(ctx, &user)
}

func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.WithContext(ctx).Where("token_hash = ? AND revoked = false", tokenHash).First(&stored).Error; err != nil {
		return nil, apperr.Authorizationf("invalid or expired refresh token")
	}

	if time.Now().After(stored.ExpiresAt) {
		s.db.WithContext(ctx).Model(&stored).Update("revoked", true)
		return nil, apperr.Authorizationf("invalid or expired refresh token")
	}

	s.db.WithContext(ctx).Model(&stored).Update("revoked", true)

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	return s.tokenPair(ctx, &user)
}

func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	tokenHash := hashToken(req.RefreshToken)
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return apperr.Validationf("verification token is required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("verification_token = ?", token).First(&user).Error; err != nil {
		return apperr.Validationf("invalid verification token")
	}

	if user.VerificationTokenExpiry == nil || user.VerificationTokenExpiry.Before(time.Now()) {
		return apperr.Validationf("verification token expired")
	}

	return s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"email_verified":            true,
		"verification_token":        nil,
		"verification_token_expiry": nil,
	}).Error
}

func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return apperr.NotFoundf("user not found")
	}

	if user.EmailVerified {
		return apperr.Conflictf("email already verified")
	}

	token := uuid.NewString()
	expiry := time.Now().Add(24 * time.Hour)
	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"verification_token":        token,
		"verification_token_expiry": expiry,
	}).Error; err != nil {
		return err
	}

	s.sendBestEffort(ctx, &user, "identity.verify_email", "Verify your email",
		"Your verification token: "+token)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if len(req.NewPassword) < 8 {
		return apperr.Validationf("password must be at least 8 characters")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		return apperr.NotFoundf("user not found")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.db.WithContext(ctx).Model(&user).Update("password", string(hash)).Error
}

// CreateProvider creates a provider-eligible identity and, strictly after
// the insert has committed, hands the provisioning intent to the producer.
// Provisioning failures never surface here; the two operations are
// decoupled by design.
func (s *AuthService) CreateProvider(ctx context.Context, req *dto.CreateProviderRequest) (*dto.UserResponse, error) {
	if len(req.Email) == 0 || len(req.Password) < 8 {
		return nil, apperr.Validationf("email required and password must be at least 8 characters")
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, apperr.Conflictf("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:       uuid.New(),
		Email:    req.Email,
		Password: string(hash),
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     models.RoleProvider,
		// Admin-created, so no verification round-trip.
		EmailVerified: true,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create provider identity: %w", err)
	}

	// Post-commit hook: Create ran in its own transaction, which has
	// committed by the time it returns.
	s.provisioner.ProviderCreated(ProviderCreatedEvent{
		IdentityID:  user.ID,
		Bio:         req.Bio,
		Specialties: req.Specialties,
	})

	s.sendBestEffort(ctx, &user, "identity.welcome", "Welcome to Clipbook",
		"Hi "+user.FullName+", your provider account is ready.")

	return &dto.UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		FullName:      user.FullName,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
	}, nil
}

// GetIdentity serves the cross-service read used by the scheduling service.
func (s *AuthService) GetIdentity(ctx context.Context, id uuid.UUID) (*dto.IdentityResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, apperr.NotFoundf("identity not found")
	}
	return &dto.IdentityResponse{ID: user.ID, Email: user.Email, FullName: user.FullName}, nil
}

func (s *AuthService) sendBestEffort(ctx context.Context, user *models.User, key, subject, body string) {
	if err := s.notifier.Notify(ctx, user.ID.String(), key, subject, body); err != nil {
		slog.Warn("notification delivery failed",
			"recipient", user.ID, "key", key, "subject", subject, "error", err)
	}
}

func (s *AuthService) tokenPair(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.accessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.refreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserResponse{
			ID:            user.ID,
			Email:         user.Email,
			FullName:      user.FullName,
			Role:          user.Role,
			EmailVerified: user.EmailVerified,
		},
	}, nil
}

func (s *AuthService) accessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) refreshToken(ctx context.Context, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
