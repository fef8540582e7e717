package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"woms/internal/middleware"
	"woms/internal/model"
	"woms/internal/repository"
	"woms/internal/storage"
	"woms/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// pngMagic is the fixed 8-byte PNG file header.
var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// --- DTOs ---

type RegisterDTO struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type ProfileResponse struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	IsRoleConfirmed bool   `json:"is_role_confirmed"`
	HasSignature    bool   `json:"has_signature"`
}

// --- Interface ---

// AuthService handles account registration, credential exchange and the
// signature image every approver must have on file.
type AuthService interface {
	Register(ctx context.Context, req RegisterDTO) (ProfileResponse, error)
	Login(ctx context.Context, req LoginDTO) (TokenPair, ProfileResponse, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID string) (ProfileResponse, error)
	UploadSignature(ctx context.Context, userID string, image []byte) error
}

type authService struct {
	db       *gorm.DB
	users    repository.UserRepository
	store    storage.Store
	notifier Notifier
}

func NewAuthService(db *gorm.DB, users repository.UserRepository, store storage.Store, notifier Notifier) AuthService {
	return &authService{db: db, users: users, store: store, notifier: notifier}
}

// --- Implementation ---

func (s *authService) Register(ctx context.Context, req RegisterDTO) (ProfileResponse, error) {
	role := req.Role
	if role == "" {
		role = model.RoleEmployee
	}
	if !model.ValidRole(role) {
		return ProfileResponse{}, apperror.New(apperror.Validation, "unknown role %q", role)
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return ProfileResponse{}, apperror.New(apperror.Validation, "email is already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return ProfileResponse{}, fmt.Errorf("failed to check email: %w", err)
	}
	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return ProfileResponse{}, apperror.New(apperror.Validation, "username is already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return ProfileResponse{}, fmt.Errorf("failed to check username: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return ProfileResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
		Role:     role,
		// Plain employees are usable immediately; every elevated role waits
		// for a warehouse admin to confirm it.
		IsRoleConfirmed: role == model.RoleEmployee,
		RoleRequestedAt: now,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return ProfileResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	if user.IsRoleConfirmed {
		s.notifier.Notify(ctx, user.ID, "Welcome! Your account is ready to use.")
	} else {
		s.notifier.Notify(ctx, user.ID,
			fmt.Sprintf("Your registration as %s is pending admin approval.", role))
		admins, listErr := s.users.ListConfirmedByRole(ctx, model.RoleWarehouseAdmin)
		if listErr != nil {
			logrus.WithError(listErr).Warn("failed to list admins for registration notification")
		} else {
			s.notifier.NotifyAll(ctx, admins,
				fmt.Sprintf("%s registered and requests the %s role.", user.Username, role))
		}
	}

	return toProfile(&user), nil
}

func (s *authService) Login(ctx context.Context, req LoginDTO) (TokenPair, ProfileResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPair{}, ProfileResponse{}, apperror.New(apperror.Unauthorized, "invalid email or password")
		}
		return TokenPair{}, ProfileResponse{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return TokenPair{}, ProfileResponse{}, apperror.New(apperror.Unauthorized, "invalid email or password")
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return TokenPair{}, ProfileResponse{}, err
	}
	return pair, toProfile(user), nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	var stored model.RefreshToken
	if err := s.db.WithContext(ctx).First(&stored, "token = ?", refreshToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPair{}, apperror.New(apperror.Unauthorized, "invalid refresh token")
		}
		return TokenPair{}, err
	}
	if time.Now().After(stored.ExpiresAt) {
		s.db.WithContext(ctx).Delete(&stored)
		return TokenPair{}, apperror.New(apperror.Unauthorized, "refresh token expired")
	}

	user, err := s.users.GetByID(ctx, stored.UserID.String())
	if err != nil {
		return TokenPair{}, notFoundOr(err, "user not found")
	}

	// Rotate: the presented token is single-use.
	if err := s.db.WithContext(ctx).Delete(&stored).Error; err != nil {
		return TokenPair{}, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return s.issueTokens(ctx, user)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("token = ?", refreshToken).
		Delete(&model.RefreshToken{}).Error
}

func (s *authService) Me(ctx context.Context, userID string) (ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ProfileResponse{}, notFoundOr(err, "user not found")
	}
	return toProfile(user), nil
}

func (s *authService) UploadSignature(ctx context.Context, userID string, image []byte) error {
	if len(image) < len(pngMagic) || !bytes.HasPrefix(image, pngMagic) {
		return apperror.New(apperror.Validation, "signature must be a PNG image")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "user not found")
	}

	key := fmt.Sprintf("%s/%s.png", storage.SignatureDir, user.ID)
	if err := s.store.Save(key, image); err != nil {
		return fmt.Errorf("failed to store signature: %w", err)
	}

	user.SignaturePath = key
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to record signature path: %w", err)
	}
	return nil
}

// --- Helpers ---

func (s *authService) issueTokens(ctx context.Context, user *model.User) (TokenPair, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":               user.ID.String(),
		"role":              user.Role,
		"is_role_confirmed": user.IsRoleConfirmed,
		"iat":               now.Unix(),
		"exp":               now.Add(accessTokenTTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(middleware.GetJWTSecret())
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh := uuid.NewString()
	record := model.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: now.Add(refreshTokenTTL),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return TokenPair{}, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func toProfile(user *model.User) ProfileResponse {
	return ProfileResponse{
		ID:              user.ID.String(),
		Username:        user.Username,
		Email:           user.Email,
		Role:            user.Role,
		IsRoleConfirmed: user.IsRoleConfirmed,
		HasSignature:    user.SignaturePath != "",
	}
}
