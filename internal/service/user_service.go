package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"contenthub/internal/model"
	"contenthub/internal/repository"
	"contenthub/pkg/hash"
	"contenthub/pkg/log"
	"contenthub/pkg/token"
)

// CreateAccountInput is an admin request to open a new account.
type CreateAccountInput struct {
	Name            string     `json:"name" validate:"min=4,max=16"`
	Email           string     `json:"email" validate:"required,email"`
	Password        string     `json:"password" validate:"min=4"`
	ConfirmPassword string     `json:"confirmPassword" validate:"eqfield=Password"`
	Role            model.Role `json:"role" validate:"omitempty,oneof=ADMIN EDITOR USER"`
}

// UpdateProfileInput changes the caller's own email and display name.
type UpdateProfileInput struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"max=16"`
}

// UpdatePasswordInput changes the caller's own password.
type UpdatePasswordInput struct {
	Password        string `json:"password" validate:"min=4"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

// UserService covers authentication and self-service account management.
type UserService interface {
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	Logout(ctx context.Context, tokenString string) error
	RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken, newRefreshToken string, err error)
	GetProfile(ctx context.Context, caller Caller) (*model.User, error)
	CreateAccount(ctx context.Context, caller Caller, in CreateAccountInput) (*model.User, error)
	UpdateProfile(ctx context.Context, caller Caller, in UpdateProfileInput) (*model.User, error)
	UpdatePassword(ctx context.Context, caller Caller, in UpdatePasswordInput) error
	DeleteAccount(ctx context.Context, caller Caller) error
	// EnsureAdmin creates an ADMIN account with email unless one exists.
	EnsureAdmin(ctx context.Context, email, name, password string) error
}

type userService struct {
	userRepo   repository.UserRepository
	blacklist  repository.TokenBlacklist
	jwtManager *token.JWTManager
}

func NewUserService(userRepo repository.UserRepository, blacklist repository.TokenBlacklist, jwtManager *token.JWTManager) UserService {
	return &userService{
		userRepo:   userRepo,
		blacklist:  blacklist,
		jwtManager: jwtManager,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", "", unauthorized("invalid credentials")
		}
		return "", "", storageError("failed to load user", err)
	}
	if !hash.CheckPasswordHash(password, user.Password) {
		return "", "", unauthorized("invalid credentials")
	}
	return s.issueTokens(user)
}

func (s *userService) issueTokens(user *model.User) (accessToken, refreshToken string, err error) {
	accessToken, err = s.jwtManager.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", "", err
	}
	refreshToken, err = s.jwtManager.GenerateRefreshToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// Logout blacklists the token for the rest of its lifetime.
func (s *userService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return unauthorized("invalid token")
	}
	if err := s.blacklist.Revoke(ctx, tokenString, time.Until(claims.ExpiresAt.Time)); err != nil {
		return storageError("failed to revoke token", err)
	}
	return nil
}

// RefreshToken rotates a refresh token: the old one is revoked and a new
// access/refresh pair is issued.
func (s *userService) RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken, newRefreshToken string, err error) {
	claims, err := s.jwtManager.VerifyToken(refreshTokenString)
	if err != nil || !claims.Refresh {
		return "", "", unauthorized("invalid refresh token")
	}
	revoked, err := s.blacklist.IsRevoked(ctx, refreshTokenString)
	if err != nil {
		return "", "", storageError("failed to check token", err)
	}
	if revoked {
		return "", "", unauthorized("invalid refresh token")
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", "", unauthorized("user not found")
		}
		return "", "", storageError("failed to load user", err)
	}

	newAccessToken, newRefreshToken, err = s.issueTokens(user)
	if err != nil {
		return "", "", err
	}
	if err := s.blacklist.Revoke(ctx, refreshTokenString, time.Until(claims.ExpiresAt.Time)); err != nil {
		log.Warnw("failed to revoke rotated refresh token", "userId", user.ID, "error", err)
	}
	return newAccessToken, newRefreshToken, nil
}

func (s *userService) GetProfile(ctx context.Context, caller Caller) (*model.User, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, lookupError("user", err)
	}
	return user, nil
}

// CreateAccount is restricted to admins; there is no public sign-up.
func (s *userService) CreateAccount(ctx context.Context, caller Caller, in CreateAccountInput) (*model.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = model.RoleUser
	}
	return s.createUser(ctx, in.Email, in.Name, in.Password, in.Role)
}

func (s *userService) createUser(ctx context.Context, email, name, password string, role model.Role) (*model.User, error) {
	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, conflict("account with that email address already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storageError("failed to load user", err)
	}

	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:    email,
		Name:     name,
		Password: hashedPassword,
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("account with that email address already exists")
		}
		return nil, storageError("failed to create user", err)
	}
	log.Infow("account created", "userId", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, caller Caller, in UpdateProfileInput) (*model.User, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, lookupError("user", err)
	}

	user.Email = in.Email
	user.Name = in.Name
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("the email address is already associated with an account")
		}
		return nil, storageError("failed to update user", err)
	}
	return user, nil
}

func (s *userService) UpdatePassword(ctx context.Context, caller Caller, in UpdatePasswordInput) error {
	if err := requireAuthenticated(caller); err != nil {
		return err
	}
	if err := validateStruct(in); err != nil {
		return err
	}
	user, err := s.userRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		return lookupError("user", err)
	}

	hashedPassword, err := hash.HashPassword(in.Password)
	if err != nil {
		return err
	}
	user.Password = hashedPassword
	if err := s.userRepo.Update(ctx, user); err != nil {
		return storageError("failed to update password", err)
	}
	return nil
}

func (s *userService) DeleteAccount(ctx context.Context, caller Caller) error {
	if err := requireAuthenticated(caller); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, caller.UserID); err != nil {
		return lookupError("user", err)
	}
	log.Infow("account deleted", "userId", caller.UserID)
	return nil
}

func (s *userService) EnsureAdmin(ctx context.Context, email, name, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	_, err := s.createUser(ctx, email, name, password, model.RoleAdmin)
	if errors.Is(err, ErrConflict) {
		return nil
	}
	return err
}
