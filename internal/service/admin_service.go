package service

import (
	"context"

	"contenthub/internal/model"
	"contenthub/internal/repository"
	"contenthub/pkg/log"
)

// UserListResponse is one page of the admin user listing.
type UserListResponse struct {
	Content       []UserDetailResponse `json:"content"`
	TotalElements int64                `json:"totalElements"`
	TotalPages    int                  `json:"totalPages"`
	Size          int                  `json:"size"`
	Number        int                  `json:"number"`
}

// UserDetailResponse is one row of the user listing.
type UserDetailResponse struct {
	UserID    uint            `json:"userId"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Role      model.Role      `json:"role"`
	CreatedAt model.LocalTime `json:"createdAt"`
}

// AdminService holds the account administration operations.
type AdminService interface {
	ListUsers(ctx context.Context, caller Caller, page, size int) (*UserListResponse, error)
	SetRole(ctx context.Context, caller Caller, userID uint, role model.Role) (*model.User, error)
}

type adminService struct {
	userRepo repository.UserRepository
}

func NewAdminService(userRepo repository.UserRepository) AdminService {
	return &adminService{userRepo: userRepo}
}

// ListUsers pages through accounts. page starts at 1.
func (s *adminService) ListUsers(ctx context.Context, caller Caller, page, size int) (*UserListResponse, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if size < 1 || size > defaultMaxLimit {
		size = 20
	}

	offset := (page - 1) * size
	users, total, err := s.userRepo.FindWithPagination(ctx, offset, size)
	if err != nil {
		return nil, storageError("failed to list users", err)
	}

	userResponses := make([]UserDetailResponse, 0, len(users))
	for _, u := range users {
		userResponses = append(userResponses, UserDetailResponse{
			UserID:    u.ID,
			Email:     u.Email,
			Name:      u.Name,
			Role:      u.Role,
			CreatedAt: model.LocalTime(u.CreatedAt),
		})
	}

	totalPages := 0
	if total > 0 {
		totalPages = (int(total) + size - 1) / size
	}

	return &UserListResponse{
		Content:       userResponses,
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          size,
		Number:        page,
	}, nil
}

func (s *adminService) SetRole(ctx context.Context, caller Caller, userID uint, role model.Role) (*model.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, invalidInput("validation failed", FieldError{Field: "role", Message: "must be one of ADMIN EDITOR USER"})
	}
	if userID == caller.UserID && role != model.RoleAdmin {
		return nil, forbidden("admins cannot demote themselves")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupError("user", err)
	}
	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, storageError("failed to update user", err)
	}
	log.Infow("role changed", "userId", userID, "role", role, "by", caller.UserID)
	return user, nil
}
