package dto

import (
	"time"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
)

// UpsertProfileRequest defines the self-service profile fields.
type UpsertProfileRequest struct {
	Name       string `json:"name" binding:"required,max=255"`
	Email      string `json:"email" binding:"required,email"`
	StudentID  string `json:"studentID" binding:"max=64"`
	Department string `json:"department" binding:"max=255"`
}

// SetRoleRequest changes a user's access level.
type SetRoleRequest struct {
	Role domain.UserRole `json:"role" binding:"required,oneof=user admin"`
}

// ListUsersParams defines query parameters for listing users.
type ListUsersParams struct {
	Limit  int `form:"limit,default=20" binding:"min=0,max=200"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

func (p ListUsersParams) Page() domain.Page {
	return domain.Page{Limit: p.Limit, Offset: p.Offset}
}

// UserResponse defines the user data returned by the API.
type UserResponse struct {
	UserID             string                    `json:"userID"`
	Name               string                    `json:"name"`
	Email              string                    `json:"email"`
	StudentID          string                    `json:"studentID"`
	Department         string                    `json:"department"`
	Role               domain.UserRole           `json:"role"`
	VerificationStatus domain.VerificationStatus `json:"verificationStatus"`
	CreatedAt          time.Time                 `json:"createdAt"`
	LastUpdatedAt      time.Time                 `json:"lastUpdatedAt"`
}

type UserResult struct {
	User     UserResponse `json:"user"`
	Degraded bool         `json:"degraded"`
}

type ListUsersResponse struct {
	Users    []UserResponse `json:"users"`
	Degraded bool           `json:"degraded"`
}

func ToUserResponse(u domain.User) UserResponse {
	return UserResponse{
		UserID:             u.UserID,
		Name:               u.Name,
		Email:              u.Email,
		StudentID:          u.StudentID,
		Department:         u.Department,
		Role:               u.Role,
		VerificationStatus: u.VerificationStatus,
		CreatedAt:          u.CreatedAt,
		LastUpdatedAt:      u.LastUpdatedAt,
	}
}

func ToUserResult(o *domain.UserOutcome) UserResult {
	return UserResult{User: ToUserResponse(o.User), Degraded: o.Degraded}
}

func ToListUsersResponse(l *domain.UserList) ListUsersResponse {
	res := ListUsersResponse{Users: make([]UserResponse, len(l.Users)), Degraded: l.Degraded}
	for i, u := range l.Users {
		res.Users[i] = ToUserResponse(u)
	}
	return res
}
