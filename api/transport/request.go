package transport

import "github.com/fastygo/taskhub/domain"

type CredentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest carries no validation tags: every login failure, missing
// fields included, is reported as invalid credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TaskCreateRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// TaskUpdateRequest replaces the editable fields. An empty status means pending.
type TaskUpdateRequest struct {
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description"`
	Status      domain.TaskStatus `json:"status" validate:"omitempty,oneof=pending done"`
}
