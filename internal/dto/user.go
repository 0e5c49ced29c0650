package dto

// UserListRequest user list query.
type UserListRequest struct {
	PaginationRequest
}

// UserResponse is a user without credentials.
type UserResponse struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	LastLoginAt *string `json:"last_login_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}
