package dto

// UserBasicResponse represents minimal user information embedded in other payloads
type UserBasicResponse struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	Role        string  `json:"role"`
	Branch      *string `json:"branch,omitempty"`
}

// LoginRequest represents credentials for obtaining a token
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued access token and the authenticated user
type LoginResponse struct {
	AccessToken string            `json:"accessToken"`
	User        UserBasicResponse `json:"user"`
}
