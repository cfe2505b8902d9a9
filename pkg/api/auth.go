package api

// LoginURLResponse is the body of GET /api/v1/auth/kakao/login
type LoginURLResponse struct {
	LoginURL string `json:"login_url"` // provider authorization URL
}

// CallbackResponse is the body of GET /api/v1/auth/kakao/callback for the web flow.
// The session itself travels in cookies.
type CallbackResponse struct {
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

// RefreshRequest carries the refresh token for POST /api/v1/auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse carries a token pair
type TokenResponse struct {
	AccessToken  string `json:"access_token"`            // JWT access token
	RefreshToken string `json:"refresh_token,omitempty"` // refresh token, absent when unchanged
	TokenType    string `json:"token_type,omitempty"`
	Message      string `json:"message,omitempty"`
	Success      bool   `json:"success"`
}

// User is the profile returned by GET /api/v1/auth/me
type User struct {
	Email        *string `json:"email,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
	KakaoID      string  `json:"kakao_id,omitempty"`
	Nickname     string  `json:"nickname,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"`
	ID           int64   `json:"id,omitempty"`
}

// LoggedIn reports whether the profile identifies a user
func (u *User) LoggedIn() bool {
	return u != nil && (u.KakaoID != "" || u.Nickname != "")
}

// ErrorResponse is the FastAPI error body
type ErrorResponse struct {
	Detail any `json:"detail"` // string or validation error list
}
