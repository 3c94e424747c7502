package authmodel

// TokenResponse is the body returned by the API's login and refresh endpoints.
type TokenResponse struct {
	// AccessToken is the short-lived bearer credential.
	// Example: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."
	// Usage: Include in Authorization header: "Bearer <accessToken>"
	// Absent when the server accepted the request but did not issue a token.
	AccessToken string `json:"accessToken,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token, when the API
	// reports it. This is a hint only.
	ExpiresIn int `json:"expiresIn,omitempty"`
}

// HasToken reports whether the response carries an access token.
func (t *TokenResponse) HasToken() bool {
	return t != nil && t.AccessToken != ""
}

// Profile is the identity of the logged in administrator as returned by
// GET auth/me.
type Profile struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
}
