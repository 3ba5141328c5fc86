package model

// User is the authenticated user record kept in the session
type User struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}
