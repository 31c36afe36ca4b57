package dto

// TokenRequest is the body of POST /auth/token.
type TokenRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType" example:"Bearer"`
	ExpiresIn int64  `json:"expiresIn" example:"3600"`
	Role      string `json:"role" example:"STUDENT"`
}

// UpsertUserRequest is the body of PUT /users/:email.
type UpsertUserRequest struct {
	Name     string `json:"name" binding:"max=120"`
	PhotoURL string `json:"photoUrl" binding:"omitempty,url"`
}

// SetRoleRequest is the body of PATCH /users/:email/role.
type SetRoleRequest struct {
	Role string `json:"role" binding:"required,role" example:"instructor"`
}
