package dto

// OperatorLoginRequest carries store operator credentials
type OperatorLoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=100" example:"store-operator"`
	Password string `json:"password" validate:"required,min=1,max=100" example:"SecurePass123!"`
}

// RefreshTokenRequest exchanges a refresh token for a new pair
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// OperatorSessionDTO is a token pair
type OperatorSessionDTO struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType    string `json:"token_type" example:"Bearer"`
	ExpiresIn    int    `json:"expires_in" example:"43200"`
}

// OperatorLoginResponse is returned on successful login or refresh
type OperatorLoginResponse struct {
	Username string             `json:"username" example:"store-operator"`
	Session  OperatorSessionDTO `json:"session"`
}

// StoreStatusResponse reports the store lifecycle state
type StoreStatusResponse struct {
	State string `json:"state" example:"ready"`
}
