package auth

type (
	// OTPRequest starts a sign-up when FullName is set and a sign-in
	// otherwise.
	OTPRequest struct {
		FullName string `json:"fullName" validate:"max=128"`
		Email    string `json:"email" validate:"required,email"`
	}
	VerifyRequest struct {
		AccountID string `json:"accountId" validate:"required,uuid"`
		Secret    string `json:"secret" validate:"required,len=6,numeric"`
	}
)

type (
	AccountResponse struct {
		AccountID string `json:"accountId"`
	}
	TokenResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
)
