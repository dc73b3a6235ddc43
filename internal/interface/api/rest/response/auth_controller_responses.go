package response

import "time"

const TokenTypeBearer = "bearer"

type Login struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	// Seconds until the token expires.
	ExpiresIn int64 `json:"expires_in"`
}

func NewLogin(token string, expiration time.Duration) *Login {
	return &Login{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int64(expiration / time.Second),
	}
}
