package request

import "github.com/KretovDmitry/order-management-service/internal/application/errs"

// Bcrypt ignores everything past 72 bytes.
const MaxPasswordLength = 72

// Login defines parameters for Login.
type Login struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (p *Login) Validate() error {
	if p.Login == "" {
		return errs.NewValidationError("login", "is required")
	}
	if p.Password == "" {
		return errs.NewValidationError("password", "is required")
	}
	if len(p.Password) > MaxPasswordLength {
		return errs.NewValidationError("password", "must not exceed %d characters in length", MaxPasswordLength)
	}
	return nil
}
