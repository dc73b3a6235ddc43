package header

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
)

const (
	Authorization   = "Authorization"
	ContentType     = "Content-Type"
	ApplicationJSON = "application/json"
)

// IsApplicationJSONContentType returns true if the content type of the
// request is application/json, parameters like charset are allowed.
func IsApplicationJSONContentType(r *http.Request) bool {
	return mediaType(r.Header.Get(ContentType)) == ApplicationJSON
}

// BearerToken extracts the token of the "Authorization: Bearer <token>" header.
// The scheme is case insensitive.
func BearerToken(r *http.Request) (string, error) {
	value := strings.TrimSpace(r.Header.Get(Authorization))
	if value == "" {
		return "", errs.ErrUnauthorized
	}

	scheme, token, _ := strings.Cut(value, " ")
	token = strings.TrimSpace(token)
	if !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", fmt.Errorf("%w: expected bearer authorization scheme", errs.ErrTokenMalformed)
	}

	return token, nil
}

func mediaType(contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(contentType, ";"); i > -1 {
		contentType = strings.TrimSpace(contentType[0:i])
	}
	return contentType
}
