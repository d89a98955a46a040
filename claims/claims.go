package claims

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the decoded fields of interest from a bearer token: who the
// session belongs to, what role it carries, and when the token expires.
//
// Claims instances are intended to be derived from a token via [Decode] and
// then treated as immutable.
type Claims struct {
	SubjectID string
	Role      string
	ExpiresAt time.Time
}

// HasExpiry reports whether the token carried an exp claim. Tokens without
// one cannot arm an expiry timer.
func (c *Claims) HasExpiry() bool {
	return c != nil && !c.ExpiresAt.IsZero()
}

// tokenClaims mirrors the payload fields the lifecycle manager reads. The
// issuing server owns the full claim set; unknown fields are ignored.
type tokenClaims struct {
	UID  string `json:"uid,omitempty"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Decode extracts [Claims] from a bearer token without verifying its
// signature. It is a total function: for any input string — empty, missing
// delimiters, invalid base64url, non-JSON payload — it returns nil rather
// than an error or a panic. Verification is the issuing server's concern.
func Decode(token string) *Claims {
	if token == "" {
		return nil
	}

	var payload tokenClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &payload); err != nil {
		return nil
	}

	out := &Claims{
		SubjectID: payload.UID,
		Role:      payload.Role,
	}
	if out.SubjectID == "" {
		out.SubjectID = payload.Subject
	}
	if payload.ExpiresAt != nil {
		out.ExpiresAt = payload.ExpiresAt.Time
	}

	return out
}
