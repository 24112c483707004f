package token

import (
	"github.com/golang-jwt/jwt/v5"

	dErrors "privy/pkg/domain-errors"
)

// Claims is the signed, self-describing payload of a capability token.
// The server-side record stays authoritative; a verified signature is
// necessary but not sufficient for validity.
type Claims struct {
	TokenID      string   `json:"token_id"`
	UserID       string   `json:"user_id"`
	TaskID       string   `json:"task_id"`
	TaskType     string   `json:"task_type"`
	DataScope    []string `json:"data_scope"`
	MaxUses      int      `json:"max_uses"`
	SelfDestruct bool     `json:"self_destruct"`
	jwt.RegisteredClaims
}

// Signer is the opaque sign/verify capability for capability tokens.
type Signer interface {
	Sign(claims Claims) (string, error)
	Verify(token string) (Claims, error)
}

// HS256Signer signs capability tokens with a symmetric key.
type HS256Signer struct {
	key []byte
}

func NewHS256Signer(key string) *HS256Signer {
	return &HS256Signer{key: []byte(key)}
}

func (s *HS256Signer) Sign(claims Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// Verify parses and checks the signature. Expiry is deliberately NOT
// enforced here: the service destroys expired tokens itself so the
// destruction is recorded with a reason.
func (s *HS256Signer) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeSignatureInvalid, "unexpected signing method")
		}
		return s.key, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return Claims{}, dErrors.Wrap(err, dErrors.CodeSignatureInvalid, "invalid token")
	}
	if !parsed.Valid {
		return Claims{}, dErrors.New(dErrors.CodeSignatureInvalid, "invalid token")
	}
	return claims, nil
}
