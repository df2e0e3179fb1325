package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/ihsanfund/donations/internal/config"
	ierr "github.com/ihsanfund/donations/internal/errors"
)

// RoleAdmin is required on tokens for the admin routes
const RoleAdmin = "admin"

// Claims are the fields this service reads from a bearer token.
// Tokens are issued by the platform's identity service.
type Claims struct {
	UserID string
	Role   string
}

// Validator checks HS256 tokens signed with the shared secret
type Validator struct {
	secret []byte
}

func NewValidator(cfg *config.Configuration) *Validator {
	return &Validator{secret: []byte(cfg.Auth.Secret)}
}

func (v *Validator) ValidateToken(token string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, ierr.NewError("auth secret not configured").
			WithHint("Admin access is not configured").
			Mark(ierr.ErrPermissionDenied)
	}

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewError("unexpected signing method").
				WithHint(fmt.Sprintf("unexpected signing method: %v", token.Header["alg"])).
				Mark(ierr.ErrPermissionDenied)
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Token parse error").
			Mark(ierr.ErrPermissionDenied)
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Invalid token claims").
			Mark(ierr.ErrPermissionDenied)
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, ierr.NewError("token missing user ID").
			WithHint("Token missing user ID").
			Mark(ierr.ErrPermissionDenied)
	}
	role, _ := claims["role"].(string)

	return &Claims{UserID: userID, Role: role}, nil
}

// GenerateToken signs a token. Used by operators and tests; end-user tokens
// come from the identity service.
func GenerateToken(secret, userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
