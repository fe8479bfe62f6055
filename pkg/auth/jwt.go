package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/domain"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/model/response"
	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
	ct "github.com/Kaybarax/todo-list-turborepo-sub002/pkg/context"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	UserIDKey    = "x-user-id"
	UserEmailKey = "x-user-email"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// JWT issues and verifies HS256 access and refresh tokens.
type JWT struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	now        func() time.Time
}

func NewJWT(secret string, accessTTL, refreshTTL time.Duration) *JWT {
	return &JWT{
		Secret:     secret,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		now:        time.Now,
	}
}

var _ port.TokenIssuer = (*JWT)(nil)

func (j *JWT) IssueAccess(user domain.User) (string, error) {
	return j.sign(user, TokenTypeAccess, j.AccessTTL)
}

func (j *JWT) IssueRefresh(user domain.User) (string, error) {
	return j.sign(user, TokenTypeRefresh, j.RefreshTTL)
}

func (j *JWT) VerifyAccess(token string) (port.TokenClaims, error) {
	return j.verify(token, TokenTypeAccess)
}

func (j *JWT) VerifyRefresh(token string) (port.TokenClaims, error) {
	return j.verify(token, TokenTypeRefresh)
}

func (j *JWT) AccessTTLSeconds() int {
	return int(j.AccessTTL / time.Second)
}

func (j *JWT) sign(user domain.User, typ string, ttl time.Duration) (string, error) {
	now := j.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: user.Email,
		Name:  user.Name,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	return token.SignedString([]byte(j.Secret))
}

func (j *JWT) verify(tokenString, typ string) (port.TokenClaims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return []byte(j.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return port.TokenClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return port.TokenClaims{}, ErrInvalidToken
	}

	if claims.Type != typ {
		return port.TokenClaims{}, fmt.Errorf("%w: expected %s token", ErrInvalidToken, typ)
	}

	return port.TokenClaims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
		Type:   claims.Type,
	}, nil
}

// GinJwtMiddleware rejects requests without a valid bearer access token and
// stores the caller's id under UserIDKey.
func GinJwtMiddleware(tokens port.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := c.GetHeader("Authorization")

		if bearer == "" {
			unauthorized(c, "Unauthorized request")
			return
		}

		if !strings.HasPrefix(bearer, "Bearer ") {
			unauthorized(c, "Invalid authorization format")
			return
		}

		claims, err := tokens.VerifyAccess(strings.TrimPrefix(bearer, "Bearer "))
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)

		if current, ok := ct.FromContext(c.Request.Context()); ok {
			current.Set(ct.UserIDKey, claims.UserID)
		}

		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{
		Error: response.ResponseError{
			Code:    "UNAUTHORIZED",
			Errors:  []response.ValidationError{},
			Details: message,
		},
	})
}
