package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/gomega"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/domain"
)

var testUser = domain.User{ID: "user-1", Email: "jane@example.com", Name: "Jane"}

func TestJWT_AccessTokenRoundTrip(t *testing.T) {
	RegisterTestingT(t)

	j := NewJWT("secret", 15*time.Minute, 7*24*time.Hour)

	token, err := j.IssueAccess(testUser)
	Expect(err).To(BeNil())

	claims, err := j.VerifyAccess(token)
	Expect(err).To(BeNil())
	Expect(claims.UserID).To(Equal("user-1"))
	Expect(claims.Email).To(Equal("jane@example.com"))
	Expect(claims.Type).To(Equal(TokenTypeAccess))
	Expect(j.AccessTTLSeconds()).To(Equal(900))
}

func TestJWT_TokenTypesAreNotInterchangeable(t *testing.T) {
	RegisterTestingT(t)

	j := NewJWT("secret", time.Minute, time.Hour)

	refresh, _ := j.IssueRefresh(testUser)
	access, _ := j.IssueAccess(testUser)

	_, err := j.VerifyAccess(refresh)
	Expect(err).To(MatchError(ErrInvalidToken))

	_, err = j.VerifyRefresh(access)
	Expect(err).To(MatchError(ErrInvalidToken))

	claims, err := j.VerifyRefresh(refresh)
	Expect(err).To(BeNil())
	Expect(claims.Type).To(Equal(TokenTypeRefresh))
}

func TestJWT_RejectsExpiredAndForeignTokens(t *testing.T) {
	RegisterTestingT(t)

	j := NewJWT("secret", time.Minute, time.Hour)
	token, _ := j.IssueAccess(testUser)

	j.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err := j.VerifyAccess(token)
	Expect(err).To(MatchError(ErrInvalidToken))

	other := NewJWT("other-secret", time.Minute, time.Hour)
	_, err = other.VerifyAccess(token)
	Expect(err).To(MatchError(ErrInvalidToken))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Type: TokenTypeAccess})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	_, err = NewJWT("secret", time.Minute, time.Hour).VerifyAccess(unsigned)
	Expect(err).To(MatchError(ErrInvalidToken))
}

func TestGinJwtMiddleware(t *testing.T) {
	RegisterTestingT(t)
	gin.SetMode(gin.TestMode)

	j := NewJWT("secret", time.Minute, time.Hour)
	router := gin.New()
	router.GET("/me", GinJwtMiddleware(j), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UserIDKey))
	})

	serve := func(header string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(w, req)
		return w
	}

	Expect(serve("").Code).To(Equal(http.StatusUnauthorized))
	Expect(serve("Token abc").Code).To(Equal(http.StatusUnauthorized))
	Expect(serve("Bearer nope").Body.String()).To(ContainSubstring("UNAUTHORIZED"))

	token, _ := j.IssueAccess(testUser)
	w := serve("Bearer " + token)
	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(Equal("user-1"))
}
