// jwt.go provides stateless JWT authentication for the conversion API.
//
// Tokens are HS256 and carry nothing but a subject, an audience and an
// expiry. There is no user table behind them; `pdf2json token` mints API
// tokens for whoever runs the server, and the widget page mints its own.
package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Shimizu-Technology/pdf2json/internal/models"
)

const subjectContextKey = "subject"

// DefaultTokenTTL is how long a token lives when no TTL is given.
const DefaultTokenTTL = 72 * time.Hour

// JWTClaims is the claim set we sign. Only the registered claims are used;
// Subject is the caller for API tokens and the bound URL for widget tokens.
type JWTClaims struct {
	jwt.RegisteredClaims
}

// Audiences keep API tokens and widget tokens from standing in for each
// other, even if both were signed with the same secret.
const (
	audienceAPI    = "api"
	audienceWidget = "widget"
)

// GenerateJWT creates a signed API token for subject that expires after ttl.
func GenerateJWT(subject, secret string, ttl time.Duration) (string, error) {
	return generateToken(subject, audienceAPI, secret, ttl)
}

// ParseJWT validates and parses an API token. Only HS256 is accepted.
func ParseJWT(tokenString, secret string) (*JWTClaims, error) {
	return parseToken(tokenString, audienceAPI, secret)
}

// GenerateWidgetToken binds a widget page to the URL it may convert. The
// token travels in the page's form, so the trigger can only ever fetch the
// URL the page was rendered for.
func GenerateWidgetToken(url, secret string, ttl time.Duration) (string, error) {
	return generateToken(url, audienceWidget, secret, ttl)
}

// ParseWidgetToken verifies a widget token and returns the URL it binds.
func ParseWidgetToken(tokenString, secret string) (string, error) {
	claims, err := parseToken(tokenString, audienceWidget, secret)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func generateToken(subject, audience, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   subject,
			Issuer:    "pdf2json",
			Audience:  jwt.ClaimStrings{audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parseToken(tokenString, audience, secret string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// JWTAuth returns middleware that validates JWT Bearer tokens.
// An empty secret turns auth off, which is what local development wants.
func JWTAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSecret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Missing or invalid Authorization header. Use 'Bearer <token>'",
				Code:    http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := ParseJWT(tokenString, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
				Code:    http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		c.Set(subjectContextKey, claims.Subject)
		c.Next()
	}
}

// GetSubject returns the authenticated token subject, or "" when the
// request was not authenticated.
func GetSubject(c *gin.Context) string {
	return c.GetString(subjectContextKey)
}
