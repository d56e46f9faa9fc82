package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-16"

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := GenerateJWT("alice", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "pdf2json", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestGenerateJWT_DefaultTTL(t *testing.T) {
	token, err := GenerateJWT("bob", testSecret, 0)
	require.NoError(t, err)

	claims, err := ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestGenerateJWT_EmptySecret(t *testing.T) {
	_, err := GenerateJWT("alice", "", time.Hour)
	assert.Error(t, err)
}

func TestParseJWT_Rejects(t *testing.T) {
	good, err := GenerateJWT("alice", testSecret, time.Hour)
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", good, "some-other-secret-value"},
		{"expired", expired, testSecret},
		{"wrong algorithm", wrongAlg, testSecret},
		{"garbage", "not.a.token", testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJWT(tt.token, tt.secret)
			assert.Error(t, err)
		})
	}
}

func TestJWTAuth(t *testing.T) {
	good, err := GenerateJWT("alice", testSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		secret     string
		header     string
		wantStatus int
		wantSub    string
	}{
		{"valid token", testSecret, "Bearer " + good, http.StatusOK, "alice"},
		{"missing header", testSecret, "", http.StatusUnauthorized, ""},
		{"not bearer", testSecret, "Basic abc", http.StatusUnauthorized, ""},
		{"bad token", testSecret, "Bearer nope", http.StatusUnauthorized, ""},
		{"auth disabled", "", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSub string
			r := gin.New()
			r.GET("/", JWTAuth(tt.secret), func(c *gin.Context) {
				gotSub = GetSubject(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantSub, gotSub)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), `"error":"unauthorized"`)
			}
		})
	}
}

func TestWidgetToken(t *testing.T) {
	token, err := GenerateWidgetToken("https://example.com/a.pdf", testSecret, time.Hour)
	require.NoError(t, err)

	url, err := ParseWidgetToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.pdf", url)

	_, err = ParseWidgetToken(token, "some-other-secret-value")
	assert.Error(t, err)
}

func TestTokens_AudiencesDoNotMix(t *testing.T) {
	widget, err := GenerateWidgetToken("https://example.com/a.pdf", testSecret, time.Hour)
	require.NoError(t, err)
	api, err := GenerateJWT("alice", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(widget, testSecret)
	assert.Error(t, err, "widget token must not authenticate the API")

	_, err = ParseWidgetToken(api, testSecret)
	assert.Error(t, err, "API token must not bind a widget")
}
