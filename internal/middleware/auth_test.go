package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stagesight/internal/mocks"
	"stagesight/internal/model"
	apperrors "stagesight/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret, sub, email string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func strPtr(s string) *string {
	return &s
}

func setupRouter(profiles *mocks.ProfileRepositoryMock, guards ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Auth(testSecret, profiles))
	handlers := append(guards, func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusOK, gin.H{"guest": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": user.ID, "first_name": user.FirstName})
	})
	r.GET("/whoami", handlers...)
	return r
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_NoHeaderIsGuest(t *testing.T) {
	profiles := mocks.NewProfileRepositoryMock()
	w := doRequest(setupRouter(profiles), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"guest":true}`, w.Body.String())
	profiles.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestAuth_ValidToken(t *testing.T) {
	id := uuid.New()
	profiles := mocks.NewProfileRepositoryMock()
	profiles.On("FindByID", mock.Anything, id).Return(&model.Profile{ID: id, FirstName: strPtr("Jane")}, nil)

	token := signToken(t, testSecret, id.String(), "jane@example.com", time.Now().Add(time.Hour))
	w := doRequest(setupRouter(profiles), token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"first_name":"Jane"`)
	assert.Contains(t, w.Body.String(), id.String())
}

func TestAuth_ProfileNotFoundStillAuthenticated(t *testing.T) {
	id := uuid.New()
	profiles := mocks.NewProfileRepositoryMock()
	profiles.On("FindByID", mock.Anything, id).Return(nil, apperrors.ErrProfileNotFound)

	token := signToken(t, testSecret, id.String(), "jane@example.com", time.Now().Add(time.Hour))
	w := doRequest(setupRouter(profiles), token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
}

func TestAuth_ProfileLookupError(t *testing.T) {
	id := uuid.New()
	profiles := mocks.NewProfileRepositoryMock()
	profiles.On("FindByID", mock.Anything, id).Return(nil, errors.New("db down"))

	token := signToken(t, testSecret, id.String(), "jane@example.com", time.Now().Add(time.Hour))
	w := doRequest(setupRouter(profiles), token)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuth_InvalidTokens(t *testing.T) {
	id := uuid.New().String()

	tests := []struct {
		name   string
		header string
	}{
		{"wrong secret", "Bearer " + signToken(t, "other-secret", id, "a@b.co", time.Now().Add(time.Hour))},
		{"expired", "Bearer " + signToken(t, testSecret, id, "a@b.co", time.Now().Add(-time.Minute))},
		{"bad subject", "Bearer " + signToken(t, testSecret, "not-a-uuid", "a@b.co", time.Now().Add(time.Hour))},
		{"nil subject", "Bearer " + signToken(t, testSecret, uuid.Nil.String(), "a@b.co", time.Now().Add(time.Hour))},
		{"not bearer", "Basic abc"},
		{"garbage", "Bearer not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := mocks.NewProfileRepositoryMock()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()
			setupRouter(profiles).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	adminID := uuid.New()
	userID := uuid.New()
	profiles := mocks.NewProfileRepositoryMock()
	profiles.On("FindByID", mock.Anything, adminID).Return(&model.Profile{ID: adminID, Role: strPtr(model.RoleAdmin)}, nil)
	profiles.On("FindByID", mock.Anything, userID).Return(&model.Profile{ID: userID, Role: strPtr("user")}, nil)

	r := setupRouter(profiles, RequireAdmin())

	t.Run("guest", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
	})

	t.Run("regular user", func(t *testing.T) {
		token := signToken(t, testSecret, userID.String(), "u@example.com", time.Now().Add(time.Hour))
		assert.Equal(t, http.StatusForbidden, doRequest(r, token).Code)
	})

	t.Run("admin", func(t *testing.T) {
		token := signToken(t, testSecret, adminID.String(), "admin@example.com", time.Now().Add(time.Hour))
		assert.Equal(t, http.StatusOK, doRequest(r, token).Code)
	})
}

func TestParseToken(t *testing.T) {
	id := uuid.New()
	token := signToken(t, testSecret, id.String(), "jane@example.com", time.Now().Add(time.Hour))

	user, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.False(t, user.IsGuest())
}
