package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/accounts/internal/auth/domain"
	apperrors "github.com/allisson/accounts/internal/errors"
	"github.com/allisson/accounts/internal/httputil"
)

// TestAuthenticationMiddleware_Success tests a session-token authenticated request.
func TestAuthenticationMiddleware_Success(t *testing.T) {
	mockAuth := &mockAuthUseCase{}
	logger := createTestLogger()

	user := newTestUser()
	session := newTestSession(user.ID)
	token := "1:" + session.ID.String() + ":secret"

	mockAuth.On("Authenticate", mock.Anything, token).
		Return(authDomain.Allow(user, session), nil).Once()

	router := gin.New()
	router.Use(AuthenticationMiddleware(mockAuth, logger))
	router.GET("/test", func(c *gin.Context) {
		retrievedUser, ok := GetUser(c.Request.Context())
		require.True(t, ok, "user should be in context")
		assert.Equal(t, user.ID, retrievedUser.ID)

		retrievedSession, ok := GetSession(c.Request.Context())
		require.True(t, ok, "session should be in context")
		assert.Equal(t, session.ID, retrievedSession.ID)

		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockAuth.AssertExpectations(t)
}

// TestAuthenticationMiddleware_Success_JWTWithoutSession tests that a JWT
// decision stores the user but leaves no session in the context.
func TestAuthenticationMiddleware_Success_JWTWithoutSession(t *testing.T) {
	mockAuth := &mockAuthUseCase{}
	logger := createTestLogger()

	user := newTestUser()
	user.ProtocolVersion = "003"

	mockAuth.On("Authenticate", mock.Anything, "a.jwt.token").
		Return(authDomain.Allow(user, nil), nil).Once()

	router := gin.New()
	router.Use(AuthenticationMiddleware(mockAuth, logger))
	router.GET("/test", func(c *gin.Context) {
		_, ok := GetUser(c.Request.Context())
		require.True(t, ok)

		_, ok = GetSession(c.Request.Context())
		assert.False(t, ok, "JWT requests must not carry a session")

		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer a.jwt.token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockAuth.AssertExpectations(t)
}

// TestAuthenticationMiddleware_Success_CaseInsensitiveBearer tests case-insensitive Bearer prefix.
func TestAuthenticationMiddleware_Success_CaseInsensitiveBearer(t *testing.T) {
	testCases := []struct {
		name   string
		prefix string
	}{
		{"lowercase_bearer", "bearer "},
		{"uppercase_BEARER", "BEARER "},
		{"mixedcase_BeArEr", "BeArEr "},
		{"standard_Bearer", "Bearer "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockAuth := &mockAuthUseCase{}
			logger := createTestLogger()

			user := newTestUser()
			session := newTestSession(user.ID)

			mockAuth.On("Authenticate", mock.Anything, "some-token").
				Return(authDomain.Allow(user, session), nil).Once()

			router := gin.New()
			router.Use(AuthenticationMiddleware(mockAuth, logger))
			router.GET("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", tc.prefix+"some-token")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			mockAuth.AssertExpectations(t)
		})
	}
}

// TestAuthenticationMiddleware_Error_MissingAuthorizationHeader tests missing Authorization header.
func TestAuthenticationMiddleware_Error_MissingAuthorizationHeader(t *testing.T) {
	mockAuth := &mockAuthUseCase{}
	logger := createTestLogger()

	router := gin.New()
	router.Use(AuthenticationMiddleware(mockAuth, logger))
	router.GET("/test", func(c *gin.Context) {
		t.Fatal("handler should not be called when authentication fails")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response httputil.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "unauthorized", response.Error)

	mockAuth.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
}

// TestAuthenticationMiddleware_Error_MalformedAuthorizationHeader tests malformed Authorization headers.
func TestAuthenticationMiddleware_Error_MalformedAuthorizationHeader(t *testing.T) {
	testCases := []struct {
		name   string
		header string
	}{
		{"no_prefix", "just-a-token"},
		{"wrong_prefix", "Basic username:password"},
		{"empty_token", "Bearer "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockAuth := &mockAuthUseCase{}
			logger := createTestLogger()

			router := gin.New()
			router.Use(AuthenticationMiddleware(mockAuth, logger))
			router.GET("/test", func(c *gin.Context) {
				t.Fatal("handler should not be called when authentication fails")
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", tc.header)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			mockAuth.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
		})
	}
}

// TestAuthenticationMiddleware_Denied tests that each denial carries its
// machine-readable code.
func TestAuthenticationMiddleware_Denied(t *testing.T) {
	testCases := []struct {
		name        string
		failureType authDomain.FailureType
		wantCode    string
	}{
		{"invalid_auth", authDomain.FailureInvalidAuth, "invalid_auth"},
		{"revoked_session", authDomain.FailureRevokedSession, "revoked_session"},
		{"expired_token", authDomain.FailureExpiredToken, "expired_token"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockAuth := &mockAuthUseCase{}
			logger := createTestLogger()

			mockAuth.On("Authenticate", mock.Anything, "some-token").
				Return(authDomain.Deny(tc.failureType), nil).Once()

			router := gin.New()
			router.Use(AuthenticationMiddleware(mockAuth, logger))
			router.GET("/test", func(c *gin.Context) {
				t.Fatal("handler should not be called when authentication is denied")
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", "Bearer some-token")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var response httputil.ErrorResponse
			err := json.Unmarshal(w.Body.Bytes(), &response)
			require.NoError(t, err)
			assert.Equal(t, "unauthorized", response.Error)
			assert.Equal(t, tc.wantCode, response.Code)

			mockAuth.AssertExpectations(t)
		})
	}
}

// TestAuthenticationMiddleware_DependencyFailure tests that a dependency
// failure is never reported as a denial.
func TestAuthenticationMiddleware_DependencyFailure(t *testing.T) {
	mockAuth := &mockAuthUseCase{}
	logger := createTestLogger()

	mockAuth.On("Authenticate", mock.Anything, "some-token").
		Return(authDomain.Decision{}, apperrors.Wrap(apperrors.ErrUnavailable, "database timeout")).
		Once()

	router := gin.New()
	router.Use(AuthenticationMiddleware(mockAuth, logger))
	router.GET("/test", func(c *gin.Context) {
		t.Fatal("handler should not be called on dependency failure")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	mockAuth.AssertExpectations(t)
}
