package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/accounts/internal/auth/domain"
	authUseCase "github.com/allisson/accounts/internal/auth/usecase"
	"github.com/allisson/accounts/internal/httputil"
	sessionDomain "github.com/allisson/accounts/internal/session/domain"
	userDomain "github.com/allisson/accounts/internal/user/domain"
)

func setupAuthRouter(mockAuth *mockAuthUseCase) *gin.Engine {
	logger := createTestLogger()
	handler := NewAuthHandler(mockAuth, logger)

	router := gin.New()
	router.POST("/v1/sign-in", handler.SignInHandler)
	router.POST("/v1/sessions/refresh", handler.RefreshSessionHandler)

	authenticated := router.Group("/")
	authenticated.Use(AuthenticationMiddleware(mockAuth, logger))
	authenticated.DELETE("/v1/sessions", handler.SignOutHandler)
	authenticated.PUT("/v1/users/password", handler.ChangePasswordHandler)

	return router
}

func TestAuthHandler_SignIn(t *testing.T) {
	mockAuth := &mockAuthUseCase{}
	user := newTestUser()
	session := newTestSession(user.ID)
	body := newTestSessionBody(session.ID)

	mockAuth.On("SignIn", mock.Anything, mock.MatchedBy(func(input authUseCase.SignInInput) bool {
		return input.Email == "alice@example.com" &&
			input.Password == "correct horse battery staple" &&
			input.APIVersion == "20240101" &&
			input.UserAgent == "test-agent" &&
			input.Ephemeral
	})).Return(body, nil).Once()

	router := setupAuthRouter(mockAuth)

	payload := `{
		"email": "alice@example.com",
		"password": "correct horse battery staple",
		"api_version": "20240101",
		"ephemeral": true
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sign-in", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response SessionBodyResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, body.AccessToken, response.AccessToken)
	assert.Equal(t, body.RefreshToken, response.RefreshToken)

	mockAuth.AssertExpectations(t)
}

func TestAuthHandler_SignIn_InvalidCredentials(t *testing.T) {
	mockAuth := &mockAuthUseCase{}

	mockAuth.On("SignIn", mock.Anything, mock.Anything).
		Return(nil, authDomain.ErrInvalidCredentials).Once()

	router := setupAuthRouter(mockAuth)

	payload := `{"email": "alice@example.com", "password": "wrong"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sign-in", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response httputil.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "unauthorized", response.Error)

	mockAuth.AssertExpectations(t)
}

func TestAuthHandler_SignIn_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
	}{
		{"empty_body", `{}`},
		{"blank_email", `{"email": "   ", "password": "secret"}`},
		{"missing_password", `{"email": "alice@example.com"}`},
		{"malformed_json", `{"email": `},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockAuth := &mockAuthUseCase{}
			router := setupAuthRouter(mockAuth)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/sign-in", bytes.NewBufferString(tc.payload))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			mockAuth.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthHandler_RefreshSession(t *testing.T) {
	mockAuth := &mockAuthUseCase{}
	user := newTestUser()
	session := newTestSession(user.ID)
	body := newTestSessionBody(session.ID)
	refreshToken := sessionDomain.FormatBearerToken(session.ID, "old-refresh-secret")

	mockAuth.On("RefreshSession", mock.Anything, refreshToken).Return(body, nil).Once()

	router := setupAuthRouter(mockAuth)

	payload, err := json.Marshal(RefreshSessionRequest{RefreshToken: refreshToken})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/refresh", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response SessionBodyResponse
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, body.AccessToken, response.AccessToken)

	mockAuth.AssertExpectations(t)
}

func TestAuthHandler_RefreshSession_Denied(t *testing.T) {
	mockAuth := &mockAuthUseCase{}

	mockAuth.On("RefreshSession", mock.Anything, "stale-token").
		Return(nil, authDomain.ErrInvalidCredentials).Once()

	router := setupAuthRouter(mockAuth)

	payload := `{"refresh_token": "stale-token"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/refresh", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockAuth.AssertExpectations(t)
}

func TestAuthHandler_SignOut(t *testing.T) {
	mockAuth := &mockAuthUseCase{}
	user := newTestUser()
	session := newTestSession(user.ID)

	mockAuth.On("Authenticate", mock.Anything, "session-token").
		Return(authDomain.Allow(user, session), nil).Once()
	mockAuth.On("SignOut", mock.Anything, mock.MatchedBy(func(s *sessionDomain.Session) bool {
		return s.ID == session.ID
	})).Return(nil).Once()

	router := setupAuthRouter(mockAuth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/sessions", nil)
	req.Header.Set("Authorization", "Bearer session-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockAuth.AssertExpectations(t)
}

func TestAuthHandler_SignOut_JWTRequest(t *testing.T) {
	mockAuth := &mockAuthUseCase{}
	user := newTestUser()
	user.ProtocolVersion = "003"

	// JWT decisions carry no session, so there is nothing to sign out of.
	mockAuth.On("Authenticate", mock.Anything, "a.jwt.token").
		Return(authDomain.Allow(user, nil), nil).Once()

	router := setupAuthRouter(mockAuth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/sessions", nil)
	req.Header.Set("Authorization", "Bearer a.jwt.token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockAuth.AssertNotCalled(t, "SignOut", mock.Anything, mock.Anything)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	mockAuth := &mockAuthUseCase{}
	user := newTestUser()
	session := newTestSession(user.ID)

	mockAuth.On("Authenticate", mock.Anything, "session-token").
		Return(authDomain.Allow(user, session), nil).Once()
	mockAuth.On("ChangePassword", mock.Anything,
		mock.MatchedBy(func(u *userDomain.User) bool { return u.ID == user.ID }),
		authUseCase.ChangePasswordInput{
			CurrentPassword: "old-password",
			NewPassword:     "new-password-123",
		}).Return(nil).Once()

	router := setupAuthRouter(mockAuth)

	payload := `{"current_password": "old-password", "new_password": "new-password-123"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/users/password", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer session-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockAuth.AssertExpectations(t)
}

func TestAuthHandler_ChangePassword_ShortNewPassword(t *testing.T) {
	mockAuth := &mockAuthUseCase{}
	user := newTestUser()
	session := newTestSession(user.ID)

	mockAuth.On("Authenticate", mock.Anything, "session-token").
		Return(authDomain.Allow(user, session), nil).Once()

	router := setupAuthRouter(mockAuth)

	payload := `{"current_password": "old-password", "new_password": "short"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/users/password", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer session-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockAuth.AssertNotCalled(t, "ChangePassword", mock.Anything, mock.Anything, mock.Anything)
}
