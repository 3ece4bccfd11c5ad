package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

type authenticatorMock struct {
	captured models.LoginRequest
	err      error
}

func (m *authenticatorMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.captured = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.LoginResponse{AccessToken: "token-1"}, nil
}

func TestAuthHandlerLoginSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &authenticatorMock{}
	h := &AuthHandler{service: mockSvc}

	payload := []byte(`{"email":"planner@example.edu","password":"s3cret-pass"}`)
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "planner@example.edu", mockSvc.captured.Email)
	require.Contains(t, w.Body.String(), "token-1")
}

func TestAuthHandlerLoginMalformedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &AuthHandler{service: &authenticatorMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(`{"email":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Login(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerLoginRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &AuthHandler{service: &authenticatorMock{err: appErrors.ErrInvalidCredentials}}

	payload := []byte(`{"email":"planner@example.edu","password":"wrong-pass"}`)
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Login(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
