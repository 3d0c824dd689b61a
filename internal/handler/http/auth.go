package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/teranga-hr/payroll-backend-go/internal/domain/auth"
	"github.com/teranga-hr/payroll-backend-go/internal/handler/http/response"
	"github.com/teranga-hr/payroll-backend-go/internal/pkg/jwt"
	authservice "github.com/teranga-hr/payroll-backend-go/internal/service/auth"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	jwtService  jwt.Service
	authService authservice.AuthService
}

func NewAuthHandler(jwtService jwt.Service, authService authservice.AuthService) AuthHandler {
	return &AuthHandlerImpl{
		jwtService:  jwtService,
		authService: authService,
	}
}

func (h *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.authService.Login(r.Context(), req)
	if err != nil {
		slog.Error("Login failed", "error", err)
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, h.jwtService.RefreshTokenCookie(result.RefreshToken, result.RefreshExp))
	response.Success(w, result)
}
