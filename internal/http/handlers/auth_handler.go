package handlers

import (
	"errors"
	"strings"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/http/response"
	"github.com/giftvault/internal/logger"
	"github.com/giftvault/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest is the credential payload.
type LoginRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.CaptchaService.Verify(constants.CaptchaSceneLogin, service.CaptchaVerifyPayload{
		CaptchaID:   req.CaptchaID,
		CaptchaCode: req.CaptchaCode,
	}); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	account, token, expiresAt, err := h.AuthService.Login(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid email or password")
			return
		}
		logger.Errorw("login_failed", "email", req.Email, "error", err)
		response.Error(c, response.CodeInternal, "login failed")
		return
	}

	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"account": gin.H{
			"email": account.Email,
			"role":  account.Role,
		},
	})
}

// Profile returns the authenticated caller.
func (h *Handler) Profile(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	response.Success(c, gin.H{
		"email": principal.Email,
		"role":  principal.Role,
	})
}
