package handlers

import (
	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/http/response"
	"github.com/giftvault/internal/logger"

	"github.com/gin-gonic/gin"
)

// CaptchaChallenge issues an image challenge when any captcha scene is on.
func (h *Handler) CaptchaChallenge(c *gin.Context) {
	if !h.CaptchaService.Enabled(constants.CaptchaSceneLogin) &&
		!h.CaptchaService.Enabled(constants.CaptchaSceneGiftCardUse) {
		response.Success(c, gin.H{"enabled": false})
		return
	}
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		logger.Errorw("captcha_generate_failed", "error", err)
		response.Error(c, response.CodeInternal, "captcha generation failed")
		return
	}
	response.Success(c, gin.H{
		"enabled":      true,
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}
