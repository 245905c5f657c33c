package service

import (
	"strings"
	"time"

	"github.com/giftvault/internal/config"
	"github.com/giftvault/internal/constants"

	"github.com/mojocn/base64Captcha"
)

// CaptchaVerifyPayload carries a captcha answer alongside a request.
type CaptchaVerifyPayload struct {
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// CaptchaImageChallenge is a generated image challenge.
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

// CaptchaService issues and verifies image captcha challenges per scene.
type CaptchaService struct {
	cfg        config.CaptchaConfig
	imageStore base64Captcha.Store
}

// NewCaptchaService creates the captcha service.
func NewCaptchaService(cfg config.CaptchaConfig) *CaptchaService {
	maxStore := cfg.Image.MaxStore
	if maxStore <= 0 {
		maxStore = base64Captcha.GCLimitNumber
	}
	expire := time.Duration(cfg.Image.ExpireSeconds) * time.Second
	if expire <= 0 {
		expire = 5 * time.Minute
	}
	return &CaptchaService{
		cfg:        cfg,
		imageStore: base64Captcha.NewMemoryStore(maxStore, expire),
	}
}

// Enabled reports whether a scene requires captcha verification.
func (s *CaptchaService) Enabled(scene string) bool {
	if s == nil || strings.ToLower(strings.TrimSpace(s.cfg.Provider)) != constants.CaptchaProviderImage {
		return false
	}
	switch scene {
	case constants.CaptchaSceneLogin:
		return s.cfg.Scenes.Login
	case constants.CaptchaSceneGiftCardUse:
		return s.cfg.Scenes.GiftCardUse
	default:
		return false
	}
}

// GenerateImageChallenge creates a new image challenge.
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	length := s.cfg.Image.Length
	if length <= 0 {
		length = 5
	}
	width := s.cfg.Image.Width
	if width <= 0 {
		width = 240
	}
	height := s.cfg.Image.Height
	if height <= 0 {
		height = 80
	}

	driver := base64Captcha.NewDriverDigit(height, width, length, 0.7, s.cfg.Image.ShowLine)
	captcha := base64Captcha.NewCaptcha(driver, s.imageStore)
	id, b64, _, err := captcha.Generate()
	if err != nil {
		return nil, err
	}
	return &CaptchaImageChallenge{CaptchaID: id, ImageBase64: b64}, nil
}

// Verify checks a captcha answer for a scene. A disabled scene always passes.
func (s *CaptchaService) Verify(scene string, payload CaptchaVerifyPayload) error {
	if !s.Enabled(scene) {
		return nil
	}
	id := strings.TrimSpace(payload.CaptchaID)
	code := strings.TrimSpace(payload.CaptchaCode)
	if id == "" || code == "" {
		return ErrCaptchaRequired
	}
	if !s.imageStore.Verify(id, code, true) {
		return ErrCaptchaInvalid
	}
	return nil
}
