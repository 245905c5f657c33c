package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/http/response"
	"github.com/giftvault/internal/logger"
	"github.com/giftvault/internal/repository"
	"github.com/giftvault/internal/service"

	"github.com/gin-gonic/gin"
)

// IssueGiftCardRequest is the issue payload. The value is in minor currency
// units; the query parameter form is also accepted.
type IssueGiftCardRequest struct {
	Value int64 `json:"value"`
}

// UseGiftCardRequest is the redeem payload.
type UseGiftCardRequest struct {
	Code        string `json:"code"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// IssueGiftCard creates a new card. Administrator only.
func (h *Handler) IssueGiftCard(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}

	value, ok := h.issueValue(c)
	if !ok {
		return
	}

	card, err := h.GiftCardService.Issue(c.Request.Context(), principal, value)
	if err != nil {
		h.respondGiftCardErr(c, err)
		return
	}
	response.Success(c, card)
}

// UseGiftCard redeems a card for the authenticated caller.
func (h *Handler) UseGiftCard(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}

	var req UseGiftCardRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request body")
			return
		}
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = strings.TrimSpace(c.Query("code"))
	}
	if code == "" {
		response.BadRequest(c, "code is required")
		return
	}

	if err := h.CaptchaService.Verify(constants.CaptchaSceneGiftCardUse, service.CaptchaVerifyPayload{
		CaptchaID:   req.CaptchaID,
		CaptchaCode: req.CaptchaCode,
	}); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	card, err := h.GiftCardService.Use(c.Request.Context(), principal, code)
	if err != nil {
		h.respondGiftCardErr(c, err)
		return
	}
	response.Success(c, card)
}

// DisposeGiftCard retires a card. Administrator only.
func (h *Handler) DisposeGiftCard(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}

	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		response.BadRequest(c, "code is required")
		return
	}

	card, err := h.GiftCardService.Dispose(c.Request.Context(), principal, code)
	if err != nil {
		h.respondGiftCardErr(c, err)
		return
	}
	response.Success(c, card)
}

// GetGiftCard returns a single card by code.
func (h *Handler) GetGiftCard(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}

	code := strings.TrimSpace(c.Param("code"))
	card, err := h.GiftCardService.Get(c.Request.Context(), principal, code)
	if err != nil {
		h.respondGiftCardErr(c, err)
		return
	}
	response.Success(c, card)
}

// ListGiftCards returns cards matching the query filter. Administrator only.
func (h *Handler) ListGiftCards(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := repository.GiftCardListFilter{
		Code:     c.Query("code"),
		Status:   c.Query("status"),
		IssuedBy: c.Query("issued_by"),
		UsedBy:   c.Query("used_by"),
		Page:     page,
		PageSize: pageSize,
	}
	if from, err := parseTimeParam(c.Query("issued_from")); err == nil && from != nil {
		filter.IssuedFrom = from
	}
	if to, err := parseTimeParam(c.Query("issued_to")); err == nil && to != nil {
		filter.IssuedTo = to
	}

	cards, total, err := h.GiftCardService.List(c.Request.Context(), principal, filter)
	if err != nil {
		h.respondGiftCardErr(c, err)
		return
	}

	totalPage := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPage++
	}
	response.SuccessWithPage(c, cards, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// ListGiftCardEvents returns the audit trail for a code. Administrator only.
func (h *Handler) ListGiftCardEvents(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}

	code := strings.TrimSpace(c.Param("code"))
	events, err := h.GiftCardService.Events(c.Request.Context(), principal, code)
	if err != nil {
		h.respondGiftCardErr(c, err)
		return
	}
	response.Success(c, events)
}

func (h *Handler) issueValue(c *gin.Context) (int64, bool) {
	if raw := strings.TrimSpace(c.Query("value")); raw != "" {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid value")
			return 0, false
		}
		return value, true
	}
	var req IssueGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return 0, false
	}
	return req.Value, true
}

func (h *Handler) respondGiftCardErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		response.Unauthorized(c, "authentication required")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, "operation not permitted")
	case errors.Is(err, service.ErrInvalidAmount):
		response.BadRequest(c, "value out of bounds")
	case errors.Is(err, service.ErrGiftCardNotFound):
		response.NotFound(c, "gift card not found")
	case errors.Is(err, service.ErrGiftCardUsedOrDisposed):
		response.Conflict(c, "gift card already used or disposed")
	case errors.Is(err, service.ErrGiftCardExpired):
		response.Conflict(c, "gift card expired")
	case errors.Is(err, service.ErrConflict):
		response.Conflict(c, "concurrent modification, please retry")
	case errors.Is(err, service.ErrStoreTimeout):
		response.Error(c, response.CodeTimeout, "store timeout")
	default:
		logger.Errorw("gift_card_request_failed", "path", c.FullPath(), "error", err)
		response.Error(c, response.CodeInternal, "internal error")
	}
}

func parseTimeParam(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
