package handlers

import (
	"github.com/giftvault/internal/provider"
)

// Handler exposes the HTTP endpoints over the service container.
type Handler struct {
	*provider.Container
}

// NewHandler creates the handler set.
func NewHandler(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
