// Package handlers provides the HTTP (gin) transport for the portfolio
// service, bridging request/response DTOs and the service layer.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	e "github.com/mbocion/polis/internal/portfolio/errors"
	"github.com/mbocion/polis/internal/portfolio/models"
)

// ClientController defines the business logic interface the client
// endpoints invoke.
type ClientController interface {
	ListClients(ctx context.Context) ([]*models.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	CreateClient(ctx context.Context, client *models.Client) (*models.Client, error)
	UpdateClient(ctx context.Context, update *models.ClientUpdate) (*models.Client, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error
}

// ClientHandler serves the /api/clients endpoints.
type ClientHandler struct {
	service ClientController
	logger  *zap.Logger
}

// NewClientHandler constructs a ClientHandler with the given service and logger.
func NewClientHandler(service ClientController, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		service: service,
		logger:  logger.Named("client_handler"),
	}
}

// List responds with every client.
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.service.ListClients(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toClientResponses(clients))
}

// Get responds with a single client by ID.
func (h *ClientHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client ID"})
		return
	}

	client, err := h.service.GetClient(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toClientResponse(client))
}

// Create validates the payload and creates a client.
func (h *ClientHandler) Create(c *gin.Context) {
	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrs})
		return
	}

	created, err := h.service.CreateClient(c.Request.Context(), clientFromRequest(&req))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toClientResponse(created))
}

// Update overwrites the client's mutable fields.
func (h *ClientHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client ID"})
		return
	}

	var req ClientUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrs})
		return
	}

	updated, err := h.service.UpdateClient(c.Request.Context(), clientUpdateFromRequest(id, &req))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toClientResponse(updated))
}

// Delete removes a client, closing its open contracts first.
func (h *ClientHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client ID"})
		return
	}

	if err := h.service.DeleteClient(c.Request.Context(), id); err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ClientHandler) respondServiceError(c *gin.Context, err error) {
	respondServiceError(c, h.logger, err)
}

// respondServiceError maps domain errors to HTTP statuses.
func respondServiceError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, e.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, e.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, e.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("Internal server error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
