package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mbocion/polis/internal/portfolio/models"
)

// ContractController defines the business logic interface the contract
// endpoints invoke.
type ContractController interface {
	GetContract(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	CreateContract(ctx context.Context, contract *models.Contract) (*models.Contract, error)
	UpdateContractCost(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.Contract, error)
	ListActiveContracts(ctx context.Context, clientID uuid.UUID, since *time.Time) ([]*models.Contract, error)
	SumActiveCost(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error)
}

// ContractHandler serves the /api/contracts endpoints.
type ContractHandler struct {
	service ContractController
	logger  *zap.Logger
}

// NewContractHandler constructs a ContractHandler with the given service and logger.
func NewContractHandler(service ContractController, logger *zap.Logger) *ContractHandler {
	return &ContractHandler{
		service: service,
		logger:  logger.Named("contract_handler"),
	}
}

// Get responds with a single contract by ID.
func (h *ContractHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract ID"})
		return
	}

	contract, err := h.service.GetContract(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(contract))
}

// Create validates the payload and creates a contract for an existing client.
func (h *ContractHandler) Create(c *gin.Context) {
	var req ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrs})
		return
	}

	created, err := h.service.CreateContract(c.Request.Context(), contractFromRequest(&req))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toContractResponse(created))
}

// UpdateCost overwrites only the contract's cost amount.
func (h *ContractHandler) UpdateCost(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract ID"})
		return
	}

	var req UpdateCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrs})
		return
	}

	updated, err := h.service.UpdateContractCost(c.Request.Context(), id, *req.CostAmount)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(updated))
}

// ListActive responds with the active contracts of a client, optionally
// filtered by the updateDate query parameter.
func (h *ContractHandler) ListActive(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client ID"})
		return
	}

	since, err := parseUpdateDateFilter(c.Query("updateDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "updateDate must be an ISO 8601 timestamp"})
		return
	}

	contracts, err := h.service.ListActiveContracts(c.Request.Context(), clientID, since)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponses(contracts))
}

// TotalCost responds with the summed cost of a client's active contracts.
func (h *ContractHandler) TotalCost(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client ID"})
		return
	}

	total, err := h.service.SumActiveCost(c.Request.Context(), clientID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, CostTotalResponse{
		ClientID:        clientID.String(),
		TotalCostAmount: total,
	})
}
