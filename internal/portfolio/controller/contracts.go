package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	e "github.com/mbocion/polis/internal/portfolio/errors"
	"github.com/mbocion/polis/internal/portfolio/events"
	"github.com/mbocion/polis/internal/portfolio/models"
)

// ContractService provides methods to manage contracts scoped to a client,
// including active-contract queries and cost aggregation.
type ContractService struct {
	repo     Repository
	producer EventProducer
	logger   *zap.Logger
}

// NewContractService constructs a ContractService with a repository,
// an event producer, and a logger.
func NewContractService(repo Repository, producer EventProducer, logger *zap.Logger) *ContractService {
	return &ContractService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("contract_service"),
	}
}

// GetContract retrieves a contract by ID, returning an error if not found.
func (s *ContractService) GetContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	contract, err := s.repo.GetContract(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return contract, nil
}

// CreateContract adds a new contract for an existing client. The start date
// defaults to today when absent; the end date and cost are taken verbatim.
func (s *ContractService) CreateContract(ctx context.Context, contract *models.Contract) (*models.Contract, error) {
	if !contract.CostAmount.IsPositive() {
		return nil, fmt.Errorf("%w: cost amount must be greater than 0", e.ErrInvalidInput)
	}

	exists, err := s.repo.ClientExists(ctx, contract.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check client existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: client %s", e.ErrNotFound, contract.ClientID)
	}

	contract.ID = uuid.New()
	if contract.StartDate.IsZero() {
		contract.StartDate = startOfToday()
	}
	contract.UpdateDate = time.Now()

	if err := s.repo.CreateContract(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to create contract: %w", err)
	}
	go func() {
		s.producer.ProduceContract(events.ContractCreated, contract)
	}()
	return contract, nil
}

// UpdateContractCost overwrites only the contract's cost amount and
// refreshes its update timestamp.
func (s *ContractService) UpdateContractCost(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.Contract, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: cost amount must be greater than 0", e.ErrInvalidInput)
	}

	contract, err := s.repo.GetContract(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	contract.CostAmount = amount
	contract.UpdateDate = time.Now()
	if err := s.repo.SaveContract(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to update contract cost: %w", err)
	}

	go func() {
		s.producer.ProduceContract(events.ContractUpdated, contract)
	}()
	return contract, nil
}

// ListActiveContracts returns the client's contracts whose end date is
// unset or in the future, optionally restricted to those updated at or
// after the given instant. Order is store-native.
func (s *ContractService) ListActiveContracts(ctx context.Context, clientID uuid.UUID, since *time.Time) ([]*models.Contract, error) {
	exists, err := s.repo.ClientExists(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check client existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: client %s", e.ErrNotFound, clientID)
	}

	contracts, err := s.repo.ListActiveContracts(ctx, clientID, startOfToday(), since)
	if err != nil {
		return nil, fmt.Errorf("failed to list active contracts: %w", err)
	}
	s.logger.Debug("Fetched active contracts",
		zap.String("client_id", clientID.String()),
		zap.Int("count", len(contracts)),
	)
	return contracts, nil
}

// SumActiveCost totals the cost of the client's active contracts; a client
// with none yields zero, not an error.
func (s *ContractService) SumActiveCost(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	exists, err := s.repo.ClientExists(ctx, clientID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to check client existence: %w", err)
	}
	if !exists {
		return decimal.Zero, fmt.Errorf("%w: client %s", e.ErrNotFound, clientID)
	}

	total, err := s.repo.SumActiveCost(ctx, clientID, startOfToday())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum active cost: %w", err)
	}
	return total, nil
}
