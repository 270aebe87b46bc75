// Package controller implements the core business logic (service layer)
// for managing clients and their contracts, orchestrating repository
// operations and sending relevant events.
package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mbocion/polis/internal/portfolio/db"
	e "github.com/mbocion/polis/internal/portfolio/errors"
	"github.com/mbocion/polis/internal/portfolio/events"
	"github.com/mbocion/polis/internal/portfolio/models"
)

type EventProducer interface {
	ProduceClient(eventType events.EventType, client *models.Client)
	ProduceContract(eventType events.EventType, contract *models.Contract)
}

// Repository defines the storage interface for clients and contracts.
type Repository interface {
	CreateClient(ctx context.Context, client *models.Client) error
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	ListClients(ctx context.Context) ([]*models.Client, error)
	UpdateClient(ctx context.Context, update *models.ClientUpdate) error
	DeleteClient(ctx context.Context, id uuid.UUID) error
	ClientExists(ctx context.Context, id uuid.UUID) (bool, error)
	CountClients(ctx context.Context) (int64, error)
	CreateContract(ctx context.Context, contract *models.Contract) error
	GetContract(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	SaveContract(ctx context.Context, contract *models.Contract) error
	ListOpenContracts(ctx context.Context, clientID uuid.UUID) ([]*models.Contract, error)
	ListActiveContracts(ctx context.Context, clientID uuid.UUID, today time.Time, since *time.Time) ([]*models.Contract, error)
	SumActiveCost(ctx context.Context, clientID uuid.UUID, today time.Time) (decimal.Decimal, error)
	DeleteContractsByClient(ctx context.Context, clientID uuid.UUID) error
	WithTransaction(ctx context.Context, fn func(repo *db.Repository) error) error
	Close() error
}

// ClientService provides methods to manage clients via repository
// operations and event production.
type ClientService struct {
	repo     Repository
	producer EventProducer
	logger   *zap.Logger
}

// NewClientService constructs a ClientService with a repository,
// an event producer, and a logger.
func NewClientService(repo Repository, producer EventProducer, logger *zap.Logger) *ClientService {
	return &ClientService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("client_service"),
	}
}

// ListClients returns every client, unfiltered and unpaged.
func (s *ClientService) ListClients(ctx context.Context) ([]*models.Client, error) {
	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// GetClient retrieves a client by ID, returning an error if not found.
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	client, err := s.repo.GetClient(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// CreateClient adds a new client after enforcing the cross-field rule tying
// the client type to its identity fields, then triggers an event. The
// birthdate and company identifier are fixed here for good.
func (s *ClientService) CreateClient(ctx context.Context, client *models.Client) (*models.Client, error) {
	if err := validateClientType(client); err != nil {
		return nil, err
	}

	client.ID = uuid.New()
	if err := s.repo.CreateClient(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	go func() {
		s.producer.ProduceClient(events.ClientCreated, client)
	}()
	return client, nil
}

// UpdateClient overwrites the client's type, name, email and phone. The
// birthdate and company identifier are not part of the update model and
// therefore can never change here.
func (s *ClientService) UpdateClient(ctx context.Context, update *models.ClientUpdate) (*models.Client, error) {
	if update.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid client ID", e.ErrInvalidInput)
	}

	err := s.repo.UpdateClient(ctx, update)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	updated, err := s.repo.GetClient(ctx, update.ID)
	if err != nil {
		s.logger.Error("Failed to get client for event",
			zap.Error(err),
			zap.String("client_id", update.ID.String()),
		)
		return nil, err
	}
	go func() {
		s.producer.ProduceClient(events.ClientUpdated, updated)
	}()
	return updated, nil
}

// DeleteClient removes a client. Open contracts are terminated first so no
// contract remains active while referencing a deleted client: within one
// transaction it (1) sets end_date to today on every contract without one,
// (2) deletes the client's contract rows, (3) deletes the client row.
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	client, err := s.repo.GetClient(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get client for deletion: %w", err)
	}

	today := startOfToday()
	now := time.Now()
	err = s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		open, err := tx.ListOpenContracts(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to list open contracts: %w", err)
		}
		for _, contract := range open {
			contract.EndDate = &today
			contract.UpdateDate = now
			if err := tx.SaveContract(ctx, contract); err != nil {
				return fmt.Errorf("failed to close contract %s: %w", contract.ID, err)
			}
			s.logger.Debug("Closed contract before client deletion",
				zap.String("contract_id", contract.ID.String()),
			)
		}
		if err := tx.DeleteContractsByClient(ctx, id); err != nil {
			return fmt.Errorf("failed to delete contracts: %w", err)
		}
		return tx.DeleteClient(ctx, id)
	})
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}

	go func() {
		s.producer.ProduceClient(events.ClientDeleted, client)
	}()

	return nil
}

// validateClientType enforces that exactly one of birthdate and company
// identifier is populated, as dictated by the client type.
func validateClientType(client *models.Client) error {
	switch client.ClientType {
	case models.Person:
		if client.Birthdate == nil {
			return fmt.Errorf("%w: birthdate is required for PERSON client type", e.ErrValidation)
		}
		if client.CompanyIdentifier != nil {
			return fmt.Errorf("%w: company identifier must be null for PERSON client type", e.ErrValidation)
		}
	case models.Company:
		if client.CompanyIdentifier == nil || *client.CompanyIdentifier == "" {
			return fmt.Errorf("%w: company identifier is required for COMPANY client type", e.ErrValidation)
		}
		if client.Birthdate != nil {
			return fmt.Errorf("%w: birthdate must be null for COMPANY client type", e.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown client type %q", e.ErrInvalidInput, client.ClientType)
	}
	return nil
}

// startOfToday returns the current date truncated to midnight UTC, the
// reference point for the active-contract cutoff.
func startOfToday() time.Time {
	year, month, day := time.Now().UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
