package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	e "github.com/mbocion/polis/internal/portfolio/errors"
	"github.com/mbocion/polis/internal/portfolio/models"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func NewRepository(cfg *Config) (*Repository, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var db *gorm.DB
	connect := func() error {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		return err
	}
	// The database may still be coming up when the service starts.
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	if err := backoff.Retry(connect, policy); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewRepositoryWithDB(db)
}

// NewRepositoryWithDB wraps an already-open gorm handle and migrates the
// schema. Tests use it with an in-memory SQLite database.
func NewRepositoryWithDB(gdb *gorm.DB) (*Repository, error) {
	if err := gdb.AutoMigrate(&models.Client{}, &models.Contract{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Repository{db: gdb}, nil
}

func (r *Repository) CreateClient(ctx context.Context, client *models.Client) error {
	result := r.db.WithContext(ctx).Create(client)
	return result.Error
}

func (r *Repository) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	result := r.db.WithContext(ctx).First(&client, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &client, nil
}

func (r *Repository) ListClients(ctx context.Context) ([]*models.Client, error) {
	var clients []*models.Client
	result := r.db.WithContext(ctx).Find(&clients)
	if result.Error != nil {
		return nil, result.Error
	}
	return clients, nil
}

func (r *Repository) UpdateClient(ctx context.Context, update *models.ClientUpdate) error {
	result := r.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ?", update.ID).
		Updates(update)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteClient(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Client{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) ClientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ?", id).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

func (r *Repository) CountClients(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Client{}).Count(&count)
	return count, result.Error
}

func (r *Repository) CreateContract(ctx context.Context, contract *models.Contract) error {
	result := r.db.WithContext(ctx).Create(contract)
	return result.Error
}

func (r *Repository) GetContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	result := r.db.WithContext(ctx).First(&contract, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &contract, nil
}

// SaveContract persists all mutable fields of an already-loaded contract.
func (r *Repository) SaveContract(ctx context.Context, contract *models.Contract) error {
	result := r.db.WithContext(ctx).Model(&models.Contract{}).
		Where("id = ?", contract.ID).
		Updates(map[string]interface{}{
			"end_date":    contract.EndDate,
			"cost_amount": contract.CostAmount,
			"update_date": contract.UpdateDate,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// ListOpenContracts returns the contracts of a client with no end date set.
func (r *Repository) ListOpenContracts(ctx context.Context, clientID uuid.UUID) ([]*models.Contract, error) {
	var contracts []*models.Contract
	result := r.db.WithContext(ctx).
		Where("client_id = ? AND end_date IS NULL", clientID).
		Find(&contracts)
	if result.Error != nil {
		return nil, result.Error
	}
	return contracts, nil
}

// ListActiveContracts returns the contracts of a client that are active as
// of the given day (no end date, or end date strictly after it). When since
// is non-nil the result is further restricted to contracts updated at or
// after that instant.
func (r *Repository) ListActiveContracts(ctx context.Context, clientID uuid.UUID, today time.Time, since *time.Time) ([]*models.Contract, error) {
	query := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Where("end_date IS NULL OR end_date > ?", today)
	if since != nil {
		query = query.Where("update_date >= ?", *since)
	}

	var contracts []*models.Contract
	result := query.Find(&contracts)
	if result.Error != nil {
		return nil, result.Error
	}
	return contracts, nil
}

// SumActiveCost totals the cost of a client's active contracts as of the
// given day. Clients without active contracts yield zero.
func (r *Repository) SumActiveCost(ctx context.Context, clientID uuid.UUID, today time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	result := r.db.WithContext(ctx).Model(&models.Contract{}).
		Select("COALESCE(SUM(cost_amount), 0)").
		Where("client_id = ?", clientID).
		Where("end_date IS NULL OR end_date > ?", today).
		Scan(&total)
	if result.Error != nil {
		return decimal.Zero, result.Error
	}
	return total, nil
}

func (r *Repository) DeleteContractsByClient(ctx context.Context, clientID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Contract{}, "client_id = ?", clientID)
	return result.Error
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
