// Package seed populates the database with synthetic clients and contracts
// for local development.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mbocion/polis/internal/portfolio/controller"
	"github.com/mbocion/polis/internal/portfolio/models"
	"github.com/mbocion/polis/internal/pkg/utils"
)

const (
	individualClientCount = 15
	companyClientCount    = 10
	minContractsPerClient = 1
	maxContractsPerClient = 3
)

var companySuffixes = []string{"SA", "Sàrl", "AG", "GmbH", "& Co"}

// Seeder writes synthetic data through the repository.
type Seeder struct {
	repo   controller.Repository
	logger *zap.Logger
}

// NewSeeder constructs a Seeder with a repository and a logger.
func NewSeeder(repo controller.Repository, logger *zap.Logger) *Seeder {
	return &Seeder{
		repo:   repo,
		logger: logger.Named("seeder"),
	}
}

// Run seeds clients and contracts unless the database already holds data.
func (s *Seeder) Run(ctx context.Context) error {
	count, err := s.repo.CountClients(ctx)
	if err != nil {
		return fmt.Errorf("failed to count clients: %w", err)
	}
	if count > 0 {
		s.logger.Info("Database already contains data, skipping seeding")
		return nil
	}

	s.logger.Info("Starting data seeding",
		zap.Int("individuals", individualClientCount),
		zap.Int("companies", companyClientCount),
	)

	clients := make([]*models.Client, 0, individualClientCount+companyClientCount)
	for i := 0; i < individualClientCount; i++ {
		clients = append(clients, s.individualClient())
	}
	for i := 0; i < companyClientCount; i++ {
		clients = append(clients, s.companyClient())
	}

	contractCount := 0
	for _, client := range clients {
		if err := s.repo.CreateClient(ctx, client); err != nil {
			return fmt.Errorf("failed to seed client: %w", err)
		}
		n := gofakeit.Number(minContractsPerClient, maxContractsPerClient)
		for i := 0; i < n; i++ {
			// The first contract is always active, the rest with 70% odds.
			active := i == 0 || gofakeit.Number(0, 99) < 70
			contract := s.contract(client, active)
			if err := s.repo.CreateContract(ctx, contract); err != nil {
				return fmt.Errorf("failed to seed contract: %w", err)
			}
			contractCount++
		}
	}

	s.logger.Info("Data seeding completed",
		zap.Int("clients", len(clients)),
		zap.Int("contracts", contractCount),
	)
	return nil
}

func (s *Seeder) individualClient() *models.Client {
	return &models.Client{
		ID:         uuid.New(),
		ClientType: models.Person,
		Name:       gofakeit.Name(),
		Email:      gofakeit.Email(),
		Phone:      swissPhone(),
		Birthdate:  utils.Ptr(birthdate()),
	}
}

func (s *Seeder) companyClient() *models.Client {
	suffix := companySuffixes[gofakeit.Number(0, len(companySuffixes)-1)]
	return &models.Client{
		ID:                uuid.New(),
		ClientType:        models.Company,
		Name:              gofakeit.Company() + " " + suffix,
		Email:             gofakeit.Email(),
		Phone:             swissPhone(),
		CompanyIdentifier: utils.Ptr(companyIdentifier()),
	}
}

func (s *Seeder) contract(client *models.Client, active bool) *models.Contract {
	now := time.Now()
	startDate := now.AddDate(0, 0, -gofakeit.Number(30, 1095)).Truncate(24 * time.Hour)

	var endDate *time.Time
	if !active {
		end := gofakeit.DateRange(startDate.AddDate(0, 0, 1), now)
		endDate = &end
	}

	var cost decimal.Decimal
	switch client.ClientType {
	case models.Person:
		cost = decimal.NewFromInt(int64(gofakeit.Number(500, 3000)))
	case models.Company:
		cost = decimal.NewFromInt(int64(gofakeit.Number(5000, 30000)))
	}

	return &models.Contract{
		ID:         uuid.New(),
		ClientID:   client.ID,
		StartDate:  startDate,
		EndDate:    endDate,
		CostAmount: cost,
		UpdateDate: now,
	}
}

func swissPhone() string {
	return fmt.Sprintf("+4179%07d", gofakeit.Number(0, 9999999))
}

func birthdate() time.Time {
	age := gofakeit.Number(18, 80)
	return time.Now().AddDate(-age, 0, -gofakeit.Number(0, 364))
}

func companyIdentifier() string {
	letters := make([]byte, 3)
	for i := range letters {
		letters[i] = byte('a' + gofakeit.Number(0, 25))
	}
	return fmt.Sprintf("%s-%03d", letters, gofakeit.Number(100, 999))
}
