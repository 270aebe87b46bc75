package handlers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mbocion/polis/internal/pkg/utils"
	"github.com/mbocion/polis/internal/portfolio/models"
)

func TestClientFromRequest(t *testing.T) {
	req := &ClientRequest{
		ClientType: "PERSON",
		Name:       "Jean Dupont",
		Email:      "jean@example.ch",
		Phone:      "+41791234567",
		Birthdate:  utils.Ptr("1990-06-15"),
	}

	client := clientFromRequest(req)
	if client.ClientType != models.Person {
		t.Errorf("expected client type %q, got %q", models.Person, client.ClientType)
	}
	if client.Name != req.Name || client.Email != req.Email || client.Phone != req.Phone {
		t.Errorf("contact fields not carried over: %+v", client)
	}
	if client.Birthdate == nil || client.Birthdate.Format(dateLayout) != "1990-06-15" {
		t.Errorf("expected birthdate 1990-06-15, got %v", client.Birthdate)
	}
	if client.CompanyIdentifier != nil {
		t.Errorf("expected nil company identifier, got %v", *client.CompanyIdentifier)
	}
}

func TestClientFromRequestCompany(t *testing.T) {
	req := &ClientRequest{
		ClientType:        "COMPANY",
		Name:              "Assurance Test SA",
		Email:             "contact@test.ch",
		Phone:             "+41229876543",
		CompanyIdentifier: utils.Ptr("abc-123"),
	}

	client := clientFromRequest(req)
	if client.ClientType != models.Company {
		t.Errorf("expected client type %q, got %q", models.Company, client.ClientType)
	}
	if client.Birthdate != nil {
		t.Errorf("expected nil birthdate, got %v", client.Birthdate)
	}
	if client.CompanyIdentifier == nil || *client.CompanyIdentifier != "abc-123" {
		t.Errorf("expected company identifier abc-123, got %v", client.CompanyIdentifier)
	}
}

func TestClientUpdateFromRequest(t *testing.T) {
	id := uuid.New()
	req := &ClientUpdateRequest{
		ClientType: "PERSON",
		Name:       "Jean Dupont",
		Email:      "jean@example.ch",
		Phone:      "+41791234567",
	}

	update := clientUpdateFromRequest(id, req)
	if update.ID != id {
		t.Errorf("expected ID %s, got %s", id, update.ID)
	}
	if update.ClientType == nil || *update.ClientType != models.Person {
		t.Errorf("expected client type pointer, got %v", update.ClientType)
	}
	if update.Name == nil || *update.Name != req.Name {
		t.Errorf("expected name %q, got %v", req.Name, update.Name)
	}
}

func TestContractFromRequest(t *testing.T) {
	clientID := uuid.New()
	cost := decimal.RequireFromString("1200.00")
	req := &ContractRequest{
		ClientID:   clientID.String(),
		StartDate:  utils.Ptr("2024-03-15"),
		EndDate:    utils.Ptr("2025-03-15"),
		CostAmount: &cost,
	}

	contract := contractFromRequest(req)
	if contract.ClientID != clientID {
		t.Errorf("expected client ID %s, got %s", clientID, contract.ClientID)
	}
	if contract.StartDate.Format(dateLayout) != "2024-03-15" {
		t.Errorf("unexpected start date %v", contract.StartDate)
	}
	if contract.EndDate == nil || contract.EndDate.Format(dateLayout) != "2025-03-15" {
		t.Errorf("unexpected end date %v", contract.EndDate)
	}
	if !contract.CostAmount.Equal(cost) {
		t.Errorf("expected cost %s, got %s", cost, contract.CostAmount)
	}
}

func TestContractFromRequestOmittedDates(t *testing.T) {
	cost := decimal.RequireFromString("500")
	req := &ContractRequest{ClientID: uuid.New().String(), CostAmount: &cost}

	contract := contractFromRequest(req)
	if !contract.StartDate.IsZero() {
		t.Errorf("expected zero start date, got %v", contract.StartDate)
	}
	if contract.EndDate != nil {
		t.Errorf("expected nil end date, got %v", contract.EndDate)
	}
}

func TestToClientResponse(t *testing.T) {
	birthdate := time.Date(1985, 2, 28, 0, 0, 0, 0, time.UTC)
	client := &models.Client{
		ID:         uuid.New(),
		ClientType: models.Person,
		Name:       "Marie Curie",
		Email:      "marie@example.ch",
		Phone:      "+41790000001",
		Birthdate:  &birthdate,
		UpdatedAt:  time.Now(),
	}

	resp := toClientResponse(client)
	if resp.ID != client.ID.String() {
		t.Errorf("expected ID %s, got %s", client.ID, resp.ID)
	}
	if resp.Birthdate == nil || *resp.Birthdate != "1985-02-28" {
		t.Errorf("expected birthdate 1985-02-28, got %v", resp.Birthdate)
	}
	if resp.CompanyIdentifier != nil {
		t.Errorf("expected nil company identifier, got %v", resp.CompanyIdentifier)
	}
}

func TestToContractResponse(t *testing.T) {
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	contract := &models.Contract{
		ID:         uuid.New(),
		ClientID:   uuid.New(),
		StartDate:  time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		EndDate:    &end,
		CostAmount: decimal.RequireFromString("999.99"),
		UpdateDate: time.Now(),
	}

	resp := toContractResponse(contract)
	if resp.StartDate != "2024-01-31" {
		t.Errorf("unexpected start date %q", resp.StartDate)
	}
	if resp.EndDate == nil || *resp.EndDate != "2025-01-31" {
		t.Errorf("unexpected end date %v", resp.EndDate)
	}
	if !resp.CostAmount.Equal(contract.CostAmount) {
		t.Errorf("expected cost %s, got %s", contract.CostAmount, resp.CostAmount)
	}
}

func TestParseUpdateDateFilter(t *testing.T) {
	ts, err := parseUpdateDateFilter("")
	if err != nil || ts != nil {
		t.Errorf("expected nil for empty input, got %v, %v", ts, err)
	}

	ts, err = parseUpdateDateFilter("2024-06-01T12:30:00Z")
	if err != nil {
		t.Fatalf("RFC 3339 input failed: %v", err)
	}
	if ts.Hour() != 12 || ts.Minute() != 30 {
		t.Errorf("unexpected timestamp %v", ts)
	}

	ts, err = parseUpdateDateFilter("2024-06-01T12:30:00")
	if err != nil {
		t.Fatalf("bare timestamp input failed: %v", err)
	}
	if ts.Year() != 2024 {
		t.Errorf("unexpected timestamp %v", ts)
	}

	if _, err = parseUpdateDateFilter("yesterday"); err == nil {
		t.Error("expected error for malformed input")
	}
}
