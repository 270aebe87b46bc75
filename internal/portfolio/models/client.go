// Package models defines the core domain models for the portfolio service:
// insurance clients (individuals and companies) and the contracts they own.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientType discriminates between individual and company clients.
type ClientType string

const (
	// Person is an individual client identified by a birthdate.
	Person ClientType = "PERSON"
	// Company is a corporate client identified by a company identifier.
	Company ClientType = "COMPANY"
)

// Client defines the domain model for an insurance client.
// Exactly one of Birthdate/CompanyIdentifier is populated, determined by
// ClientType; both are frozen after creation.
type Client struct {
	// ID is the unique identifier for the client.
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// ClientType is either PERSON or COMPANY.
	ClientType ClientType `gorm:"size:10;not null"`
	// Name is the client's full or legal name.
	Name string `gorm:"size:100;not null"`
	// Email is the client's contact email address.
	Email string `gorm:"size:255;not null"`
	// Phone is the client's phone number in international format.
	Phone string `gorm:"size:20;not null"`
	// Birthdate is set for PERSON clients only.
	Birthdate *time.Time
	// CompanyIdentifier is set for COMPANY clients only (format aaa-123).
	CompanyIdentifier *string `gorm:"size:10"`
	// Contracts holds the contracts owned by this client.
	Contracts []Contract `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	// CreatedAt records when the client row was created.
	CreatedAt time.Time
	// UpdatedAt records when the client row was last updated.
	UpdatedAt time.Time
}

// ClientUpdate represents the fields that can be updated for a Client.
// Birthdate and CompanyIdentifier are deliberately absent: type-specific
// identity fields are immutable after creation.
type ClientUpdate struct {
	// ID is the unique identifier for the client to update.
	ID uuid.UUID
	// ClientType is the new client type.
	ClientType *ClientType
	// Name is the new name.
	Name *string
	// Email is the new email address.
	Email *string
	// Phone is the new phone number.
	Phone *string
}

// Contract defines an insurance contract owned by a client. A contract is
// active while EndDate is nil or strictly after the current date; the status
// is derived at query time and never stored.
type Contract struct {
	// ID is the unique identifier for the contract.
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// ClientID references the owning client.
	ClientID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Client is the owning client, loaded only on demand.
	Client *Client `gorm:"foreignKey:ClientID"`
	// StartDate is the day the contract takes effect.
	StartDate time.Time `gorm:"not null"`
	// EndDate terminates the contract; nil means currently active.
	EndDate *time.Time
	// CostAmount is the contract cost, strictly positive, two decimals.
	CostAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// UpdateDate is refreshed by the service on every create/update.
	UpdateDate time.Time `gorm:"not null"`
}
