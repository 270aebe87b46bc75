package handlers

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// dateLayout is the civil-date format used by all request and response
// bodies; timestamps use RFC 3339.
const dateLayout = "2006-01-02"

var (
	emailPattern             = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern             = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	companyIdentifierPattern = regexp.MustCompile(`^[a-z]{3}-[0-9]{3}$`)
)

// FieldError describes a single structural validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ClientRequest is the payload for creating a client.
type ClientRequest struct {
	ClientType        string  `json:"clientType"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Phone             string  `json:"phone"`
	Birthdate         *string `json:"birthdate"`
	CompanyIdentifier *string `json:"companyIdentifier"`
}

// Validate checks every structural constraint on the creation payload and
// returns one error per offending field. The cross-field rule tying the
// client type to birthdate/companyIdentifier is enforced by the service.
func (r *ClientRequest) Validate() []FieldError {
	errs := validateClientCommon(r.ClientType, r.Name, r.Email, r.Phone)

	if r.Birthdate != nil {
		birthdate, err := time.Parse(dateLayout, *r.Birthdate)
		if err != nil {
			errs = append(errs, FieldError{"birthdate", "Birthdate must be a date in YYYY-MM-DD format"})
		} else if !birthdate.Before(time.Now()) {
			errs = append(errs, FieldError{"birthdate", "Birthdate must be in the past"})
		}
	}
	if r.CompanyIdentifier != nil && !companyIdentifierPattern.MatchString(*r.CompanyIdentifier) {
		errs = append(errs, FieldError{"companyIdentifier", "Company identifier must follow format: aaa-123"})
	}
	return errs
}

// ClientUpdateRequest is the payload for updating a client. Birthdate and
// companyIdentifier are not accepted here: they are immutable.
type ClientUpdateRequest struct {
	ClientType string `json:"clientType"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

// Validate checks every structural constraint on the update payload.
func (r *ClientUpdateRequest) Validate() []FieldError {
	return validateClientCommon(r.ClientType, r.Name, r.Email, r.Phone)
}

func validateClientCommon(clientType, name, email, phone string) []FieldError {
	var errs []FieldError
	switch clientType {
	case "":
		errs = append(errs, FieldError{"clientType", "Client type is required"})
	case "PERSON", "COMPANY":
	default:
		errs = append(errs, FieldError{"clientType", "Client type must be PERSON or COMPANY"})
	}
	if strings.TrimSpace(name) == "" {
		errs = append(errs, FieldError{"name", "Name is required"})
	} else if len(name) < 2 || len(name) > 100 {
		errs = append(errs, FieldError{"name", "Name must be between 2 and 100 characters"})
	}
	if strings.TrimSpace(email) == "" {
		errs = append(errs, FieldError{"email", "Email is required"})
	} else if !emailPattern.MatchString(email) {
		errs = append(errs, FieldError{"email", "Email must be valid"})
	}
	if strings.TrimSpace(phone) == "" {
		errs = append(errs, FieldError{"phone", "Phone is required"})
	} else if !phonePattern.MatchString(phone) {
		errs = append(errs, FieldError{"phone", "Phone must be valid (10-15 digits)"})
	}
	return errs
}

// ContractRequest is the payload for creating a contract.
type ContractRequest struct {
	ClientID   string           `json:"clientId"`
	StartDate  *string          `json:"startDate"`
	EndDate    *string          `json:"endDate"`
	CostAmount *decimal.Decimal `json:"costAmount"`
}

// Validate checks every structural constraint on the contract payload.
func (r *ContractRequest) Validate() []FieldError {
	var errs []FieldError
	if r.ClientID == "" {
		errs = append(errs, FieldError{"clientId", "Client ID is required"})
	} else if _, err := uuid.Parse(r.ClientID); err != nil {
		errs = append(errs, FieldError{"clientId", "Client ID must be a valid UUID"})
	}
	if r.StartDate != nil {
		if _, err := time.Parse(dateLayout, *r.StartDate); err != nil {
			errs = append(errs, FieldError{"startDate", "Start date must be a date in YYYY-MM-DD format"})
		}
	}
	if r.EndDate != nil {
		if _, err := time.Parse(dateLayout, *r.EndDate); err != nil {
			errs = append(errs, FieldError{"endDate", "End date must be a date in YYYY-MM-DD format"})
		}
	}
	errs = append(errs, validateCostAmount(r.CostAmount)...)
	return errs
}

// UpdateCostRequest is the payload for the contract cost patch.
type UpdateCostRequest struct {
	CostAmount *decimal.Decimal `json:"costAmount"`
}

// Validate checks the new cost amount.
func (r *UpdateCostRequest) Validate() []FieldError {
	return validateCostAmount(r.CostAmount)
}

func validateCostAmount(amount *decimal.Decimal) []FieldError {
	if amount == nil {
		return []FieldError{{"costAmount", "Cost amount is required"}}
	}
	if !amount.IsPositive() {
		return []FieldError{{"costAmount", "Cost must be greater than 0"}}
	}
	return nil
}

// ClientResponse is the API shape of a client. Type-specific identity
// fields are present only when set.
type ClientResponse struct {
	ID                string  `json:"id"`
	ClientType        string  `json:"clientType"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Phone             string  `json:"phone"`
	Birthdate         *string `json:"birthdate,omitempty"`
	CompanyIdentifier *string `json:"companyIdentifier,omitempty"`
}

// ContractResponse is the API shape of a contract; the system-managed
// update timestamp is deliberately not exposed.
type ContractResponse struct {
	ID         string          `json:"id"`
	ClientID   string          `json:"clientId"`
	StartDate  string          `json:"startDate"`
	EndDate    *string         `json:"endDate"`
	CostAmount decimal.Decimal `json:"costAmount"`
}

// CostTotalResponse reports the summed cost of a client's active contracts.
type CostTotalResponse struct {
	ClientID        string          `json:"clientId"`
	TotalCostAmount decimal.Decimal `json:"totalCostAmount"`
}
