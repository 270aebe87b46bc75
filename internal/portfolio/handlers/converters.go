package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/mbocion/polis/internal/portfolio/models"
	"github.com/mbocion/polis/internal/pkg/utils"
)

// clientFromRequest converts a validated creation payload into the domain
// model. Dates have already been checked by Validate.
func clientFromRequest(req *ClientRequest) *models.Client {
	client := &models.Client{
		ClientType: models.ClientType(req.ClientType),
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
	}
	if req.Birthdate != nil {
		birthdate, _ := time.Parse(dateLayout, *req.Birthdate)
		client.Birthdate = &birthdate
	}
	if req.CompanyIdentifier != nil {
		client.CompanyIdentifier = utils.Ptr(*req.CompanyIdentifier)
	}
	return client
}

// clientUpdateFromRequest converts a validated update payload into the
// partial-update model; immutable fields have no representation here.
func clientUpdateFromRequest(id uuid.UUID, req *ClientUpdateRequest) *models.ClientUpdate {
	return &models.ClientUpdate{
		ID:         id,
		ClientType: utils.Ptr(models.ClientType(req.ClientType)),
		Name:       &req.Name,
		Email:      &req.Email,
		Phone:      &req.Phone,
	}
}

// contractFromRequest converts a validated contract payload into the domain
// model. A missing start date is left zero for the service to default.
func contractFromRequest(req *ContractRequest) *models.Contract {
	contract := &models.Contract{
		ClientID:   uuid.MustParse(req.ClientID),
		CostAmount: *req.CostAmount,
	}
	if req.StartDate != nil {
		startDate, _ := time.Parse(dateLayout, *req.StartDate)
		contract.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, _ := time.Parse(dateLayout, *req.EndDate)
		contract.EndDate = &endDate
	}
	return contract
}

func toClientResponse(client *models.Client) *ClientResponse {
	resp := &ClientResponse{
		ID:         client.ID.String(),
		ClientType: string(client.ClientType),
		Name:       client.Name,
		Email:      client.Email,
		Phone:      client.Phone,
	}
	if client.Birthdate != nil {
		resp.Birthdate = utils.Ptr(client.Birthdate.Format(dateLayout))
	}
	if client.CompanyIdentifier != nil {
		resp.CompanyIdentifier = utils.Ptr(*client.CompanyIdentifier)
	}
	return resp
}

func toClientResponses(clients []*models.Client) []*ClientResponse {
	responses := make([]*ClientResponse, 0, len(clients))
	for _, client := range clients {
		responses = append(responses, toClientResponse(client))
	}
	return responses
}

func toContractResponse(contract *models.Contract) *ContractResponse {
	resp := &ContractResponse{
		ID:         contract.ID.String(),
		ClientID:   contract.ClientID.String(),
		StartDate:  contract.StartDate.Format(dateLayout),
		CostAmount: contract.CostAmount,
	}
	if contract.EndDate != nil {
		resp.EndDate = utils.Ptr(contract.EndDate.Format(dateLayout))
	}
	return resp
}

func toContractResponses(contracts []*models.Contract) []*ContractResponse {
	responses := make([]*ContractResponse, 0, len(contracts))
	for _, contract := range contracts {
		responses = append(responses, toContractResponse(contract))
	}
	return responses
}

// parseUpdateDateFilter accepts the optional updateDate query parameter as
// RFC 3339 or a bare local timestamp.
func parseUpdateDateFilter(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		ts, err = time.Parse("2006-01-02T15:04:05", raw)
		if err != nil {
			return nil, err
		}
	}
	return &ts, nil
}
