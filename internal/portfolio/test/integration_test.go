package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mbocion/polis/internal/portfolio/auth"
	"github.com/mbocion/polis/internal/portfolio/controller"
	"github.com/mbocion/polis/internal/portfolio/db"
	"github.com/mbocion/polis/internal/portfolio/events"
	"github.com/mbocion/polis/internal/portfolio/handlers"
	"github.com/mbocion/polis/internal/portfolio/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal("opening test database:", err)
	}
	return gdb
}

// recordingProducer satisfies the event producer interface without a broker.
type recordingProducer struct {
	mu     sync.Mutex
	events []events.EventType
}

func (p *recordingProducer) ProduceClient(eventType events.EventType, _ *models.Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func (p *recordingProducer) ProduceContract(eventType events.EventType, _ *models.Contract) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

type APITestSuite struct {
	suite.Suite
	repo     *db.Repository
	producer *recordingProducer
	router   *gin.Engine
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (s *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	repo, err := db.NewRepositoryWithDB(testDB(s.T()))
	if err != nil {
		s.T().Fatal("repository initialization failed:", err)
	}
	s.repo = repo
	s.producer = &recordingProducer{}

	clientService := controller.NewClientService(repo, s.producer, logger)
	contractService := controller.NewContractService(repo, s.producer, logger)

	s.router = handlers.NewRouter(handlers.RouterConfig{
		ClientHandler:   handlers.NewClientHandler(clientService, logger),
		ContractHandler: handlers.NewContractHandler(contractService, logger),
	})
}

func (s *APITestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *APITestSuite) decode(w *httptest.ResponseRecorder, out any) {
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		s.T().Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
}

// TestClientContractLifecycle walks a full portfolio workflow over the HTTP
// surface: client creation, contract creation with a defaulted start date,
// cost aggregation, a cost update, and finally client deletion.
func (s *APITestSuite) TestClientContractLifecycle() {
	w := s.do(http.MethodPost, "/api/clients", map[string]any{
		"clientType": "PERSON",
		"name":       "Jean Dupont",
		"email":      "jean.dupont@example.ch",
		"phone":      "+41791234567",
		"birthdate":  "1985-04-12",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var client struct {
		ID        string  `json:"id"`
		Birthdate *string `json:"birthdate"`
	}
	s.decode(w, &client)
	s.Require().NotEmpty(client.ID)
	s.Require().NotNil(client.Birthdate)
	s.Equal("1985-04-12", *client.Birthdate)

	w = s.do(http.MethodPost, "/api/contracts", map[string]any{
		"clientId":   client.ID,
		"costAmount": "1200.00",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var contract struct {
		ID        string  `json:"id"`
		StartDate string  `json:"startDate"`
		EndDate   *string `json:"endDate"`
	}
	s.decode(w, &contract)
	s.NotEmpty(contract.StartDate)
	s.Nil(contract.EndDate)

	w = s.do(http.MethodGet, "/api/contracts/client/"+client.ID+"/total-cost", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var total struct {
		ClientID        string          `json:"clientId"`
		TotalCostAmount decimal.Decimal `json:"totalCostAmount"`
	}
	s.decode(w, &total)
	s.Equal(client.ID, total.ClientID)
	s.True(total.TotalCostAmount.Equal(decimal.RequireFromString("1200.00")),
		"expected total 1200.00, got %s", total.TotalCostAmount)

	w = s.do(http.MethodPatch, "/api/contracts/"+contract.ID+"/cost", map[string]any{
		"costAmount": "1500.50",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/contracts/client/"+client.ID+"/total-cost", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &total)
	s.True(total.TotalCostAmount.Equal(decimal.RequireFromString("1500.50")),
		"expected total 1500.50, got %s", total.TotalCostAmount)

	w = s.do(http.MethodDelete, "/api/clients/"+client.ID, nil)
	s.Require().Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/clients/"+client.ID, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/contracts/client/"+client.ID, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APITestSuite) TestCompanyIdentifierRules() {
	w := s.do(http.MethodPost, "/api/clients", map[string]any{
		"clientType": "COMPANY",
		"name":       "Horlogerie Test SA",
		"email":      "contact@horlogerie.ch",
		"phone":      "+41229876543",
	})
	s.Equal(http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/clients", map[string]any{
		"clientType":        "COMPANY",
		"name":              "Horlogerie Test SA",
		"email":             "contact@horlogerie.ch",
		"phone":             "+41229876543",
		"companyIdentifier": "hts-001",
	})
	s.Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (s *APITestSuite) TestStructuralValidationErrors() {
	w := s.do(http.MethodPost, "/api/clients", map[string]any{
		"clientType": "ROBOT",
		"name":       "X",
		"email":      "not-an-email",
		"phone":      "123",
	})
	s.Require().Equal(http.StatusBadRequest, w.Code)

	var resp struct {
		Errors []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	s.decode(w, &resp)
	s.Len(resp.Errors, 4)
}

func (s *APITestSuite) TestContractForUnknownClient() {
	w := s.do(http.MethodPost, "/api/contracts", map[string]any{
		"clientId":   "0b36d1f7-8c5b-4f6b-9a38-2f44c0a9f2ab",
		"costAmount": "100",
	})
	s.Equal(http.StatusNotFound, w.Code, w.Body.String())
}

func (s *APITestSuite) TestUpdateIgnoresImmutableFields() {
	w := s.do(http.MethodPost, "/api/clients", map[string]any{
		"clientType": "PERSON",
		"name":       "Claire Fontaine",
		"email":      "claire@example.ch",
		"phone":      "+41760000000",
		"birthdate":  "1992-09-01",
	})
	s.Require().Equal(http.StatusCreated, w.Code)

	var client struct {
		ID string `json:"id"`
	}
	s.decode(w, &client)

	w = s.do(http.MethodPut, "/api/clients/"+client.ID, map[string]any{
		"clientType": "PERSON",
		"name":       "Claire Martin",
		"email":      "claire.martin@example.ch",
		"phone":      "+41760000001",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var updated struct {
		Name      string  `json:"name"`
		Birthdate *string `json:"birthdate"`
	}
	s.decode(w, &updated)
	s.Equal("Claire Martin", updated.Name)
	s.Require().NotNil(updated.Birthdate)
	s.Equal("1992-09-01", *updated.Birthdate)
}

func TestAuthGuardsMutations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	repo, err := db.NewRepositoryWithDB(testDB(t))
	if err != nil {
		t.Fatal("repository initialization failed:", err)
	}
	producer := &recordingProducer{}

	clientService := controller.NewClientService(repo, producer, logger)
	contractService := controller.NewContractService(repo, producer, logger)

	router := handlers.NewRouter(handlers.RouterConfig{
		ClientHandler:   handlers.NewClientHandler(clientService, logger),
		ContractHandler: handlers.NewContractHandler(contractService, logger),
		AuthMiddleware:  auth.NewMiddleware("integration-secret"),
	})

	body, _ := json.Marshal(map[string]any{
		"clientType": "PERSON",
		"name":       "Jean Dupont",
		"email":      "jean@example.ch",
		"phone":      "+41791234567",
		"birthdate":  "1985-04-12",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/clients", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for read without token, got %d", w.Code)
	}

	token, err := auth.GenerateToken("integration", "integration-secret")
	if err != nil {
		t.Fatal("generating token:", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/api/clients", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 with token, got %d: %s", w.Code, w.Body.String())
	}
}
