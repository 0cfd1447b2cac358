package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iwvelando/build-estimator/internal/budget"
	"github.com/iwvelando/build-estimator/internal/catalog"
	"github.com/iwvelando/build-estimator/pkg/constants"
	"github.com/iwvelando/build-estimator/pkg/testutil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type brokenRepository struct {
	*budget.MemoryRepository
}

func (r *brokenRepository) Save(ctx context.Context, sessionID string, items []budget.Item) error {
	return errors.New("disk full")
}

func newTestHandler(t *testing.T, repo budget.Repository, maxBodySize int64) http.Handler {
	t.Helper()
	sessions := budget.NewSessions(repo, zap.NewNop(), budget.WithIDGenerator(testutil.SequentialIDs("item")))
	t.Cleanup(func() { _ = sessions.Close() })
	return NewHandler(zap.NewNop(), catalog.New(zap.NewNop(), catalog.Settings{}), sessions, maxBodySize, "1.2.3")
}

func do(t *testing.T, h http.Handler, method, target, session, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(constants.SessionHeader, session)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}

func TestHandleVersion(t *testing.T) {
	h := newTestHandler(t, nil, 0)

	rr := do(t, h, http.MethodGet, "/api/version", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp map[string]string
	decode(t, rr, &resp)
	if resp["version"] != "1.2.3" {
		t.Fatalf("expected version 1.2.3, got %q", resp["version"])
	}

	if rr := do(t, h, http.MethodPost, "/api/version", "", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestHandleVersionDefaultsToDev(t *testing.T) {
	h := NewHandler(nil, catalog.New(nil, catalog.Settings{}), budget.NewSessions(nil, nil), 0, "  ")
	var resp map[string]string
	decode(t, do(t, h, http.MethodGet, "/api/version", "", ""), &resp)
	if resp["version"] != "dev" {
		t.Fatalf("expected version dev, got %q", resp["version"])
	}
}

func TestHandleCalculators(t *testing.T) {
	h := newTestHandler(t, nil, 0)

	var list struct {
		Calculators []catalog.Calculator `json:"calculators"`
	}
	decode(t, do(t, h, http.MethodGet, "/api/calculators", "", ""), &list)
	if len(list.Calculators) != 13 || list.Calculators[0].Name != "paint" {
		t.Fatalf("unexpected calculators: %+v", list.Calculators)
	}

	rr := do(t, h, http.MethodGet, "/api/calculators/solar", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var calc catalog.Calculator
	decode(t, rr, &calc)
	if calc.Name != "solar" || len(calc.Fields) == 0 {
		t.Fatalf("unexpected calculator: %+v", calc)
	}

	if rr := do(t, h, http.MethodGet, "/api/calculators/jacuzzi", "", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestHandlePrices(t *testing.T) {
	h := newTestHandler(t, nil, 0)
	var resp struct {
		Prices map[string]float64 `json:"prices"`
	}
	decode(t, do(t, h, http.MethodGet, "/api/prices", "", ""), &resp)
	if len(resp.Prices) != len(catalog.DefaultPrices) {
		t.Fatalf("got %d prices, expected %d", len(resp.Prices), len(catalog.DefaultPrices))
	}
}

func TestHandleRunCalculator(t *testing.T) {
	h := newTestHandler(t, nil, 0)

	rr := do(t, h, http.MethodPost, "/api/calculators/paint", "alice",
		`{"inputs": {"wallLength": 20, "wallHeight": "2,7", "openingsArea": 4}, "addToBudget": true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Outcome struct {
			Calculator string         `json:"calculator"`
			Items      []budget.Item  `json:"items"`
			Lines      []catalog.Line `json:"lines"`
		} `json:"outcome"`
		Budget *budget.Snapshot `json:"budget"`
	}
	decode(t, rr, &resp)
	if resp.Outcome.Calculator != "paint" || len(resp.Outcome.Lines) == 0 {
		t.Fatalf("unexpected outcome: %+v", resp.Outcome)
	}
	if resp.Budget == nil || resp.Budget.TotalItems != len(resp.Outcome.Items) {
		t.Fatalf("budget should hold the paint drafts: %+v", resp.Budget)
	}

	// Another session sees an empty budget.
	var other budget.Snapshot
	decode(t, do(t, h, http.MethodGet, "/api/budget", "bob", ""), &other)
	if other.TotalItems != 0 {
		t.Fatalf("session bob should be empty, got %d items", other.TotalItems)
	}
}

func TestHandleRunCalculatorWithoutBudget(t *testing.T) {
	h := newTestHandler(t, nil, 0)

	rr := do(t, h, http.MethodPost, "/api/calculators/cooling", "", `{"inputs": {"area": 20}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]json.RawMessage
	decode(t, rr, &resp)
	if _, ok := resp["budget"]; ok {
		t.Fatal("budget should be omitted when nothing was added")
	}

	var snapshot budget.Snapshot
	decode(t, do(t, h, http.MethodGet, "/api/budget", "", ""), &snapshot)
	if snapshot.TotalItems != 0 {
		t.Fatalf("expected empty default budget, got %d items", snapshot.TotalItems)
	}
}

func TestHandleRunCalculatorErrors(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		body        string
		status      int
		expectField string
	}{
		{"Validation", "/api/calculators/paint", `{"inputs": {"wallLength": "0", "wallHeight": "3"}}`, http.StatusBadRequest, "wallLength"},
		{"Constraint", "/api/calculators/financing", `{"inputs": {"totalValue": 100, "downPayment": 200, "installments": 2}}`, http.StatusBadRequest, "downPayment"},
		{"Financing term too long", "/api/calculators/financing", `{"inputs": {"totalValue": 50000, "downPayment": 10000, "installments": 60000}}`, http.StatusBadRequest, "installments"},
		{"Financing absurd term", "/api/calculators/financing", `{"inputs": {"totalValue": 50000, "installments": 1e12}}`, http.StatusBadRequest, "installments"},
		{"Result beyond range", "/api/calculators/concrete", `{"inputs": {"length": 1e9, "width": 1e9, "thicknessCm": 1000}}`, http.StatusBadRequest, "length"},
		{"Unknown calculator", "/api/calculators/jacuzzi", `{"inputs": {}}`, http.StatusNotFound, ""},
		{"Malformed body", "/api/calculators/paint", `{"inputs": `, http.StatusBadRequest, ""},
		{"Unknown field", "/api/calculators/paint", `{"input": {}}`, http.StatusBadRequest, ""},
		{"Empty body", "/api/calculators/paint", ``, http.StatusBadRequest, ""},
	}

	h := newTestHandler(t, nil, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, tt.target, "", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			var resp errorResponse
			decode(t, rr, &resp)
			if resp.Error == "" {
				t.Fatal("expected error message")
			}
			if resp.Field != tt.expectField {
				t.Errorf("field = %q, expected %q", resp.Field, tt.expectField)
			}
		})
	}
}

func TestHandleRunCalculatorBodyTooLarge(t *testing.T) {
	h := newTestHandler(t, nil, 64)
	body := `{"inputs": {"wallLength": "` + strings.Repeat("1", 128) + `"}}`
	if rr := do(t, h, http.MethodPost, "/api/calculators/paint", "", body); rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rr.Code)
	}
}

func TestHandleBudgetItems(t *testing.T) {
	h := newTestHandler(t, nil, 0)

	rr := do(t, h, http.MethodPost, "/api/budget/items", "carol",
		`{"name": "Labour", "quantity": 1, "unit": "job", "category": "labour", "estimatedPrice": 4500}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var added budget.Item
	decode(t, rr, &added)
	if added.ID == "" || added.Name != "Labour" {
		t.Fatalf("unexpected item: %+v", added)
	}

	// A client-supplied id is replaced.
	rr = do(t, h, http.MethodPost, "/api/budget/items", "carol",
		`{"id": "mine", "name": "Skip hire", "quantity": 2, "unit": "unit", "category": "labour", "estimatedPrice": 700}`)
	var second budget.Item
	decode(t, rr, &second)
	if second.ID == "mine" || second.ID == added.ID {
		t.Fatalf("expected a fresh id, got %s", second.ID)
	}

	var snapshot budget.Snapshot
	decode(t, do(t, h, http.MethodGet, "/api/budget", "carol", ""), &snapshot)
	if snapshot.TotalItems != 2 || snapshot.TotalEstimatedValue != 5200 || len(snapshot.Groups) != 1 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}

	if rr := do(t, h, http.MethodDelete, "/api/budget/items/"+added.ID, "carol", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodDelete, "/api/budget/items/"+added.ID, "carol", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for a removed item, got %d", rr.Code)
	}

	if rr := do(t, h, http.MethodDelete, "/api/budget", "carol", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	decode(t, do(t, h, http.MethodGet, "/api/budget", "carol", ""), &snapshot)
	if snapshot.TotalItems != 0 || snapshot.TotalEstimatedValue != 0 {
		t.Fatalf("budget should be empty after clear: %+v", snapshot)
	}
}

func TestHandleAddItemValidation(t *testing.T) {
	tests := map[string]string{
		"Missing name":   `{"quantity": 1, "estimatedPrice": 10}`,
		"Zero quantity":  `{"name": "Tile", "quantity": 0, "estimatedPrice": 10}`,
		"Negative price": `{"name": "Tile", "quantity": 1, "estimatedPrice": -10}`,
		"Huge quantity":  `{"name": "Tile", "quantity": 1e300, "estimatedPrice": 10}`,
		"Wrong type":     `{"name": "Tile", "quantity": "lots"}`,
		"Unexpected key": `{"name": "Tile", "quantity": 1, "colour": "red"}`,
	}

	h := newTestHandler(t, nil, 0)
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if rr := do(t, h, http.MethodPost, "/api/budget/items", "", body); rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestHandleBudgetStorageFailure(t *testing.T) {
	h := newTestHandler(t, &brokenRepository{MemoryRepository: budget.NewMemoryRepository()}, 0)

	rr := do(t, h, http.MethodPost, "/api/budget/items", "",
		`{"name": "Labour", "quantity": 1, "estimatedPrice": 4500}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}

	var snapshot budget.Snapshot
	decode(t, do(t, h, http.MethodGet, "/api/budget", "", ""), &snapshot)
	if snapshot.TotalItems != 0 {
		t.Fatalf("failed save should roll back, got %d items", snapshot.TotalItems)
	}
}

func TestHandleExportBudget(t *testing.T) {
	h := newTestHandler(t, nil, 0)
	do(t, h, http.MethodPost, "/api/budget/items", "dave",
		`{"name": "Labour, finishing", "quantity": 1, "unit": "job", "category": "labour", "estimatedPrice": 4500}`)

	rr := do(t, h, http.MethodGet, "/api/budget/export", "dave", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("unexpected content type %s", rr.Header().Get("Content-Type"))
	}
	if !strings.Contains(rr.Header().Get("Content-Disposition"), "budget.csv") {
		t.Fatalf("unexpected disposition %s", rr.Header().Get("Content-Disposition"))
	}
	if !strings.Contains(rr.Body.String(), `"Labour, finishing"`) {
		t.Fatalf("CSV export missing quoted item:\n%s", rr.Body.String())
	}

	rr = do(t, h, http.MethodGet, "/api/budget/export?format=YAML", "dave", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var snapshot budget.Snapshot
	if err := yaml.Unmarshal(rr.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("YAML export did not parse: %v", err)
	}
	if snapshot.TotalItems != 1 || snapshot.TotalEstimatedValue != 4500 {
		t.Fatalf("unexpected YAML export: %+v", snapshot)
	}

	if rr := do(t, h, http.MethodGet, "/api/budget/export?format=pdf", "dave", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestSessionID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/budget", nil)
	if got := sessionID(req); got != constants.DefaultSessionID {
		t.Fatalf("sessionID() = %s, expected %s", got, constants.DefaultSessionID)
	}
	req.Header.Set(constants.SessionHeader, "  abc  ")
	if got := sessionID(req); got != "abc" {
		t.Fatalf("sessionID() = %q, expected abc", got)
	}
	req.Header.Set(constants.SessionHeader, strings.Repeat("x", 500))
	if got := sessionID(req); len(got) != maxSessionIDLength {
		t.Fatalf("sessionID() length = %d, expected %d", len(got), maxSessionIDLength)
	}
}

func TestCoerceText(t *testing.T) {
	tests := []struct {
		in       interface{}
		expected string
	}{
		{nil, ""},
		{"2,7", "2,7"},
		{float64(20), "20"},
		{0.15, "0.15"},
		{true, "true"},
		{[]interface{}{1}, "[1]"},
	}
	for _, tt := range tests {
		if got := coerceText(tt.in); got != tt.expected {
			t.Errorf("coerceText(%v) = %q, expected %q", tt.in, got, tt.expected)
		}
	}
}

func TestWriteJSONContentType(t *testing.T) {
	h := &handler{logger: zap.NewNop()}
	rr := httptest.NewRecorder()
	h.writeJSON(rr, http.StatusTeapot, map[string]int{"a": 1})
	if rr.Code != http.StatusTeapot || rr.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected response: %d %s", rr.Code, rr.Header().Get("Content-Type"))
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte(`"a":1`)) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestWriteJSONEncodingFailure(t *testing.T) {
	h := &handler{logger: zap.NewNop()}
	rr := httptest.NewRecorder()
	h.writeJSON(rr, http.StatusOK, map[string]float64{"installment": math.NaN()})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
	var resp errorResponse
	decode(t, rr, &resp)
	if resp.Error == "" {
		t.Fatal("expected error message")
	}
}

func TestHandleClearBudgetDeletesStoredBudget(t *testing.T) {
	repo := budget.NewMemoryRepository()
	h := newTestHandler(t, repo, 0)

	do(t, h, http.MethodPost, "/api/budget/items", "erin",
		`{"name": "Labour", "quantity": 1, "unit": "job", "category": "labour", "estimatedPrice": 4500}`)
	if _, err := repo.Load(context.Background(), "erin"); err != nil {
		t.Fatalf("budget should be stored after an add: %v", err)
	}

	if rr := do(t, h, http.MethodDelete, "/api/budget", "erin", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if _, err := repo.Load(context.Background(), "erin"); !errors.Is(err, budget.ErrNotFound) {
		t.Fatalf("Load() after clear error = %v, expected ErrNotFound", err)
	}
}
