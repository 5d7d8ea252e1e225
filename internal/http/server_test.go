package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tally/internal/middleware/ratelimit"
	"tally/internal/services"
	"tally/internal/storage"
)

// newTestServer wires the full stack over a throwaway SQLite database. No
// publisher and no limiter unless the test asks for one.
func newTestServer(t *testing.T, limiter *ratelimit.Limiter) http.Handler {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	secret := []byte("test-secret")
	srv := NewServer(":0", Deps{
		Accounts:     services.NewAccountService(repo, secret, time.Hour),
		Categories:   services.NewCategoryService(repo),
		Sources:      services.NewSourceService(repo),
		Expenses:     services.NewExpenseService(repo, repo, nil),
		Incomes:      services.NewIncomeService(repo, repo, nil),
		Summaries:    services.NewSummaryService(repo, repo),
		JWTSecret:    secret,
		LoginLimiter: limiter,
	})
	return srv.Handler
}

func doJSON(t *testing.T, h http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var decoded map[string]any
	if rr.Body.Len() > 0 {
		_ = json.Unmarshal(rr.Body.Bytes(), &decoded)
	}
	return rr, decoded
}

// registerAndLogin creates an account and returns its id and access token.
func registerAndLogin(t *testing.T, h http.Handler, username string) (id, token string) {
	t.Helper()

	rr, body := doJSON(t, h, http.MethodPost, "/users/register", "",
		fmt.Sprintf(`{"username":%q,"email":"%s@example.com","password":"hunter2"}`, username, username))
	if rr.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", username, rr.Code, rr.Body.String())
	}
	data := body["data"].(map[string]any)
	id = data["id"].(string)

	rr, body = doJSON(t, h, http.MethodPost, "/auth/login", "",
		fmt.Sprintf(`{"username":%q,"password":"hunter2"}`, username))
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, rr.Code, rr.Body.String())
	}
	token = body["access_token"].(string)
	return id, token
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestServer(t, nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr, _ := doJSON(t, h, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rr.Code)
		}
	}
}

func TestAuthRequired(t *testing.T) {
	h := newTestServer(t, nil)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/categories"},
		{http.MethodGet, "/expenses"},
		{http.MethodGet, "/summary"},
		{http.MethodGet, "/users"},
	}
	for _, p := range paths {
		rr, _ := doJSON(t, h, p.method, p.path, "", "")
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status = %d, want 401", p.method, p.path, rr.Code)
		}
	}

	rr, _ := doJSON(t, h, http.MethodGet, "/categories", "garbage-token", "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", rr.Code)
	}
}

func TestRegisterConflictAndLogin(t *testing.T) {
	h := newTestServer(t, nil)
	registerAndLogin(t, h, "mario")

	// Same username, fresh email.
	rr, _ := doJSON(t, h, http.MethodPost, "/users/register", "",
		`{"username":"mario","email":"fresh@example.com","password":"p"}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("username conflict status = %d, want 409", rr.Code)
	}

	// Same email, fresh username.
	rr, _ = doJSON(t, h, http.MethodPost, "/users/register", "",
		`{"username":"luigi","email":"mario@example.com","password":"p"}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("email conflict status = %d, want 409", rr.Code)
	}

	// Wrong password.
	rr, _ = doJSON(t, h, http.MethodPost, "/auth/login", "",
		`{"username":"mario","password":"wrong"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", rr.Code)
	}

	// Malformed body.
	rr, _ = doJSON(t, h, http.MethodPost, "/users/register", "", `{"username":`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("malformed body status = %d, want 422", rr.Code)
	}
}

func TestExpenseLifecycle(t *testing.T) {
	h := newTestServer(t, nil)
	_, token := registerAndLogin(t, h, "mario")

	rr, body := doJSON(t, h, http.MethodPost, "/categories", token, `{"name":"food"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create category: status %d body %s", rr.Code, rr.Body.String())
	}
	categoryID := body["data"].(map[string]any)["id"].(string)

	rr, body = doJSON(t, h, http.MethodPost, "/expenses", token,
		fmt.Sprintf(`{"amount":12.5,"description":"groceries","category_id":%q}`, categoryID))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create expense: status %d body %s", rr.Code, rr.Body.String())
	}
	data := body["data"].(map[string]any)
	expenseID := data["id"].(string)
	if data["amount"].(float64) != 12.5 {
		t.Errorf("amount = %v, want 12.5", data["amount"])
	}
	if data["category"].(map[string]any)["name"] != "food" {
		t.Errorf("joined category = %v", data["category"])
	}

	rr, _ = doJSON(t, h, http.MethodGet, "/expenses", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list expenses: status %d", rr.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("list = %s, want one entry", rr.Body.String())
	}

	rr, body = doJSON(t, h, http.MethodPatch, "/expenses/"+expenseID, token, `{"description":"weekly groceries"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("patch expense: status %d body %s", rr.Code, rr.Body.String())
	}
	if body["data"].(map[string]any)["description"] != "weekly groceries" {
		t.Errorf("patched description = %v", body["data"])
	}

	rr, _ = doJSON(t, h, http.MethodDelete, "/expenses/"+expenseID, token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete expense: status %d", rr.Code)
	}
	rr, _ = doJSON(t, h, http.MethodDelete, "/expenses/"+expenseID, token, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rr.Code)
	}
}

func TestExpenseRejectsForeignCategory(t *testing.T) {
	h := newTestServer(t, nil)
	_, marioToken := registerAndLogin(t, h, "mario")
	_, luigiToken := registerAndLogin(t, h, "luigi")

	rr, body := doJSON(t, h, http.MethodPost, "/categories", marioToken, `{"name":"food"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create category: status %d", rr.Code)
	}
	marioCategory := body["data"].(map[string]any)["id"].(string)

	rr, _ = doJSON(t, h, http.MethodPost, "/expenses", luigiToken,
		fmt.Sprintf(`{"amount":5,"description":"sneaky","category_id":%q}`, marioCategory))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("foreign category status = %d, want 422", rr.Code)
	}

	rr, _ = doJSON(t, h, http.MethodPost, "/expenses", luigiToken,
		`{"amount":5,"description":"x","category_id":"no-such-id"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown category status = %d, want 422", rr.Code)
	}
}

func TestCombinedSummaryEndpoint(t *testing.T) {
	h := newTestServer(t, nil)
	_, token := registerAndLogin(t, h, "mario")

	rr, body := doJSON(t, h, http.MethodPost, "/categories", token, `{"name":"food"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create category: status %d", rr.Code)
	}
	categoryID := body["data"].(map[string]any)["id"].(string)

	rr, body = doJSON(t, h, http.MethodPost, "/sources", token, `{"name":"salary"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create source: status %d", rr.Code)
	}
	sourceID := body["data"].(map[string]any)["id"].(string)

	rr, _ = doJSON(t, h, http.MethodPost, "/expenses", token,
		fmt.Sprintf(`{"amount":25,"description":"dinner","category_id":%q}`, categoryID))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create expense: status %d", rr.Code)
	}
	rr, _ = doJSON(t, h, http.MethodPost, "/incomes", token,
		fmt.Sprintf(`{"amount":100,"description":"pay","source_id":%q}`, sourceID))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create income: status %d body %s", rr.Code, rr.Body.String())
	}

	rr, body = doJSON(t, h, http.MethodGet, "/summary?type=today", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary: status %d body %s", rr.Code, rr.Body.String())
	}
	if body["totalExpenses"].(float64) != 25 || body["totalIncomes"].(float64) != 100 {
		t.Errorf("totals = %v/%v, want 25/100", body["totalExpenses"], body["totalIncomes"])
	}
	if body["netBalance"].(float64) != 75 {
		t.Errorf("netBalance = %v, want 75", body["netBalance"])
	}
	if body["expenseCount"].(float64) != 1 || body["incomeCount"].(float64) != 1 {
		t.Errorf("counts = %v/%v, want 1/1", body["expenseCount"], body["incomeCount"])
	}

	// Unknown range tag falls back to today rather than failing.
	rr, _ = doJSON(t, h, http.MethodGet, "/summary?type=decade", token, "")
	if rr.Code != http.StatusOK {
		t.Errorf("unknown range status = %d, want 200", rr.Code)
	}
}

func TestAccountPolicyOverHTTP(t *testing.T) {
	h := newTestServer(t, nil)
	marioID, marioToken := registerAndLogin(t, h, "mario")
	luigiID, luigiToken := registerAndLogin(t, h, "luigi")

	// Self read works.
	rr, _ := doJSON(t, h, http.MethodGet, "/users/"+marioID, marioToken, "")
	if rr.Code != http.StatusOK {
		t.Errorf("self read status = %d, want 200", rr.Code)
	}

	// Foreign read and listing are forbidden for standard accounts.
	rr, _ = doJSON(t, h, http.MethodGet, "/users/"+luigiID, marioToken, "")
	if rr.Code != http.StatusForbidden {
		t.Errorf("foreign read status = %d, want 403", rr.Code)
	}
	rr, _ = doJSON(t, h, http.MethodGet, "/users", luigiToken, "")
	if rr.Code != http.StatusForbidden {
		t.Errorf("listing status = %d, want 403", rr.Code)
	}
}

func TestLoginRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: 3})
	t.Cleanup(limiter.Stop)
	h := newTestServer(t, limiter)

	body := `{"username":"ghost","password":"nope"}`
	for i := 0; i < 3; i++ {
		rr, _ := doJSON(t, h, http.MethodPost, "/auth/login", "", body)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d, want 401", i+1, rr.Code)
		}
	}

	rr, _ := doJSON(t, h, http.MethodPost, "/auth/login", "", body)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("throttled attempt status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("throttled response should carry Retry-After")
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestServer(t, nil)
	rr, _ := doJSON(t, h, http.MethodGet, "/healthz", "", "")
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("responses should carry a request id")
	}
}
