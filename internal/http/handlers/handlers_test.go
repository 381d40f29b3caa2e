package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"taxfiling/internal/domain"
	"taxfiling/internal/middleware"
	"taxfiling/internal/service"
)

// In-memory repositories so handler tests run the real services end to end
// without a database.

type memUserRepo struct {
	users map[string]*domain.User
}

func (m *memUserRepo) Create(_ context.Context, u *domain.User) error {
	if _, ok := m.users[u.Email]; ok {
		return domain.ErrConflict
	}
	m.users[u.Email] = u
	return nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memBusinessRepo struct {
	byUser map[string]*domain.Business
	nextID int
}

func (m *memBusinessRepo) Create(_ context.Context, b *domain.Business) (*domain.Business, error) {
	created := *b
	created.ID = m.nextID
	m.nextID++
	m.byUser[created.UserID] = &created
	return &created, nil
}

func (m *memBusinessRepo) FindByUser(_ context.Context, userID string) (*domain.Business, error) {
	if b, ok := m.byUser[userID]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memBusinessRepo) Delete(_ context.Context, id int) error {
	for userID, b := range m.byUser {
		if b.ID == id {
			delete(m.byUser, userID)
		}
	}
	return nil
}

type memQuarterRepo struct {
	quarters map[string]*domain.QuarterlyUpdate
}

func (m *memQuarterRepo) InsertMany(_ context.Context, quarters []domain.QuarterlyUpdate) error {
	for i := range quarters {
		q := quarters[i]
		m.quarters[q.ID] = &q
	}
	return nil
}

func (m *memQuarterRepo) FindByBusiness(_ context.Context, businessID int) ([]domain.QuarterlyUpdate, error) {
	var items []domain.QuarterlyUpdate
	for _, q := range m.quarters {
		if q.BusinessID == businessID {
			items = append(items, *q)
		}
	}
	return items, nil
}

func (m *memQuarterRepo) FindOne(_ context.Context, id string, businessID int) (*domain.QuarterlyUpdate, error) {
	if q, ok := m.quarters[id]; ok && q.BusinessID == businessID {
		found := *q
		return &found, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memQuarterRepo) Replace(_ context.Context, quarter *domain.QuarterlyUpdate) error {
	stored, ok := m.quarters[quarter.ID]
	if !ok || stored.BusinessID != quarter.BusinessID || stored.Version != quarter.Version {
		return domain.ErrConflict
	}
	quarter.Version++
	replaced := *quarter
	m.quarters[quarter.ID] = &replaced
	return nil
}

func newTestApp() (*App, *memQuarterRepo) {
	users := &memUserRepo{users: map[string]*domain.User{}}
	businesses := &memBusinessRepo{byUser: map[string]*domain.Business{}, nextID: 1}
	quarters := &memQuarterRepo{quarters: map[string]*domain.QuarterlyUpdate{}}

	logger := zerolog.Nop()
	allowance := decimal.RequireFromString("12570.00")
	rate := decimal.RequireFromString("0.20")

	authSvc := service.NewAuthService(users, []byte("test-secret"), time.Hour, logger)
	businessSvc := service.NewBusinessService(businesses, quarters, logger)
	quarterSvc := service.NewQuarterService(businesses, quarters, allowance, rate, logger)

	return NewApp(authSvc, businessSvc, quarterSvc, logger), quarters
}

func authedRequest(method, target, body, userID string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	return req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func onboardBusiness(t *testing.T, app *App, userID string) {
	t.Helper()
	req := authedRequest("POST", "/api/business", `{"name":"Test Business Inc.","start_date":"2025-04-06"}`, userID)
	rr := httptest.NewRecorder()
	app.BusinessCreate(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("onboarding failed: status %d, body %s", rr.Code, rr.Body.String())
	}
}

func firstQuarterID(t *testing.T, quarters *memQuarterRepo, name string) string {
	t.Helper()
	for _, q := range quarters.quarters {
		if q.QuarterName == name {
			return q.ID
		}
	}
	t.Fatalf("no quarter named %s", name)
	return ""
}

func TestBusinessCreateReturnsCreatedAndInitializesQuarters(t *testing.T) {
	app, quarters := newTestApp()

	req := authedRequest("POST", "/api/business", `{"name":"Test Business Inc.","start_date":"2025-04-06"}`, "user-1")
	rr := httptest.NewRecorder()
	app.BusinessCreate(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d, body %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		BusinessID int    `json:"business_id"`
		Name       string `json:"name"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.BusinessID == 0 || resp.Name != "Test Business Inc." {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(quarters.quarters) != 4 {
		t.Fatalf("expected 4 quarters, got %d", len(quarters.quarters))
	}
}

func TestBusinessCreateSecondBusinessConflicts(t *testing.T) {
	app, _ := newTestApp()
	onboardBusiness(t, app, "user-1")

	req := authedRequest("POST", "/api/business", `{"name":"Second","start_date":"2025-04-06"}`, "user-1")
	rr := httptest.NewRecorder()
	app.BusinessCreate(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("unexpected status: got %d, want 409", rr.Code)
	}
}

func TestBusinessCreateWithoutUserContextIsUnauthorized(t *testing.T) {
	app, _ := newTestApp()

	req := httptest.NewRequest("POST", "/api/business", strings.NewReader(`{"name":"X","start_date":"2025-04-06"}`))
	rr := httptest.NewRecorder()
	app.BusinessCreate(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d, want 401", rr.Code)
	}
}

func TestBusinessCreateRejectsMalformedDate(t *testing.T) {
	app, _ := newTestApp()

	req := authedRequest("POST", "/api/business", `{"name":"X","start_date":"06/04/2025"}`, "user-1")
	rr := httptest.NewRecorder()
	app.BusinessCreate(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d, want 400", rr.Code)
	}
}

func TestQuartersListReturnsSummary(t *testing.T) {
	app, quarters := newTestApp()
	onboardBusiness(t, app, "user-1")

	// Fill and submit Q1 so the summary has something to add up.
	q1 := firstQuarterID(t, quarters, "Q1")
	rr := httptest.NewRecorder()
	app.QuarterSaveDraft(rr, withURLParam(
		authedRequest("PUT", "/api/quarter/"+q1, `{"taxable_income":41570.00,"allowable_expenses":0}`, "user-1"), "id", q1))
	if rr.Code != http.StatusOK {
		t.Fatalf("draft save failed: %d %s", rr.Code, rr.Body.String())
	}
	rr = httptest.NewRecorder()
	app.QuarterSubmit(rr, withURLParam(
		authedRequest("POST", "/api/quarter/"+q1+"/submit", "", "user-1"), "id", q1))
	if rr.Code != http.StatusOK {
		t.Fatalf("submit failed: %d %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	app.QuartersList(rr, authedRequest("GET", "/api/quarters", "", "user-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d, body %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Quarters []struct {
			QuarterName string          `json:"quarter_name"`
			Status      string          `json:"status"`
			NetProfit   decimal.Decimal `json:"net_profit"`
		} `json:"quarters"`
		TotalNetProfitSubmitted         decimal.Decimal `json:"total_net_profit_submitted"`
		CumulativeEstimatedTaxLiability decimal.Decimal `json:"cumulative_estimated_tax_liability"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Quarters) != 4 {
		t.Fatalf("expected 4 quarters, got %d", len(resp.Quarters))
	}
	if resp.Quarters[0].QuarterName != "Q1" || resp.Quarters[0].Status != "SUBMITTED" {
		t.Fatalf("unexpected first quarter: %+v", resp.Quarters[0])
	}
	if !resp.TotalNetProfitSubmitted.Equal(decimal.RequireFromString("41570.00")) {
		t.Fatalf("unexpected total: %s", resp.TotalNetProfitSubmitted)
	}
	if !resp.CumulativeEstimatedTaxLiability.Equal(decimal.RequireFromString("5800.00")) {
		t.Fatalf("unexpected liability: %s", resp.CumulativeEstimatedTaxLiability)
	}
}

func TestQuartersListWithoutBusinessIsNotFound(t *testing.T) {
	app, _ := newTestApp()

	rr := httptest.NewRecorder()
	app.QuartersList(rr, authedRequest("GET", "/api/quarters", "", "user-1"))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d, want 404", rr.Code)
	}
}

func TestQuarterSaveDraftReturnsMessage(t *testing.T) {
	app, quarters := newTestApp()
	onboardBusiness(t, app, "user-1")
	q1 := firstQuarterID(t, quarters, "Q1")

	rr := httptest.NewRecorder()
	app.QuarterSaveDraft(rr, withURLParam(
		authedRequest("PUT", "/api/quarter/"+q1, `{"taxable_income":15000.50,"allowable_expenses":3000.25}`, "user-1"), "id", q1))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d, body %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		NetProfit decimal.Decimal `json:"net_profit"`
		Status    string          `json:"status"`
		Message   string          `json:"message"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.NetProfit.Equal(decimal.RequireFromString("12000.25")) {
		t.Fatalf("unexpected net profit: %s", resp.NetProfit)
	}
	if resp.Status != "DRAFT" || resp.Message != "Draft saved." {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestQuarterSaveDraftRejectsNegativeAmounts(t *testing.T) {
	app, quarters := newTestApp()
	onboardBusiness(t, app, "user-1")
	q1 := firstQuarterID(t, quarters, "Q1")

	rr := httptest.NewRecorder()
	app.QuarterSaveDraft(rr, withURLParam(
		authedRequest("PUT", "/api/quarter/"+q1, `{"taxable_income":-1,"allowable_expenses":0}`, "user-1"), "id", q1))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d, want 400", rr.Code)
	}
}

func TestQuarterSaveDraftUnknownQuarterIsNotFound(t *testing.T) {
	app, _ := newTestApp()
	onboardBusiness(t, app, "user-1")

	rr := httptest.NewRecorder()
	app.QuarterSaveDraft(rr, withURLParam(
		authedRequest("PUT", "/api/quarter/missing", `{"taxable_income":1,"allowable_expenses":0}`, "user-1"), "id", "missing"))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d, want 404", rr.Code)
	}
}

func TestQuarterSubmitThenEditIsRejected(t *testing.T) {
	app, quarters := newTestApp()
	onboardBusiness(t, app, "user-1")
	q1 := firstQuarterID(t, quarters, "Q1")

	rr := httptest.NewRecorder()
	app.QuarterSubmit(rr, withURLParam(
		authedRequest("POST", "/api/quarter/"+q1+"/submit", "", "user-1"), "id", q1))
	if rr.Code != http.StatusOK {
		t.Fatalf("submit failed: %d %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Status            string `json:"status"`
		Message           string `json:"message"`
		SubmissionDetails *struct {
			RefNumber   string    `json:"ref_number"`
			SubmittedAt time.Time `json:"submitted_at"`
		} `json:"submission_details"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "SUBMITTED" || resp.Message != "Quarter submitted successfully." {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.SubmissionDetails == nil || !strings.HasPrefix(resp.SubmissionDetails.RefNumber, "MTD-ACK-") {
		t.Fatalf("missing submission details: %+v", resp.SubmissionDetails)
	}
	if resp.SubmissionDetails.SubmittedAt.IsZero() {
		t.Fatal("submission timestamp not set")
	}

	// Re-submission and draft edits are both locked out now.
	rr = httptest.NewRecorder()
	app.QuarterSubmit(rr, withURLParam(
		authedRequest("POST", "/api/quarter/"+q1+"/submit", "", "user-1"), "id", q1))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("re-submit: got %d, want 400", rr.Code)
	}

	rr = httptest.NewRecorder()
	app.QuarterSaveDraft(rr, withURLParam(
		authedRequest("PUT", "/api/quarter/"+q1, `{"taxable_income":1,"allowable_expenses":0}`, "user-1"), "id", q1))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("edit after submit: got %d, want 400", rr.Code)
	}
}

func TestQuarterIsInvisibleToOtherUsers(t *testing.T) {
	app, quarters := newTestApp()
	onboardBusiness(t, app, "user-1")
	onboardBusiness(t, app, "user-2")
	q1 := firstQuarterID(t, quarters, "Q1")

	// q1 belongs to one of the two businesses; the other user must get 404.
	owner := quarters.quarters[q1].BusinessID
	other := "user-1"
	if owner == 1 {
		other = "user-2"
	}

	rr := httptest.NewRecorder()
	app.QuarterSubmit(rr, withURLParam(
		authedRequest("POST", "/api/quarter/"+q1+"/submit", "", other), "id", q1))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d, want 404", rr.Code)
	}
}
