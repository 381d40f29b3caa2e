package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"taxfiling/internal/domain"
)

type quarterDTO struct {
	ID                string                    `json:"id"`
	BusinessID        int                       `json:"business_id"`
	TaxYear           string                    `json:"tax_year"`
	QuarterName       string                    `json:"quarter_name"`
	TaxableIncome     decimal.Decimal           `json:"taxable_income"`
	AllowableExpenses decimal.Decimal           `json:"allowable_expenses"`
	NetProfit         decimal.Decimal           `json:"net_profit"`
	Status            string                    `json:"status"`
	SubmissionDetails *domain.SubmissionDetails `json:"submission_details,omitempty"`
}

type quartersResponse struct {
	Quarters                        []quarterDTO    `json:"quarters"`
	TotalNetProfitSubmitted         decimal.Decimal `json:"total_net_profit_submitted"`
	CumulativeEstimatedTaxLiability decimal.Decimal `json:"cumulative_estimated_tax_liability"`
}

type quarterUpdateRequest struct {
	TaxableIncome     decimal.Decimal `json:"taxable_income"`
	AllowableExpenses decimal.Decimal `json:"allowable_expenses"`
}

type quarterMutationResponse struct {
	quarterDTO
	Message string `json:"message"`
}

func toQuarterDTO(q *domain.QuarterlyUpdate) quarterDTO {
	return quarterDTO{
		ID:                q.ID,
		BusinessID:        q.BusinessID,
		TaxYear:           q.TaxYear,
		QuarterName:       q.QuarterName,
		TaxableIncome:     q.TaxableIncome,
		AllowableExpenses: q.AllowableExpenses,
		NetProfit:         q.NetProfit,
		Status:            string(q.Status),
		SubmissionDetails: q.SubmissionDetails,
	}
}

func (a *App) QuartersList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	summary, err := a.Quarters.Summary(r.Context(), userID)
	if err != nil {
		a.fail(w, err)
		return
	}
	items := make([]quarterDTO, 0, len(summary.Quarters))
	for i := range summary.Quarters {
		items = append(items, toQuarterDTO(&summary.Quarters[i]))
	}
	a.json(w, http.StatusOK, quartersResponse{
		Quarters:                        items,
		TotalNetProfitSubmitted:         summary.TotalNetProfitSubmitted,
		CumulativeEstimatedTaxLiability: summary.CumulativeEstimatedTaxLiability,
	})
}

func (a *App) QuarterSaveDraft(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req quarterUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	quarter, err := a.Quarters.SaveDraft(r.Context(), userID, chi.URLParam(r, "id"), req.TaxableIncome, req.AllowableExpenses)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, quarterMutationResponse{
		quarterDTO: toQuarterDTO(quarter),
		Message:    "Draft saved.",
	})
}

func (a *App) QuarterSubmit(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	quarter, err := a.Quarters.Submit(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, quarterMutationResponse{
		quarterDTO: toQuarterDTO(quarter),
		Message:    "Quarter submitted successfully.",
	})
}
