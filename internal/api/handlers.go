package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sells-group/recon-cli/internal/model"
	"github.com/sells-group/recon-cli/internal/pipeline"
)

// ParseRequest names a ledger to load.
type ParseRequest struct {
	Location   string `json:"location" validate:"required"`
	Sheet      string `json:"sheet"`
	FXLocation string `json:"fx_location"`
}

// ReconcileRequest carries in-memory aggregates.
type ReconcileRequest struct {
	SalesStats    []model.SalesAggregate    `json:"sales_stats" validate:"required"`
	PurchaseStats []model.PurchaseAggregate `json:"purchase_stats"`
}

// RunRequest names the ledgers of a full run.
type RunRequest struct {
	SalesLocation    string `json:"sales_location" validate:"required"`
	PurchaseLocation string `json:"purchase_location" validate:"required"`
	FXLocation       string `json:"fx_location"`
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSalesParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !s.decode(w, r, &req) {
		return
	}
	summary, err := s.pipe.ParseSales(r.Context(), req.Location, req.Sheet)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handlePurchaseParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !s.decode(w, r, &req) {
		return
	}
	summary, err := s.pipe.ParsePurchase(r.Context(), req.Location, req.Sheet, req.FXLocation)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleAgentSales(w http.ResponseWriter, r *http.Request) {
	var req model.SalesSummary
	if !s.decode(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, s.pipe.AnalyzeSales(req))
}

func (s *Server) handleAgentPurchase(w http.ResponseWriter, r *http.Request) {
	var req model.PurchaseSummary
	if !s.decode(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, s.pipe.AnalyzePurchase(req))
}

func (s *Server) handleAgentDecision(w http.ResponseWriter, r *http.Request) {
	var req model.DecisionRequest
	if !s.decode(w, r, &req) {
		return
	}
	report, err := s.pipe.Decide(req)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.pipe.Reconcile(req.SalesStats, req.PurchaseStats)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if !s.decode(w, r, &req) {
		return
	}
	report, err := s.pipe.Run(r.Context(), pipeline.Inputs{
		SalesPath:    req.SalesLocation,
		PurchasePath: req.PurchaseLocation,
		FXPath:       req.FXLocation,
	})
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// decode reads and validates a JSON body, writing the error response itself
// when it returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make(map[string]string, len(ve))
			for _, fe := range ve {
				fields[fe.Field()] = fe.Tag()
			}
			respondJSON(w, http.StatusBadRequest, fields)
			return false
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func respondFailure(w http.ResponseWriter, err error) {
	var ce *model.ConfigurationError
	switch {
	case errors.As(err, &ce):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  ce.Error(),
			"entity": ce.Entity,
			"fields": ce.Fields,
		})
	case errors.Is(err, fs.ErrNotExist):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		zap.L().Error("api: request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
