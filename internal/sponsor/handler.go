package sponsor

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BukiOffor/concordium-dapp-examples/internal/contract"
	"github.com/BukiOffor/concordium-dapp-examples/internal/indexing/metrics"
)

// maxBidBodyBytes caps the request body, matching the original service's
// 50 KiB limit.
const maxBidBodyBytes = 50 * 1024

// Handler exposes the sponsor service over HTTP.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler creates the HTTP handler for the sponsor service.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, log: slog.With("component", "sponsor-http")}
}

// Register mounts the sponsor routes on a mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/bid", h.handleBid)
}

func (h *Handler) handleBid(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBidBodyBytes)

	var signed SignedPermit
	if err := json.NewDecoder(r.Body).Decode(&signed); err != nil {
		metrics.SponsoredBidsTotal.WithLabelValues("rejected").Inc()
		h.writeError(w, http.StatusBadRequest, "invalid bid request body")
		return
	}

	hash, err := h.svc.SubmitBid(r.Context(), signed)
	switch {
	case err == nil:
		metrics.SponsoredBidsTotal.WithLabelValues("accepted").Inc()
		writeJSON(w, http.StatusOK, map[string]any{"hash": hash})
	case errors.Is(err, ErrRateLimited):
		metrics.SponsoredBidsTotal.WithLabelValues("rate_limited").Inc()
		h.writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, ErrInvalidSignature), errors.Is(err, ErrExpiredPermit),
		errors.Is(err, contract.ErrDryRunRejected), errors.Is(err, contract.ErrNoReturnValue):
		metrics.SponsoredBidsTotal.WithLabelValues("rejected").Inc()
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		metrics.SponsoredBidsTotal.WithLabelValues("error").Inc()
		h.log.Error("Sponsored bid failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	if status < http.StatusInternalServerError {
		h.log.Warn("Rejected sponsored bid", "status", status, "reason", msg)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
