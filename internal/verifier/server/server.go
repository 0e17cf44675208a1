// Package server implements the verifier service: it issues single-use
// challenges, verifies identity proofs against the account's registered
// key, and exchanges valid proofs for session tokens.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
	"github.com/BukiOffor/concordium-dapp-examples/internal/indexing/metrics"
	"github.com/BukiOffor/concordium-dapp-examples/internal/node"
	"github.com/BukiOffor/concordium-dapp-examples/internal/wallet"
)

// Version is reported by the health endpoint.
const Version = "1.2.0"

// AccountLookup resolves an account's registered public key.
type AccountLookup interface {
	GetAccountInfo(ctx context.Context, address domain.AccountAddress) (*node.AccountInfo, error)
}

// AuthRecorder persists successful authorizations for audit.
type AuthRecorder interface {
	RecordAuthorization(ctx context.Context, account domain.AccountAddress, issuedAt time.Time) error
}

// Config holds verifier service settings.
type Config struct {
	Statement    domain.Statement
	ChallengeTTL time.Duration
	SessionTTL   time.Duration
}

// Verifier implements the verifier HTTP API.
type Verifier struct {
	cfg        Config
	accounts   AccountLookup
	challenges ChallengeStore
	sessions   SessionStore
	audit      AuthRecorder
	log        *slog.Logger
}

// New creates a verifier. audit may be nil when no database is configured.
func New(cfg Config, accounts AccountLookup, challenges ChallengeStore, sessions SessionStore, audit AuthRecorder) *Verifier {
	return &Verifier{
		cfg:        cfg,
		accounts:   accounts,
		challenges: challenges,
		sessions:   sessions,
		audit:      audit,
		log:        slog.With("component", "verifier"),
	}
}

// Register mounts the verifier routes on a mux.
func (v *Verifier) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/statement", v.handleStatement)
	mux.HandleFunc("GET /v1/challenge", v.handleChallenge)
	mux.HandleFunc("POST /v1/authorize", v.handleAuthorize)
	mux.HandleFunc("GET /v1/session", v.handleSession)
	mux.HandleFunc("GET /health", v.handleHealth)
}

// badRequest marks errors caused by the caller; everything else is internal.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func (v *Verifier) handleStatement(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"statement": v.cfg.Statement})
}

func (v *Verifier) handleChallenge(w http.ResponseWriter, r *http.Request) {
	account := domain.AccountAddress(r.URL.Query().Get("address"))
	if _, err := account.Bytes(); err != nil {
		v.fail(w, badRequest{fmt.Sprintf("invalid address: %v", err)})
		return
	}

	challenge, err := newChallenge()
	if err != nil {
		v.fail(w, err)
		return
	}
	if err := v.challenges.Put(r.Context(), challenge, account, v.cfg.ChallengeTTL); err != nil {
		v.fail(w, fmt.Errorf("store challenge: %w", err))
		return
	}

	v.log.Debug("Issued challenge", "account", account)
	writeJSON(w, http.StatusOK, map[string]any{"challenge": challenge})
}

func (v *Verifier) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Proof *domain.IDProof `json:"proof"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Proof == nil {
		v.fail(w, badRequest{"invalid authorize request body"})
		return
	}

	token, err := v.authorize(r.Context(), req.Proof)
	if err != nil {
		v.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token})
}

// authorize consumes the proof's challenge and validates the proof. The
// challenge is spent even when validation fails, so a rejected proof
// cannot be retried against the same challenge.
func (v *Verifier) authorize(ctx context.Context, proof *domain.IDProof) (domain.AuthToken, error) {
	account, ok, err := v.challenges.Take(ctx, proof.Challenge)
	if err != nil {
		return "", fmt.Errorf("take challenge: %w", err)
	}
	if !ok {
		return "", badRequest{"unknown or expired challenge"}
	}
	if account != proof.Account {
		return "", badRequest{"challenge was issued for a different account"}
	}

	info, err := v.accounts.GetAccountInfo(ctx, proof.Account)
	if err != nil {
		return "", fmt.Errorf("account lookup: %w", err)
	}
	pub, err := hex.DecodeString(info.PublicKey)
	if err != nil {
		return "", fmt.Errorf("account %s has malformed public key: %w", proof.Account, err)
	}

	payload, err := proof.SignedPayload()
	if err != nil {
		return "", badRequest{fmt.Sprintf("malformed proof: %v", err)}
	}
	valid, err := wallet.VerifyMessage(pub, proof.Account, payload, proof.Signature)
	if err != nil {
		return "", badRequest{fmt.Sprintf("malformed proof: %v", err)}
	}
	if !valid {
		return "", badRequest{"invalid proof signature"}
	}

	if tag, ok := proof.Satisfies(v.cfg.Statement); !ok {
		return "", badRequest{fmt.Sprintf("proof does not reveal attribute %q", tag)}
	}

	token := domain.AuthToken(uuid.NewString())
	if err := v.sessions.Put(ctx, token, proof.Account, v.cfg.SessionTTL); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if v.audit != nil {
		if err := v.audit.RecordAuthorization(ctx, proof.Account, time.Now()); err != nil {
			// Audit is best effort; the token is already issued.
			v.log.Warn("Failed to record authorization", "account", proof.Account, "error", err)
		}
	}

	metrics.AuthorizationsTotal.Inc()
	v.log.Info("Authorized account", "account", proof.Account)
	return token, nil
}

func (v *Verifier) handleSession(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		v.fail(w, badRequest{"missing bearer token"})
		return
	}
	account, ok, err := v.sessions.Get(r.Context(), domain.AuthToken(token))
	if err != nil {
		v.fail(w, fmt.Errorf("session lookup: %w", err))
		return
	}
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown or expired token"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"account": account})
}

func (v *Verifier) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": Version})
}

// fail maps an error onto a response: caller errors get a 400 with the
// message, everything else a 500 without details.
func (v *Verifier) fail(w http.ResponseWriter, err error) {
	var br badRequest
	if errors.As(err, &br) {
		v.log.Warn("Bad request", "error", br.msg)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": br.msg})
		return
	}
	v.log.Error("Internal error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func newChallenge() (domain.Challenge, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate challenge: %w", err)
	}
	return domain.Challenge(hex.EncodeToString(raw)), nil
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
