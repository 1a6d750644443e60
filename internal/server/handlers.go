package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/asheeshm/paperhouse/internal/models"
)

// retryAfter is the hint returned with 503 responses while the durable store
// is unreachable.
const retryAfter = "30"

// writeServiceError maps domain sentinels to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		WriteError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, models.ErrTemporarilyUnavailable):
		w.Header().Set("Retry-After", retryAfter)
		WriteErrorWithCode(w, http.StatusServiceUnavailable, "Earnings temporarily unavailable", "temporarily_unavailable")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// --- Users ---

// CreateUserRequest is the provisioning payload for POST /api/users.
type CreateUserRequest struct {
	UserID           string  `json:"user_id"`
	DisplayName      string  `json:"display_name"`
	InitialEndowment float64 `json:"initial_endowment"`
}

func (s *Server) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req CreateUserRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if strings.ContainsAny(req.UserID, "/\x00") {
		WriteError(w, http.StatusBadRequest, "user_id contains invalid characters")
		return
	}
	if req.InitialEndowment < 0 {
		WriteError(w, http.StatusBadRequest, "initial_endowment must not be negative")
		return
	}
	if req.InitialEndowment == 0 {
		req.InitialEndowment = s.app.Config.Earnings.DefaultEndowment
	}

	ctx := r.Context()
	user := &models.User{
		UserID:      req.UserID,
		DisplayName: req.DisplayName,
		Endowment:   req.InitialEndowment,
	}
	if err := s.app.Storage.InternalStore().SaveUser(ctx, user); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Seed the wallet with the full endowment; holdings start empty.
	if _, err := s.app.Storage.HoldingsStore().GetWallet(ctx, req.UserID); errors.Is(err, models.ErrUserNotFound) {
		wallet := &models.Wallet{UserID: req.UserID, Cash: req.InitialEndowment}
		if err := s.app.Storage.HoldingsStore().SaveWallet(ctx, wallet); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	agg, err := s.app.EarningsService.Provision(ctx, req.UserID, req.InitialEndowment)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"user":     user,
		"earnings": toEarnings(agg),
	})
}

// --- Earnings ---

func toEarnings(agg *models.UserAggregate) *models.Earnings {
	return &models.Earnings{
		UserID:                agg.UserID,
		DayProfit:             agg.DayProfit,
		MonthProfit:           agg.MonthProfit,
		LifetimeProfit:        agg.LifetimeProfit,
		CurrentPortfolioValue: agg.CurrentPortfolioValue,
	}
}

func (s *Server) handleUserEarnings(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	agg, err := s.app.EarningsService.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toEarnings(agg))
}

func (s *Server) handleUserTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	agg, err := s.app.EarningsService.RecordTransaction(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"earnings":    toEarnings(agg),
		"trade_count": agg.DayTradeCount,
	})
}

func (s *Server) handleUserSnapshots(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	for _, key := range []string{from, to} {
		if key == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", key); err != nil {
			WriteError(w, http.StatusBadRequest, "from/to must be formatted YYYY-MM-DD")
			return
		}
	}

	snaps, err := s.app.Storage.EarningsStore().ListSnapshots(r.Context(), userID, from, to)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":   userID,
		"snapshots": snaps,
	})
}

// --- Leaderboard ---

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	period := models.LeaderboardPeriod(r.URL.Query().Get("period"))
	if period == "" {
		period = models.PeriodDay
	}
	if !period.Valid() {
		WriteError(w, http.StatusBadRequest, "period must be one of day, month, overall")
		return
	}

	entries, err := s.app.LeaderboardService.Rank(r.Context(), period, r.URL.Query().Get("user_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"period":  period,
		"entries": entries,
	})
}

func (s *Server) handleLeaderboardWS(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	s.app.LeaderboardHub.ServeWS(w, r)
}

// --- Admin ---

func (s *Server) handleAdminFlush(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := s.app.EarningsService.FlushAll(r.Context()); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "flushed"})
}
