package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"telegram-skin-radar/internal/domain"
	"telegram-skin-radar/internal/domain/model"
	"telegram-skin-radar/internal/infra/logging"
)

func bearerToken(r *http.Request) string {
	hdr := r.Header.Get("Authorization")
	if hdr == "" {
		return ""
	}
	parts := strings.SplitN(hdr, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginRequest struct {
	APIKey string `json:"api_key"`
}

// loginHandler exchanges the configured API key for a short-lived admin
// session token set as a cookie and returned in the body.
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if s.apiKey == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	key := bearerToken(r)
	if key == "" {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		key = req.APIKey
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) != 1 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		log := logging.With(r.Context(), s.log)
		log.Error().Err(err).Msg("failed to mint admin session")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// logoutHandler invalidates the admin session cookie.
func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	s.auth.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsUC.Summary(r.Context())
	if err != nil {
		log := logging.With(r.Context(), s.log)
		log.Error().Err(err).Msg("stats query failed")
		http.Error(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// userView is the admin-facing projection of a user. The steam token never
// leaves the service, only its presence does.
type userView struct {
	TelegramID     int64     `json:"telegram_id"`
	Username       string    `json:"username"`
	Monitoring     bool      `json:"monitoring"`
	HasSteamToken  bool      `json:"has_steam_token"`
	FoundCount     int       `json:"found_count"`
	MaxFinds       int       `json:"max_finds"`
	AutoPurchase   bool      `json:"auto_purchase"`
	MaxPriceCents  int       `json:"max_price_cents"`
	MaxItemAgeDays int       `json:"max_item_age_days"`
	RegisteredAt   time.Time `json:"registered_at"`
	LastActiveAt   time.Time `json:"last_active_at"`
}

func toUserView(u *model.User) userView {
	return userView{
		TelegramID:     u.TelegramID,
		Username:       u.Username,
		Monitoring:     u.Monitoring,
		HasSteamToken:  u.HasSteamToken(),
		FoundCount:     u.FoundCount,
		MaxFinds:       u.MaxFinds,
		AutoPurchase:   u.AutoPurchase,
		MaxPriceCents:  u.MaxPriceCents,
		MaxItemAgeDays: u.MaxItemAgeDays,
		RegisteredAt:   u.RegisteredAt,
		LastActiveAt:   u.LastActiveAt,
	}
}

// usersListHandler returns a page of users. It accepts 'offset' and 'limit'
// query parameters.
func (s *Server) usersListHandler(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}

	users, err := s.userUC.List(r.Context(), offset, limit)
	if err != nil {
		log := logging.With(r.Context(), s.log)
		log.Error().Err(err).Msg("user list query failed")
		http.Error(w, "Failed to list users", http.StatusInternalServerError)
		return
	}
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"offset": offset,
		"limit":  limit,
		"users":  views,
	})
}

type opportunityView struct {
	ItemID        int64     `json:"item_id"`
	ItemName      string    `json:"item_name"`
	CreatorID     string    `json:"creator_id"`
	CreatorName   string    `json:"creator_name"`
	PriceCents    int       `json:"price_cents"`
	Purchased     bool      `json:"purchased"`
	PurchaseError string    `json:"purchase_error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// userGetHandler returns one user with their recent opportunities.
func (s *Server) userGetHandler(w http.ResponseWriter, r *http.Request) {
	tgID, err := strconv.ParseInt(chi.URLParam(r, "tgID"), 10, 64)
	if err != nil || tgID <= 0 {
		http.Error(w, "Invalid telegram id", http.StatusBadRequest)
		return
	}

	user, err := s.userUC.GetByTelegramID(r.Context(), tgID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		log := logging.With(r.Context(), s.log)
		log.Error().Err(err).Int64("tg_id", tgID).Msg("user query failed")
		http.Error(w, "Failed to get user", http.StatusInternalServerError)
		return
	}

	opps, err := s.oppUC.History(r.Context(), user.ID, 10)
	if err != nil {
		log := logging.With(r.Context(), s.log)
		log.Error().Err(err).Int64("tg_id", tgID).Msg("opportunity history failed")
		http.Error(w, "Failed to get opportunities", http.StatusInternalServerError)
		return
	}
	oppViews := make([]opportunityView, 0, len(opps))
	for _, o := range opps {
		oppViews = append(oppViews, opportunityView{
			ItemID:        o.ItemID,
			ItemName:      o.ItemName,
			CreatorID:     o.CreatorID,
			CreatorName:   o.CreatorName,
			PriceCents:    o.PriceCents,
			Purchased:     o.Purchased,
			PurchaseError: o.PurchaseError,
			CreatedAt:     o.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":          toUserView(user),
		"opportunities": oppViews,
	})
}
