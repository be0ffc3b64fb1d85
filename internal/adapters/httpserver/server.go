package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/calleja/devgear/internal/domain"
	"github.com/calleja/devgear/internal/usecase"
)

type Server struct {
	mux       *http.ServeMux
	catalog   *usecase.CatalogUC
	purchases *usecase.PurchaseUC
	auth      *usecase.AuthUC

	adminUsers map[string]struct{}
}

func New(catalog *usecase.CatalogUC, purchases *usecase.PurchaseUC, auth *usecase.AuthUC) http.Handler {
	s := &Server{catalog: catalog, purchases: purchases, auth: auth, mux: http.NewServeMux()}

	admins := map[string]struct{}{}
	if raw := os.Getenv("ADMIN_USERS"); raw != "" {
		for _, u := range strings.Split(raw, ",") {
			u = strings.TrimSpace(u)
			if u != "" {
				admins[u] = struct{}{}
			}
		}
	}
	s.adminUsers = admins

	s.routes()
	return Chain(s.mux,
		RateLimit(120),
		Gzip,
		CORS(frontendOrigins()),
		RequestID,
		Recovery,
		Logging,
	)
}

func frontendOrigins() []string {
	raw := os.Getenv("FRONTEND_URL")
	if raw == "" {
		raw = "http://localhost:4173"
	}
	out := []string{}
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/sale", s.apiSale)
	s.mux.HandleFunc("/api/shop", s.apiShop)

	s.mux.HandleFunc("/api/purchase", s.apiPurchase)

	s.mux.HandleFunc("/api/auth/register", s.apiRegister)
	s.mux.HandleFunc("/api/auth/login", s.apiLogin)

	s.mux.HandleFunc("/api/admin/export", s.apiAdminExport)

	s.mux.HandleFunc("/healthz", s.handleHealth)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) apiSale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	list, err := s.catalog.SaleListing(r.Context())
	if err != nil {
		// the cause stays in the log, never in the response body
		log.Error().Err(err).Msg("sale listing")
		writeError(w, http.StatusInternalServerError, "Failed to fetch sale products")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) apiShop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	list, err := s.catalog.ShopListing(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("shop listing")
		writeError(w, http.StatusInternalServerError, "failed to fetch shop products")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type purchaseRequest struct {
	Items []purchaseItemRequest `json:"items"`
	Total string                `json:"total"`
}

type purchaseItemRequest struct {
	ProductID uint   `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) apiPurchase(w http.ResponseWriter, r *http.Request) {
	userID, _, err := s.bearerUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	switch r.Method {
	case http.MethodGet:
		list, err := s.purchases.History(r.Context(), userID)
		if err != nil {
			log.Error().Err(err).Uint("user", userID).Msg("purchase history")
			writeError(w, http.StatusInternalServerError, "failed to fetch purchases")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"purchases": list})
	case http.MethodPost:
		var req purchaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
		items := make([]domain.PurchaseItem, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, domain.PurchaseItem{ProductID: it.ProductID, Name: it.Name, Price: it.Price, Quantity: it.Quantity})
		}
		p, err := s.purchases.Create(r.Context(), userID, items, req.Total)
		if err != nil {
			log.Error().Err(err).Uint("user", userID).Msg("create purchase")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"purchase": p})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) apiRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	u, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			writeError(w, http.StatusConflict, "username already taken")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": u})
}

func (s *Server) apiLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	token, u, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		log.Error().Err(err).Msg("login")
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": u})
}

func (s *Server) bearerUser(r *http.Request) (uint, string, error) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return 0, "", errors.New("missing bearer token")
	}
	return s.auth.Verify(strings.TrimPrefix(h, prefix))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
