package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PabloGalante/shopassist/internal/app/conversation"
	"github.com/PabloGalante/shopassist/internal/app/products"
	"github.com/PabloGalante/shopassist/internal/domain"
	"github.com/PabloGalante/shopassist/internal/observability"
)

type Server struct {
	svc      *conversation.Service
	products *products.Service
	upgrader websocket.Upgrader
}

func NewServer(svc *conversation.Service, productSvc *products.Service) http.Handler {
	s := &Server{
		svc:      svc,
		products: productSvc,
		upgrader: websocket.Upgrader{
			// the chat front-end may be served from anywhere, same as CORS below
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())

	// /categories → filter panel options (GET)
	mux.HandleFunc("/categories", s.handleCategories)

	// /products?q=... → stateless search (GET)
	mux.HandleFunc("/products", s.handleProducts)

	// /sessions → create session (POST)
	mux.HandleFunc("/sessions", s.handleSessions)

	// /sessions/{id}          → GET: session + messages
	// /sessions/{id}/messages → POST: submit utterance
	// /sessions/{id}/reset    → POST: reset conversation
	// /sessions/{id}/filters  → GET, PATCH, DELETE
	// /sessions/{id}/stream   → websocket
	mux.HandleFunc("/sessions/", s.handleSessionWithID)

	return chainMiddlewares(mux, withCORS, withMetrics, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type filtersResponse struct {
	Category    string   `json:"category"`
	MinPrice    *float64 `json:"min_price"`
	MaxPrice    *float64 `json:"max_price"`
	InStockOnly bool     `json:"in_stock_only"`
}

type sessionResponse struct {
	ID        string          `json:"id"`
	Filters   filtersResponse `json:"filters"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type itemResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
	InStock     bool    `json:"in_stock"`
}

type messageResponse struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Author    string         `json:"author"`
	Text      string         `json:"text"`
	Items     []itemResponse `json:"items"`
	CreatedAt time.Time      `json:"created_at"`
}

type createSessionResponse struct {
	Session sessionResponse `json:"session"`
	Welcome messageResponse `json:"welcome_message"`
}

type getSessionResponse struct {
	Session  sessionResponse   `json:"session"`
	Messages []messageResponse `json:"messages"`
	Pending  bool              `json:"pending"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	UserMessage messageResponse `json:"user_message"`
	Pending     bool            `json:"pending"`
}

type resetResponse struct {
	Greeting messageResponse `json:"greeting"`
}

// patchFiltersRequest leaves a field unchanged when it is absent. Prices may
// be sent as numbers or as the raw text typed by the user.
type patchFiltersRequest struct {
	Category    *string         `json:"category"`
	MinPrice    json.RawMessage `json:"min_price"`
	MaxPrice    json.RawMessage `json:"max_price"`
	InStockOnly *bool           `json:"in_stock_only"`
}

type productsResponse struct {
	Items []itemResponse `json:"items"`
	Count int            `json:"count"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"catalog_items": s.products.Count(),
	})
}

// /sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSession(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /sessions/{id}[/messages|/reset|/filters|/stream]
func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := domain.SessionID(parts[0])

	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetSession(w, r, id)
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}

	switch parts[1] {
	case "messages":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleSendMessage(w, r, id)
	case "reset":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleReset(w, r, id)
	case "filters":
		switch r.Method {
		case http.MethodGet:
			s.handleGetFilters(w, r, id)
		case http.MethodPatch:
			s.handlePatchFilters(w, r, id)
		case http.MethodDelete:
			s.handleClearFilters(w, r, id)
		default:
			methodNotAllowed(w)
		}
	case "stream":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleStream(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, welcome, err := s.svc.StartSession(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createSessionResponse{
		Session: toSessionResponse(session),
		Welcome: toMessageResponse(welcome),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	tl, err := s.svc.GetSessionTimeline(r.Context(), id, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, getSessionResponse{
		Session:  toSessionResponse(tl.Session),
		Messages: toMessagesResponse(tl.Messages),
		Pending:  tl.Pending,
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	msg, err := s.svc.SubmitUtterance(r.Context(), id, req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if msg == nil {
		// blank utterances are ignored, not rejected
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusAccepted, sendMessageResponse{
		UserMessage: toMessageResponse(msg),
		Pending:     true,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	greeting, err := s.svc.Reset(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resetResponse{Greeting: toMessageResponse(greeting)})
}

func (s *Server) handleGetFilters(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	f, err := s.svc.Filters(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFiltersResponse(f))
}

func (s *Server) handlePatchFilters(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	var req patchFiltersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	f, err := s.svc.UpdateFilters(r.Context(), id, func(f *domain.FilterCriteria) {
		if req.Category != nil {
			f.SetCategory(*req.Category)
		}
		if req.MinPrice != nil {
			f.SetMinPrice(priceText(req.MinPrice))
		}
		if req.MaxPrice != nil {
			f.SetMaxPrice(priceText(req.MaxPrice))
		}
		if req.InStockOnly != nil {
			f.SetInStockOnly(*req.InStockOnly)
		}
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFiltersResponse(f))
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	f, err := s.svc.ClearFilters(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFiltersResponse(f))
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	q := r.URL.Query()
	f := domain.DefaultFilters()
	if c := q.Get("category"); c != "" {
		f.SetCategory(c)
	}
	f.SetMinPrice(q.Get("min_price"))
	f.SetMaxPrice(q.Get("max_price"))
	f.SetInStockOnly(parseBool(q.Get("in_stock")))

	found := s.products.Search(r.Context(), q.Get("q"), f)
	writeJSON(w, http.StatusOK, productsResponse{
		Items: toItemsResponse(found),
		Count: len(found),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: s.products.Categories()})
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

func toFiltersResponse(f domain.FilterCriteria) filtersResponse {
	f = f.Clone()
	return filtersResponse{
		Category:    f.Category,
		MinPrice:    f.MinPrice,
		MaxPrice:    f.MaxPrice,
		InStockOnly: f.InStockOnly,
	}
}

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:        string(s.ID),
		Filters:   toFiltersResponse(s.Filters),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toItemsResponse(items []domain.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, itemResponse{
			ID:          string(it.ID),
			Name:        it.Name,
			Description: it.Description,
			Category:    it.Category,
			Price:       it.Price,
			Rating:      it.Rating,
			InStock:     it.InStock,
		})
	}
	return out
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:        string(m.ID),
		SessionID: string(m.SessionID),
		Author:    string(m.Author),
		Text:      m.Text,
		Items:     toItemsResponse(m.Items),
		CreatedAt: m.CreatedAt,
	}
}

func toMessagesResponse(msgs []*domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

// priceText turns a JSON number, string or null into the text form the
// filter setters parse. null clears the bound.
func priceText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "session not found",
		})
	case errors.Is(err, conversation.ErrClosed):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "the assistant is shutting down",
		})
	case errors.Is(err, conversation.ErrReplyPending):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "the assistant is still replying",
		})
	default:
		internalError(w, r, err)
	}
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error().Err(err).
		Str("path", r.URL.Path).
		Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
