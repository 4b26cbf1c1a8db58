package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/PabloGalante/tripwise-agent/internal/app/conversation"
	"github.com/PabloGalante/tripwise-agent/internal/app/history"
	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type Server struct {
	svc     *conversation.Service
	history *history.Service
}

// Options tunes the HTTP surface.
type Options struct {
	AllowedOrigins []string
}

func NewServer(svc *conversation.Service, hist *history.Service, opts Options) http.Handler {
	s := &Server{svc: svc, history: hist}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(withRequestID)
	r.Use(withLogging)
	r.Use(withCORS(opts.AllowedOrigins))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/chat", s.handleChat)
		r.Post("/plan-travel", s.handlePlanTravel)
		r.Post("/book-complete-plan", s.handleBookPlan)
		r.Get("/history", s.handleListPlans)
		r.Get("/plans/{planID}", s.handleGetPlan)
		r.Get("/bookings", s.handleListBookings)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/{sessionID}", s.handleGetSession)
		r.Post("/{sessionID}/messages", s.handleSendMessage)
		r.Post("/{sessionID}/plan", s.handlePlanSession)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	return r
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type chatRequest struct {
	Message             string            `json:"message"`
	ConversationHistory []domain.Turn     `json:"conversation_history"`
	ExtractedInfo       domain.TripIntent `json:"extracted_info"`
}

type chatResponse struct {
	Message             string            `json:"message"`
	ExtractedInfo       domain.TripIntent `json:"extracted_info"`
	IsReadyToPlan       bool              `json:"is_ready_to_plan"`
	MissingFields       []domain.Field    `json:"missing_fields"`
	State               string            `json:"state"`
	ConversationHistory []domain.Turn     `json:"conversation_history"`
}

type bookPlanRequest struct {
	Plan             *domain.Plan            `json:"plan"`
	PassengerDetails domain.PassengerDetails `json:"passenger_details"`
}

type planListResponse struct {
	Plans []*domain.Plan `json:"plans"`
	Count int            `json:"count"`
}

type bookingListResponse struct {
	Bookings []*domain.BookingResult `json:"bookings"`
	Count    int                     `json:"count"`
}

type createSessionRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title,omitempty"`
}

type createSessionResponse struct {
	Session sessionResponse  `json:"session"`
	Welcome *messageResponse `json:"welcome_message,omitempty"`
}

type sessionResponse struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	Title         string            `json:"title"`
	State         string            `json:"state"`
	ExtractedInfo domain.TripIntent `json:"extracted_info"`
	PlanID        string            `json:"plan_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type sendMessageRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	UserMessage   messageResponse   `json:"user_message"`
	AgentMessage  messageResponse   `json:"agent_message"`
	ExtractedInfo domain.TripIntent `json:"extracted_info"`
	IsReadyToPlan bool              `json:"is_ready_to_plan"`
	MissingFields []domain.Field    `json:"missing_fields"`
	State         string            `json:"state"`
}

type getSessionResponse struct {
	Session  sessionResponse   `json:"session"`
	Messages []messageResponse `json:"messages"`
}

// ─────────────────────────────────────────────
// Stateless API handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Message: "Travel planning agent is running"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	turn, err := s.svc.Chat(r.Context(), conversation.ChatInput{
		Message: req.Message,
		History: req.ConversationHistory,
		Intent:  req.ExtractedInfo,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Message:             turn.Response,
		ExtractedInfo:       turn.Intent,
		IsReadyToPlan:       turn.Ready,
		MissingFields:       fieldsOrEmpty(turn.Missing),
		State:               string(turn.State),
		ConversationHistory: turn.History,
	})
}

func (s *Server) handlePlanTravel(w http.ResponseWriter, r *http.Request) {
	var intent domain.TripIntent
	if !decodeJSON(w, r, &intent) {
		return
	}

	plan, err := s.svc.CreatePlan(r.Context(), intent)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleBookPlan(w http.ResponseWriter, r *http.Request) {
	var req bookPlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Plan == nil {
		writeError(w, http.StatusBadRequest, "missing_field", "plan is required")
		return
	}
	if strings.TrimSpace(req.PassengerDetails.FullName()) == "" {
		writeError(w, http.StatusBadRequest, "missing_field", "passenger_details name is required")
		return
	}

	res, err := s.svc.BookPlan(r.Context(), req.Plan, req.PassengerDetails)
	if err != nil {
		writeBookingError(w, r, res, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	plans, err := s.history.ListPlans(r.Context(), limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, planListResponse{Plans: plans, Count: len(plans)})
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.history.GetPlan(r.Context(), domain.PlanID(chi.URLParam(r, "planID")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	bookings, err := s.history.ListBookings(r.Context(), limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingListResponse{Bookings: bookings, Count: len(bookings)})
}

// ─────────────────────────────────────────────
// Session handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "missing_field", "user_id is required")
		return
	}

	out, err := s.svc.StartSession(r.Context(), conversation.StartSessionInput{
		UserID: domain.UserID(req.UserID),
		Title:  req.Title,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := createSessionResponse{Session: toSessionResponse(out.Session)}
	if out.Welcome != nil {
		m := toMessageResponse(out.Welcome)
		resp.Welcome = &m
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	session, msgs, err := s.svc.GetSessionTimeline(r.Context(), domain.SessionID(chi.URLParam(r, "sessionID")), userID, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, getSessionResponse{
		Session:  toSessionResponse(session),
		Messages: toMessagesResponse(msgs),
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "missing_field", "user_id is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "missing_field", "text is required")
		return
	}

	out, err := s.svc.SendMessage(r.Context(), conversation.SendMessageInput{
		SessionID: domain.SessionID(chi.URLParam(r, "sessionID")),
		UserID:    domain.UserID(req.UserID),
		Text:      req.Text,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sendMessageResponse{
		UserMessage:   toMessageResponse(out.UserMessage),
		AgentMessage:  toMessageResponse(out.AgentMessage),
		ExtractedInfo: out.Session.Intent,
		IsReadyToPlan: out.Ready,
		MissingFields: fieldsOrEmpty(out.Missing),
		State:         string(out.Session.State),
	})
}

func (s *Server) handlePlanSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	plan, err := s.svc.PlanSession(r.Context(), domain.SessionID(chi.URLParam(r, "sessionID")), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:            string(s.ID),
		UserID:        string(s.UserID),
		Title:         s.Title,
		State:         string(s.State),
		ExtractedInfo: s.Intent,
		PlanID:        string(s.PlanID),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:        string(m.ID),
		SessionID: string(m.SessionID),
		Author:    string(m.Author),
		Text:      m.Text,
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

func fieldsOrEmpty(fields []domain.Field) []domain.Field {
	if fields == nil {
		return []domain.Field{}
	}
	return fields
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request_too_large",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// requireUserID reads the session owner from the user_id query parameter.
func requireUserID(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing_field", "user_id is required")
		return "", false
	}
	return domain.UserID(userID), true
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
		return 0, false
	}
	return limit, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
