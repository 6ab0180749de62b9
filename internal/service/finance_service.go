// Package service wires the statement pipeline, chat stack and goal
// tracking into the HTTP API.
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finsight-ai/finsight/internal/auth"
	"github.com/finsight-ai/finsight/internal/chat"
	"github.com/finsight-ai/finsight/internal/goal"
	"github.com/finsight-ai/finsight/internal/logger"
	"github.com/finsight-ai/finsight/internal/store"
)

// maxUploadBytes bounds statement uploads; real statements are well
// under this.
const maxUploadBytes = 20 << 20

// FinanceService exposes the HTTP API: auth, statement upload, chat and
// goals.
type FinanceService struct {
	store         store.Store
	tokens        *auth.Tokens
	ingester      *Ingester
	translator    *chat.Translator
	executor      *chat.Executor
	explainer     *chat.Explainer
	conversations *chat.Conversations
}

func NewFinanceService(
	s store.Store,
	tokens *auth.Tokens,
	ingester *Ingester,
	translator *chat.Translator,
	executor *chat.Executor,
	explainer *chat.Explainer,
) *FinanceService {
	return &FinanceService{
		store:         s,
		tokens:        tokens,
		ingester:      ingester,
		translator:    translator,
		executor:      executor,
		explainer:     explainer,
		conversations: chat.NewConversations(),
	}
}

// Routes builds the API router.
func (s *FinanceService) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.tokens))
			r.Post("/auth/logout", s.handleLogout)
			r.Post("/statements", s.handleUploadStatement)
			r.Post("/chat", s.handleChat)
			r.Get("/goals", s.handleListGoals)
			r.Post("/goals", s.handleCreateGoal)
			r.Put("/goals/{goalID}", s.handleUpdateGoal)
			r.Delete("/goals/{goalID}", s.handleDeleteGoal)
		})
	})

	return r
}

// requestLogger stamps each request with an id and logs its outcome.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context()).With().
			Str("request_id", uuid.NewString()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		ctx := logger.WithContext(r.Context(), log)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		log.Debug().Dur("duration", time.Since(start)).Msg("request handled")
	})
}

func (s *FinanceService) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

func (s *FinanceService) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.internalError(w, r, err, "hash password")
		return
	}
	user, err := s.store.CreateUser(r.Context(), req.Email, hash)
	if errors.Is(err, store.ErrDuplicateEmail) {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		s.internalError(w, r, err, "create user")
		return
	}

	s.issueToken(w, r, user)
}

func (s *FinanceService) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
	if errors.Is(err, store.ErrNotFound) || (err == nil && !auth.CheckPassword(user.PasswordHash, req.Password)) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		s.internalError(w, r, err, "look up user")
		return
	}

	s.issueToken(w, r, user)
}

func (s *FinanceService) issueToken(w http.ResponseWriter, r *http.Request, user *store.User) {
	token, err := s.tokens.Sign(user.ID, user.Email)
	if err != nil {
		s.internalError(w, r, err, "sign token")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, Email: user.Email})
}

func (s *FinanceService) handleLogout(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	s.conversations.Reset(session.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *FinanceService) handleUploadStatement(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form with a file field")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		s.internalError(w, r, err, "read upload")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "uploaded file is empty")
		return
	}
	if len(data) > maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	result, err := s.ingester.Ingest(r.Context(), session.UserID, header.Filename, data)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("filename", header.Filename).Msg("statement ingestion failed")
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("could not process statement: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer string `json:"answer"`
	SQL    string `json:"sql,omitempty"`
}

const cannotAnswerMessage = "I can only answer questions about the statements you've uploaded. Try asking about your spending, income, balances, or specific vendors."

func (s *FinanceService) handleChat(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	history := s.conversations.Recent(session.UserID)
	s.conversations.Remember(session.UserID, question)

	sqlText, err := s.translator.Translate(r.Context(), question, append(history, question))
	if err != nil {
		s.internalError(w, r, err, "translate question")
		return
	}
	if sqlText == "" {
		writeJSON(w, http.StatusOK, chatResponse{Answer: cannotAnswerMessage})
		return
	}

	result, err := s.executor.Execute(r.Context(), sqlText, session.UserID)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Warn().Err(err).Str("sql", sqlText).Msg("generated query failed")
		if errors.Is(err, store.ErrQueryUnsupported) {
			writeJSON(w, http.StatusOK, chatResponse{Answer: cannotAnswerMessage, SQL: sqlText})
			return
		}
		writeJSON(w, http.StatusOK, chatResponse{Answer: fmt.Sprintf("Error running query: %v", err), SQL: sqlText})
		return
	}

	answer := s.explainer.Explain(r.Context(), question, result)
	writeJSON(w, http.StatusOK, chatResponse{Answer: answer, SQL: sqlText})
}

type goalRequest struct {
	Name           string          `json:"name"`
	Type           string          `json:"goal_type"`
	Priority       string          `json:"priority"`
	Notes          string          `json:"notes"`
	TargetAmount   decimal.Decimal `json:"target_amount"`
	CurrentAmount  decimal.Decimal `json:"current_amount"`
	PlannedMonthly decimal.Decimal `json:"planned_monthly"`
	TargetDate     *string         `json:"target_date,omitempty"`
}

type goalResponse struct {
	goal.Goal
	Status          goal.Status     `json:"status"`
	RequiredMonthly decimal.Decimal `json:"required_monthly"`
}

func (req *goalRequest) toGoal(userID int64) (*goal.Goal, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.New("name is required")
	}
	if !req.TargetAmount.IsPositive() {
		return nil, errors.New("target_amount must be positive")
	}
	g := &goal.Goal{
		UserID:         userID,
		Name:           strings.TrimSpace(req.Name),
		Type:           req.Type,
		Priority:       req.Priority,
		Notes:          req.Notes,
		TargetAmount:   req.TargetAmount,
		CurrentAmount:  req.CurrentAmount,
		PlannedMonthly: req.PlannedMonthly,
	}
	if g.Type == "" {
		g.Type = goal.TypeSafety
	}
	if g.Priority == "" {
		g.Priority = goal.DefaultPriority
	}
	if req.TargetDate != nil && strings.TrimSpace(*req.TargetDate) != "" {
		t, err := time.Parse("2006-01-02", strings.TrimSpace(*req.TargetDate))
		if err != nil {
			return nil, fmt.Errorf("target_date must be YYYY-MM-DD: %w", err)
		}
		g.TargetDate = &t
	}
	return g, nil
}

func toGoalResponse(g *goal.Goal, now time.Time) goalResponse {
	return goalResponse{Goal: *g, Status: g.Classify(now), RequiredMonthly: g.RequiredMonthly(now)}
}

func (s *FinanceService) handleListGoals(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	goals, err := s.store.ListGoals(r.Context(), session.UserID)
	if err != nil {
		s.internalError(w, r, err, "list goals")
		return
	}
	now := time.Now()
	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g, now))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *FinanceService) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	g, err := req.toGoal(session.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.CreateGoal(r.Context(), g)
	if err != nil {
		s.internalError(w, r, err, "create goal")
		return
	}
	writeJSON(w, http.StatusCreated, toGoalResponse(created, time.Now()))
}

func (s *FinanceService) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	goalID, err := strconv.ParseInt(chi.URLParam(r, "goalID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	g, err := req.toGoal(session.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	g.ID = goalID

	if err := s.store.UpdateGoal(r.Context(), g); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "goal not found")
			return
		}
		s.internalError(w, r, err, "update goal")
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g, time.Now()))
}

func (s *FinanceService) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	goalID, err := strconv.ParseInt(chi.URLParam(r, "goalID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid goal id")
		return
	}
	if err := s.store.DeleteGoal(r.Context(), session.UserID, goalID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "goal not found")
			return
		}
		s.internalError(w, r, err, "delete goal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *FinanceService) internalError(w http.ResponseWriter, r *http.Request, err error, op string) {
	log := logger.FromContext(r.Context())
	log.Error().Err(err).Str("op", op).Msg("internal error")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
