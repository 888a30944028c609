package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"chatassist/internal/auth"
	"chatassist/internal/core"
	"chatassist/internal/store"
)

type APIHandler struct {
	chatService *core.ChatService
	auth        *auth.Authenticator
	validate    *validator.Validate
	log         *zap.Logger
}

func NewAPIHandler(cs *core.ChatService, a *auth.Authenticator, log *zap.Logger) *APIHandler {
	return &APIHandler{
		chatService: cs,
		auth:        a,
		validate:    validator.New(),
		log:         log,
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

// writeServiceError maps service sentinels onto HTTP status codes.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	default:
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decode unmarshals and validates a JSON request body.
func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

// Auth

type credentialsRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	existing, err := h.chatService.GetUserByExternalID(req.UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "user already exists")
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.Error("failed to hash password", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to process password")
		return
	}

	user, err := h.chatService.CreateUser(req.UserID, hashedPassword)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.chatService.GetUserByExternalID(req.UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.auth.GenerateJWT(req.UserID)
	if err != nil {
		h.log.Error("failed to generate JWT", zap.String("user", req.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Sessions

func (h *APIHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	sessions, err := h.chatService.ListSessions(userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []store.ChatSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *APIHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	session, err := h.chatService.CreateSession(userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":       true,
		"session_id":    session.ID,
		"session_title": session.Title,
	})
}

type selectSessionResponse struct {
	Session  *store.ChatSession `json:"session"`
	Messages []store.Message    `json:"messages"`
}

// SelectSessionHandler resolves the working session: an explicit
// ?session_id= must belong to the caller, otherwise the most recent session
// is returned, creating one lazily for first-time users.
func (h *APIHandler) SelectSessionHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	sessionID := r.URL.Query().Get("session_id")

	session, messages, err := h.chatService.SelectSession(userID, sessionID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if messages == nil {
		messages = []store.Message{}
	}
	writeJSON(w, http.StatusOK, selectSessionResponse{Session: session, Messages: messages})
}

type renameSessionRequest struct {
	Title string `json:"title" validate:"required"`
}

func (h *APIHandler) RenameSessionHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	sessionID := chi.URLParam(r, "sessionID")

	var req renameSessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.chatService.RenameSession(userID, sessionID, req.Title); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *APIHandler) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.chatService.DeleteSession(userID, sessionID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *APIHandler) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatService.ListMessages(userID, sessionID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if messages == nil {
		messages = []store.Message{}
	}
	writeJSON(w, http.StatusOK, map[string][]store.Message{"chats": messages})
}

// Chat

type postMessageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" validate:"required"`
}

type postMessageResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// PostMessageHandler runs the full exchange. A completion failure still
// yields a 200 response under the default swallow policy; the error text is
// the response body's content.
func (h *APIHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	var req postMessageRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.chatService.PostMessage(r.Context(), userID, req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, core.ErrRemote) {
			h.log.Error("completion failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "completion service error")
			return
		}
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, postMessageResponse{
		Response:  result.ResponseText,
		SessionID: result.SessionID,
	})
}

type correctResponseRequest struct {
	Response string `json:"response" validate:"required"`
}

func (h *APIHandler) CorrectResponseHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	messageID := chi.URLParam(r, "messageID")

	var req correctResponseRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.chatService.CorrectResponse(userID, messageID, req.Response); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "message not found")
			return
		}
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
