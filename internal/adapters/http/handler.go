// Package httpadapter exposes the chat operations to the browser UI.
package httpadapter

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prismchat/prism/internal/app/chat"
	"github.com/prismchat/prism/internal/domain"
	"github.com/prismchat/prism/internal/observability"
)

type Server struct {
	svc *chat.Service
}

func NewServer(svc *chat.Service) http.Handler {
	s := &Server{svc: svc}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.HandleFunc("GET /chat/messages", s.handleListMessages)
	mux.HandleFunc("POST /chat/messages", s.handleSendMessage)
	mux.HandleFunc("DELETE /chat/messages", s.handleClear)
	mux.HandleFunc("POST /chat/messages/{id}/retry", s.handleRetry)
	mux.HandleFunc("POST /chat/messages/{id}/feedback", s.handleFeedback)

	return chainMiddlewares(mux, withLogging, withCORS, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type attachmentRequest struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type sendMessageRequest struct {
	Text       string             `json:"text"`
	Attachment *attachmentRequest `json:"attachment,omitempty"`
}

type sendMessageResponse struct {
	UserMessage  messageResponse `json:"user_message"`
	ModelMessage messageResponse `json:"model_message"`
}

type feedbackRequest struct {
	Feedback string `json:"feedback"`
}

type groundingSourceResponse struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

type messageResponse struct {
	ID               string                    `json:"id"`
	Role             string                    `json:"role"`
	Content          string                    `json:"content"`
	CreatedAt        time.Time                 `json:"created_at"`
	IsStreaming      bool                      `json:"is_streaming"`
	IsError          bool                      `json:"is_error"`
	Feedback         string                    `json:"feedback,omitempty"`
	GroundingSources []groundingSourceResponse `json:"grounding_sources,omitempty"`
	VideoURI         string                    `json:"video_uri,omitempty"`
}

type listMessagesResponse struct {
	Messages []messageResponse `json:"messages"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listMessagesResponse{
		Messages: toMessagesResponse(s.svc.Messages()),
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	var att *domain.Attachment
	if req.Attachment != nil {
		data, err := base64.StdEncoding.DecodeString(req.Attachment.Data)
		if err != nil {
			badRequest(w, "attachment data must be base64")
			return
		}
		if req.Attachment.MIMEType == "" {
			badRequest(w, "attachment mime_type is required")
			return
		}
		att = &domain.Attachment{
			MIMEType: req.Attachment.MIMEType,
			Data:     data,
		}
	}

	if req.Text == "" && att == nil {
		badRequest(w, "text or attachment is required")
		return
	}

	userMsg, modelMsg, err := s.svc.SendMessage(r.Context(), req.Text, att)
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, sendMessageResponse{
		UserMessage:  toMessageResponse(userMsg),
		ModelMessage: toMessageResponse(modelMsg),
	})
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	id := domain.MessageID(r.PathValue("id"))

	err := s.svc.Retry(r.Context(), id)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusAccepted)
	case errors.Is(err, domain.ErrMessageNotFound):
		http.NotFound(w, r)
	case errors.Is(err, domain.ErrInternalInconsistency):
		// Refused retries stay invisible to the user; the service
		// already logged the inconsistency.
		w.WriteHeader(http.StatusNoContent)
	default:
		internalError(w, err)
	}
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	id := domain.MessageID(r.PathValue("id"))

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	var fb domain.Feedback
	switch req.Feedback {
	case "up":
		fb = domain.FeedbackUp
	case "down":
		fb = domain.FeedbackDown
	default:
		badRequest(w, "feedback must be \"up\" or \"down\"")
		return
	}

	if err := s.svc.SubmitFeedback(id, fb); err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.svc.ClearConversation()
	w.WriteHeader(http.StatusNoContent)
}

// ─────────────────────────────────────────────
// Conversion helpers
// ─────────────────────────────────────────────

func toMessageResponse(m *domain.Message) messageResponse {
	resp := messageResponse{
		ID:          string(m.ID),
		Role:        string(m.Role),
		Content:     m.Content,
		CreatedAt:   m.CreatedAt,
		IsStreaming: m.IsStreaming,
		IsError:     m.IsError,
		Feedback:    string(m.Feedback),
	}

	for _, src := range m.GroundingSources {
		resp.GroundingSources = append(resp.GroundingSources, groundingSourceResponse{
			Title: src.Title,
			URI:   src.URI,
		})
	}

	if m.Video != nil {
		resp.VideoURI = m.Video.URI
	}

	return resp
}

func toMessagesResponse(msgs []*domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

// ─────────────────────────────────────────────
// HTTP helpers
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

func internalError(w http.ResponseWriter, err error) {
	observability.Logger().Error("internal error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}
