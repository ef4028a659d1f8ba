package httpadapter_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	httpadapter "github.com/prismchat/prism/internal/adapters/http"
	"github.com/prismchat/prism/internal/adapters/llm"
	"github.com/prismchat/prism/internal/app/chat"
	"github.com/prismchat/prism/internal/app/orchestrator"
	"github.com/prismchat/prism/internal/store"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	log := store.NewLog()
	orch := orchestrator.New(llm.NewMockProvider(), log, orchestrator.Config{
		PollInterval: time.Millisecond,
	})
	svc := chat.NewService(log, orch)

	return httpadapter.NewServer(svc)
}

type messagePayload struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	Content     string `json:"content"`
	IsStreaming bool   `json:"is_streaming"`
	IsError     bool   `json:"is_error"`
	Feedback    string `json:"feedback"`
	VideoURI    string `json:"video_uri"`
}

func listMessages(t *testing.T, srv http.Handler) []messagePayload {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/chat/messages", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []messagePayload `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Messages
}

func waitModelFinalized(t *testing.T, srv http.Handler, id string) messagePayload {
	t.Helper()

	var got messagePayload
	require.Eventually(t, func() bool {
		for _, m := range listMessages(t, srv) {
			if m.ID == id && !m.IsStreaming {
				got = m
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
	return got
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestSendMessageFlow(t *testing.T) {
	srv := newTestServer(t)

	body := []byte(`{"text":"hello there"}`)
	req := httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp struct {
		UserMessage  messagePayload `json:"user_message"`
		ModelMessage messagePayload `json:"model_message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "user", resp.UserMessage.Role)
	require.Equal(t, "model", resp.ModelMessage.Role)
	require.True(t, resp.ModelMessage.IsStreaming)

	final := waitModelFinalized(t, srv, resp.ModelMessage.ID)
	require.False(t, final.IsError)
	require.NotEmpty(t, final.Content)
}

func TestSendMessageWithAttachment(t *testing.T) {
	srv := newTestServer(t)

	data := base64.StdEncoding.EncodeToString([]byte("fake image bytes"))
	body := fmt.Appendf(nil, `{"text":"what is this?","attachment":{"mime_type":"image/png","data":%q}}`, data)
	req := httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)
}

func TestSendMessageValidation(t *testing.T) {
	srv := newTestServer(t)

	for name, body := range map[string]string{
		"empty turn":   `{"text":""}`,
		"bad json":     `{`,
		"bad base64":   `{"text":"x","attachment":{"mime_type":"image/png","data":"%%%"}}`,
		"missing mime": `{"text":"x","attachment":{"mime_type":"","data":"aGk="}}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewReader([]byte(body)))
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)
			require.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRetryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewReader([]byte(`{"text":"try this"}`)))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp struct {
		ModelMessage messagePayload `json:"model_message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	waitModelFinalized(t, srv, resp.ModelMessage.ID)

	req = httptest.NewRequest(http.MethodPost, "/chat/messages/"+resp.ModelMessage.ID+"/retry", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	waitModelFinalized(t, srv, resp.ModelMessage.ID)
}

func TestRetryUnknownMessage(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/chat/messages/nope/retry", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedbackEndpointToggles(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewReader([]byte(`{"text":"rate me"}`)))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp struct {
		ModelMessage messagePayload `json:"model_message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	id := resp.ModelMessage.ID
	waitModelFinalized(t, srv, id)

	sendFeedback := func(value string) int {
		body := []byte(`{"feedback":"` + value + `"}`)
		req := httptest.NewRequest(http.MethodPost, "/chat/messages/"+id+"/feedback", bytes.NewReader(body))
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusOK, sendFeedback("up"))
	final := waitModelFinalized(t, srv, id)
	require.Equal(t, "up", final.Feedback)

	require.Equal(t, http.StatusOK, sendFeedback("up"))
	final = waitModelFinalized(t, srv, id)
	require.Empty(t, final.Feedback)

	require.Equal(t, http.StatusBadRequest, sendFeedback("sideways"))
}

func TestClearEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewReader([]byte(`{"text":"hello"}`)))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/chat/messages", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	require.Empty(t, listMessages(t, srv))
}
