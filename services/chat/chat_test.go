package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"carhub/models"

	"go.uber.org/zap"
)

func testConfig(url string) Config {
	return Config{
		DetectIntentURL: url,
		AccessToken:     "test-token",
		LanguageCode:    "en",
		TimeZone:        "Asia/Colombo",
	}
}

func TestStartSeedsGreeting(t *testing.T) {
	svc := NewService(testConfig("http://unused"), zap.NewNop())

	convo := svc.Start()
	if convo.SessionID == "" {
		t.Fatalf("expected a session id")
	}
	if len(convo.Messages) != 1 {
		t.Fatalf("expected one opening message, got %d", len(convo.Messages))
	}
	if convo.Messages[0].Sender != models.ChatSenderBot || convo.Messages[0].Text != Greeting {
		t.Fatalf("unexpected opening message: %+v", convo.Messages[0])
	}
}

func TestSendProxiesToNLU(t *testing.T) {
	var gotAuth, gotText, gotLang, gotSource string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req struct {
			QueryInput struct {
				Text struct {
					Text         string `json:"text"`
					LanguageCode string `json:"languageCode"`
				} `json:"text"`
			} `json:"queryInput"`
			QueryParams struct {
				Source string `json:"source"`
			} `json:"queryParams"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		gotText = req.QueryInput.Text.Text
		gotLang = req.QueryInput.Text.LanguageCode
		gotSource = req.QueryParams.Source
		json.NewEncoder(w).Encode(map[string]any{
			"queryResult": map[string]any{"fulfillmentText": "We open at 8am."},
		})
	}))
	defer srv.Close()

	svc := NewService(testConfig(srv.URL), zap.NewNop())
	convo := svc.Start()

	convo, err := svc.Send(context.Background(), convo.SessionID, "when do you open?")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("expected bearer credential on the NLU call, got %q", gotAuth)
	}
	if gotText != "when do you open?" || gotLang != "en" || gotSource != "CARHUB_WIDGET" {
		t.Fatalf("unexpected detect-intent payload: text=%q lang=%q source=%q", gotText, gotLang, gotSource)
	}

	if len(convo.Messages) != 3 {
		t.Fatalf("expected greeting + user + reply, got %d messages", len(convo.Messages))
	}
	if convo.Messages[1].Sender != models.ChatSenderUser || convo.Messages[1].Text != "when do you open?" {
		t.Fatalf("user message not recorded: %+v", convo.Messages[1])
	}
	if convo.Messages[2].Sender != models.ChatSenderBot || convo.Messages[2].Text != "We open at 8am." {
		t.Fatalf("bot reply not recorded: %+v", convo.Messages[2])
	}
	if convo.Typing {
		t.Fatalf("typing must clear once the reply lands")
	}
}

func TestSendFailureAppendsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewService(testConfig(srv.URL), zap.NewNop())
	convo := svc.Start()

	convo, err := svc.Send(context.Background(), convo.SessionID, "hello?")
	if err == nil {
		t.Fatalf("expected the NLU failure to surface")
	}
	if convo == nil {
		t.Fatalf("the transcript must still be returned alongside the error")
	}
	last := convo.Messages[len(convo.Messages)-1]
	if last.Sender != models.ChatSenderBot || last.Text != FallbackReply {
		t.Fatalf("expected fallback reply appended, got %+v", last)
	}
	if convo.Typing {
		t.Fatalf("typing must clear on failure")
	}

	// No retry happens on its own; the next send is a fresh attempt.
	if _, err := svc.Send(context.Background(), convo.SessionID, "still there?"); err == nil {
		t.Fatalf("expected second send to fail against the same upstream")
	}
	convo, _ = svc.Conversation(convo.SessionID)
	if got := len(convo.Messages); got != 5 {
		t.Fatalf("expected 5 messages after two failed sends, got %d", got)
	}
}

func TestSendRejectedWhileTyping(t *testing.T) {
	svc := NewService(testConfig("http://unused"), zap.NewNop())
	convo := svc.Start()

	svc.mu.Lock()
	svc.convos[convo.SessionID].Typing = true
	svc.mu.Unlock()

	if _, err := svc.Send(context.Background(), convo.SessionID, "anyone?"); err != ErrMessageInFlight {
		t.Fatalf("expected ErrMessageInFlight, got %v", err)
	}
}

func TestSendUnknownConversation(t *testing.T) {
	svc := NewService(testConfig("http://unused"), zap.NewNop())

	if _, err := svc.Send(context.Background(), "nope", "hi"); err != ErrConversationNotFound {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
	if _, err := svc.Conversation("nope"); err != ErrConversationNotFound {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestEmptyFulfillmentGetsClarification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"queryResult": map[string]any{}})
	}))
	defer srv.Close()

	svc := NewService(testConfig(srv.URL), zap.NewNop())
	convo := svc.Start()

	convo, err := svc.Send(context.Background(), convo.SessionID, "mumble")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	last := convo.Messages[len(convo.Messages)-1]
	if last.Sender != models.ChatSenderBot || last.Text == "" {
		t.Fatalf("expected a clarification reply, got %+v", last)
	}
}
