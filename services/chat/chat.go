// File: services/chat/chat.go
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"carhub/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrConversationNotFound is returned for unknown widget sessions.
var ErrConversationNotFound = errors.New("conversation not found")

// ErrMessageInFlight rejects a send while the bot is still "typing" for the
// same conversation.
var ErrMessageInFlight = errors.New("a message is already awaiting a reply")

// FallbackReply is appended to the log when the NLU call fails. A send
// failure is terminal for that message; nothing is retried.
const FallbackReply = "Sorry, I'm having trouble answering right now. Please try again."

// Greeting opens every new conversation.
const Greeting = "Hi! I'm your car service assistant. How can I help you today?"

// Config points the proxy at the conversational NLU endpoint. The bearer
// credential lives here, server-side, never in anything shipped to browsers.
type Config struct {
	DetectIntentURL string
	AccessToken     string
	LanguageCode    string
	TimeZone        string
}

// detectIntentRequest is the NLU wire format.
type detectIntentRequest struct {
	QueryInput struct {
		Text struct {
			Text         string `json:"text"`
			LanguageCode string `json:"languageCode"`
		} `json:"text"`
	} `json:"queryInput"`
	QueryParams struct {
		Source   string `json:"source"`
		TimeZone string `json:"timeZone"`
	} `json:"queryParams"`
}

type detectIntentResponse struct {
	QueryResult struct {
		FulfillmentText string `json:"fulfillmentText"`
	} `json:"queryResult"`
}

// Service holds the in-memory conversation logs and proxies each user
// message to the NLU endpoint, one outbound call per message.
type Service struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger

	mu     sync.Mutex
	convos map[string]*models.Conversation
}

func NewService(cfg Config, logger *zap.Logger) *Service {
	return &Service{
		cfg:    cfg,
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logger,
		convos: make(map[string]*models.Conversation),
	}
}

// Start opens a conversation with a greeting and returns its session id.
func (s *Service) Start() *models.Conversation {
	convo := &models.Conversation{
		SessionID: uuid.New().String(),
		Messages: []models.ChatMessage{{
			Sender: models.ChatSenderBot,
			Text:   Greeting,
			SentAt: time.Now(),
		}},
	}
	s.mu.Lock()
	s.convos[convo.SessionID] = convo
	s.mu.Unlock()
	return s.snapshot(convo.SessionID)
}

// Conversation returns a copy of the transcript for rendering.
func (s *Service) Conversation(sessionID string) (*models.Conversation, error) {
	convo := s.snapshot(sessionID)
	if convo == nil {
		return nil, ErrConversationNotFound
	}
	return convo, nil
}

// Send appends the user's message, calls the NLU endpoint, and appends the
// bot's reply. While the call is in flight the conversation reports a
// typing state and rejects further sends. On failure the fallback reply is
// appended and the error surfaces for the widget's dismissible banner.
func (s *Service) Send(ctx context.Context, sessionID, text string) (*models.Conversation, error) {
	s.mu.Lock()
	convo, ok := s.convos[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrConversationNotFound
	}
	if convo.Typing {
		s.mu.Unlock()
		return nil, ErrMessageInFlight
	}
	convo.Messages = append(convo.Messages, models.ChatMessage{
		Sender: models.ChatSenderUser,
		Text:   text,
		SentAt: time.Now(),
	})
	convo.Typing = true
	s.mu.Unlock()

	reply, callErr := s.detectIntent(ctx, text)

	s.mu.Lock()
	convo.Typing = false
	if callErr != nil {
		convo.Messages = append(convo.Messages, models.ChatMessage{
			Sender: models.ChatSenderBot,
			Text:   FallbackReply,
			SentAt: time.Now(),
		})
	} else {
		convo.Messages = append(convo.Messages, models.ChatMessage{
			Sender: models.ChatSenderBot,
			Text:   reply,
			SentAt: time.Now(),
		})
	}
	s.mu.Unlock()

	if callErr != nil {
		s.logger.Warn("NLU call failed", zap.Error(callErr))
		return s.snapshot(sessionID), callErr
	}
	return s.snapshot(sessionID), nil
}

func (s *Service) detectIntent(ctx context.Context, text string) (string, error) {
	var body detectIntentRequest
	body.QueryInput.Text.Text = text
	body.QueryInput.Text.LanguageCode = s.cfg.LanguageCode
	body.QueryParams.Source = "CARHUB_WIDGET"
	body.QueryParams.TimeZone = s.cfg.TimeZone

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal detect-intent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.DetectIntentURL, bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build detect-intent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+s.cfg.AccessToken)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("detect-intent request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("NLU service returned status %d", resp.StatusCode)
	}

	var out detectIntentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode detect-intent response: %w", err)
	}
	if out.QueryResult.FulfillmentText == "" {
		return "I'm not sure I understood that. Could you rephrase?", nil
	}
	return out.QueryResult.FulfillmentText, nil
}

// snapshot returns a deep-enough copy so handlers never render a
// conversation the service is mutating.
func (s *Service) snapshot(sessionID string) *models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	convo, ok := s.convos[sessionID]
	if !ok {
		return nil
	}
	copied := *convo
	copied.Messages = append([]models.ChatMessage(nil), convo.Messages...)
	return &copied
}
