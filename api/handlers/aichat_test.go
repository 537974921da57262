package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neuroconnect/neuro-connect-api/api/handlers"
	"github.com/neuroconnect/neuro-connect-api/intent"
	"github.com/neuroconnect/neuro-connect-api/llm"
)

type stubLLM struct {
	calls    int
	messages []llm.Message
	reply    string
	err      error
}

func (s *stubLLM) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	s.calls++
	s.messages = messages
	return s.reply, s.err
}

func postAIChat(t *testing.T, a handlers.AIChat, payload string) (*httptest.ResponseRecorder, handlers.AIChatResponse) {
	t.Helper()
	req, err := http.NewRequest("POST", "/api/v1/ai-chat", bytes.NewBufferString(payload))
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.ChatHandler).ServeHTTP(rr, req)

	var resp handlers.AIChatResponse
	if rr.Code == http.StatusOK {
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
	}
	return rr, resp
}

func TestAIChat_ChatHandlerCrisisBypassesModel(t *testing.T) {
	stub := &stubLLM{reply: "model reply"}
	a := handlers.AIChat{LLM: stub, Classifier: intent.Default()}

	rr, resp := postAIChat(t, a, `{"message": "I want to die"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, string(intent.OutcomeCrisis), resp.Outcome)
	assert.Contains(t, resp.Reply, "988")
	assert.Equal(t, 0, stub.calls, "crisis messages must never reach the model")
}

func TestAIChat_ChatHandlerRefusesOffTopic(t *testing.T) {
	stub := &stubLLM{reply: "model reply"}
	a := handlers.AIChat{LLM: stub, Classifier: intent.Default()}

	rr, resp := postAIChat(t, a, `{"message": "what is the capital of France?"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, string(intent.OutcomeRefuse), resp.Outcome)
	assert.Equal(t, 0, stub.calls)
}

func TestAIChat_ChatHandlerForwardsWithHistoryWindow(t *testing.T) {
	stub := &stubLLM{reply: "that sounds really hard"}
	a := handlers.AIChat{LLM: stub, Classifier: intent.Default()}

	history := make([]map[string]string, 0, 14)
	for i := 0; i < 14; i++ {
		history = append(history, map[string]string{"role": "user", "content": "older turn"})
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"message": "I've been feeling anxious lately",
		"history": history,
	})

	rr, resp := postAIChat(t, a, string(payload))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, string(intent.OutcomeForward), resp.Outcome)
	assert.Equal(t, "that sounds really hard", resp.Reply)
	assert.Equal(t, 1, stub.calls)

	// system prompt + trimmed history + latest message
	assert.Len(t, stub.messages, 1+10+1)
	assert.Equal(t, "system", stub.messages[0].Role)
	assert.Equal(t, "I've been feeling anxious lately", stub.messages[len(stub.messages)-1].Content)
}

func TestAIChat_ChatHandlerModelFailureFallsBack(t *testing.T) {
	stub := &stubLLM{err: errors.New("rate limited")}
	a := handlers.AIChat{LLM: stub, Classifier: intent.Default()}

	rr, resp := postAIChat(t, a, `{"message": "I've been feeling anxious lately"}`)

	// a model failure must not break the chat flow
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, string(intent.OutcomeForward), resp.Outcome)
	assert.Contains(t, resp.Reply, "trouble responding")
}

func TestAIChat_ChatHandlerRequiresMessage(t *testing.T) {
	stub := &stubLLM{}
	a := handlers.AIChat{LLM: stub, Classifier: intent.Default()}

	rr, _ := postAIChat(t, a, `{"message": ""}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, stub.calls)
}
