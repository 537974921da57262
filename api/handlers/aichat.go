package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/neuroconnect/neuro-connect-api/config"
	"github.com/neuroconnect/neuro-connect-api/intent"
	"github.com/neuroconnect/neuro-connect-api/llm"
)

// historyWindow caps how many prior turns are forwarded to the model
const historyWindow = 10

// AIChat exposes the assistant endpoint. Messages are classified before
// anything reaches the model: crisis language gets the static escalation
// text, off-topic messages are refused, and the rest is forwarded with the
// recent conversation as context.
type AIChat struct {
	LLM        llm.Client
	Classifier *intent.Classifier
}

// AIChatRequest carries the latest message and the client-side conversation
// history, oldest first
type AIChatRequest struct {
	Message string `json:"message"`
	History []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"history"`
}

// AIChatResponse is the assistant reply plus the routing decision, so the
// client can render crisis escalations differently
type AIChatResponse struct {
	Reply   string `json:"reply"`
	Outcome string `json:"outcome"`
}

// ChatHandler classifies the message and either answers statically or
// forwards to the language model. Model failures degrade to a static
// fallback with a 200 so the client chat flow never breaks.
func (a AIChat) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req AIChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Message == "" {
		http.Error(w, `{"success": false, "message": "Message is required"}`, http.StatusBadRequest)
		return
	}

	classifier := a.Classifier
	if classifier == nil {
		classifier = intent.Default()
	}

	result := classifier.Classify(req.Message)
	switch result.Outcome {
	case intent.OutcomeCrisis:
		writeAIChatResponse(w, crisisResponse, result.Outcome)
		return
	case intent.OutcomeRefuse:
		writeAIChatResponse(w, offTopicResponse, result.Outcome)
		return
	}

	messages := []llm.Message{{Role: "system", Content: assistantSystemPrompt}}
	history := req.History
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: req.Message})

	reply, err := a.LLM.Chat(r.Context(), messages)
	if err != nil {
		zap.S().Errorw("llm chat failed", "rule", result.Rule, "error", err)
		writeAIChatResponse(w, fallbackResponse, result.Outcome)
		return
	}

	writeAIChatResponse(w, reply, result.Outcome)
}

func writeAIChatResponse(w http.ResponseWriter, reply string, outcome intent.Outcome) {
	b, err := json.Marshal(AIChatResponse{Reply: reply, Outcome: string(outcome)})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
