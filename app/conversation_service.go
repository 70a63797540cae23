package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"aistats/ai"
	"aistats/domain/conversation"
	"aistats/domain/core"
	"aistats/domain/stats"
	"aistats/internal"
	apperrors "aistats/internal/errors"
	"aistats/internal/metrics"
	"aistats/internal/session"
	"aistats/ports"
)

// Model call phases, used as the latency metric label
const (
	PhaseIntent    = "intent"
	PhaseNarration = "narration"
)

// TurnOutcome is what one conversation turn produced
type TurnOutcome struct {
	Reply     conversation.Turn `json:"reply"`
	Results   []stats.Result    `json:"results"`
	Outcome   string            `json:"outcome"`
	Sentences []ai.Sentence     `json:"sentences"`
}

// ConversationService runs the two-phase tool-calling protocol for a session
type ConversationService struct {
	model    ports.ChatModel
	prompts  *ai.PromptManager
	registry *ToolRegistry
	recorder ports.TurnRecorder
	metrics  *metrics.Metrics
	timeout  time.Duration
	logger   *internal.Logger
}

// ServiceOption configures a ConversationService
type ServiceOption func(*ConversationService)

// WithTurnRecorder persists committed turns (best effort)
func WithTurnRecorder(r ports.TurnRecorder) ServiceOption {
	return func(s *ConversationService) { s.recorder = r }
}

// WithMetrics records turn, tool and latency metrics
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *ConversationService) { s.metrics = m }
}

// WithModelTimeout bounds each model call; zero means the caller's context only
func WithModelTimeout(d time.Duration) ServiceOption {
	return func(s *ConversationService) { s.timeout = d }
}

// WithServiceLogger replaces the default logger
func WithServiceLogger(l *internal.Logger) ServiceOption {
	return func(s *ConversationService) { s.logger = l.With("Conversation") }
}

// NewConversationService wires the orchestrator. model may be nil, in which case
// every turn fails with MODEL_DISABLED.
func NewConversationService(model ports.ChatModel, prompts *ai.PromptManager, registry *ToolRegistry, opts ...ServiceOption) *ConversationService {
	if prompts == nil {
		prompts = ai.NewPromptManager("")
	}
	if registry == nil {
		registry = NewToolRegistry()
	}
	s := &ConversationService{
		model:    model,
		prompts:  prompts,
		registry: registry,
		logger:   internal.DefaultLogger.With("Conversation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether a model is configured
func (s *ConversationService) Enabled() bool {
	return s.model != nil
}

// Converse handles one user utterance end to end. On any model failure the
// session history is left untouched and a TRANSPORT_ERROR is returned.
func (s *ConversationService) Converse(ctx context.Context, sess *session.Session, utterance string) (*TurnOutcome, error) {
	if s.model == nil {
		return nil, apperrors.New(apperrors.CodeModelDisabled, "no language model configured")
	}
	if strings.TrimSpace(utterance) == "" {
		return nil, apperrors.InvalidInput("message cannot be empty")
	}

	unlock := sess.LockTurn()
	defer unlock()

	store := sess.Store()
	system, err := s.prompts.SystemPrompt(store.CurrentDataset(), store.Labels())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build system prompt")
	}

	messages := make([]ports.ChatMessage, 0, 8)
	messages = append(messages, ports.ChatMessage{Role: ports.RoleSystem, Content: system})
	for _, turn := range sess.History() {
		messages = append(messages, ports.ChatMessage{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, ports.ChatMessage{Role: ports.RoleUser, Content: utterance})

	first, err := s.call(ctx, PhaseIntent, ports.ChatRequest{
		Messages:   messages,
		Tools:      ai.ToolDefinitions(),
		ToolChoice: "auto",
	})
	if err != nil {
		s.metrics.CountTurn(metrics.OutcomeFailed)
		return nil, err
	}

	outcome := &TurnOutcome{}
	var reply string

	if len(first.ToolCalls) > 0 {
		outcome.Results = s.dispatch(sess, first.ToolCalls)

		summary, err := SummarizeResults(first.ToolCalls, outcome.Results)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to serialize analysis results")
		}
		instruction, err := s.prompts.NarrationInstruction()
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to load narration instruction")
		}

		narrationMessages := make([]ports.ChatMessage, 0, len(messages)+2)
		narrationMessages = append(narrationMessages, messages...)
		narrationMessages = append(narrationMessages,
			ports.ChatMessage{Role: ports.RoleAssistant, Content: ai.ResultsPreamble + summary},
			ports.ChatMessage{Role: ports.RoleUser, Content: instruction},
		)
		second, err := s.call(ctx, PhaseNarration, ports.ChatRequest{Messages: narrationMessages})
		if err != nil {
			s.metrics.CountTurn(metrics.OutcomeFailed)
			return nil, err
		}

		reply = ai.CleanReply(second.Content)
		if reply == "" {
			reply = strings.TrimSpace(second.Content)
		}
		outcome.Outcome = metrics.OutcomeNarrated
	} else {
		reply = strings.TrimSpace(first.Content)
		outcome.Outcome = metrics.OutcomeDirect
		if ai.IsStatisticalRequest(utterance) || ai.LeaksCode(reply) {
			guidance, err := s.prompts.GuidanceMessage()
			if err != nil {
				return nil, apperrors.Wrap(err, "failed to load guidance message")
			}
			s.logger.Info("direct reply replaced with guidance (session=%s)", sess.ID)
			reply = guidance
			outcome.Outcome = metrics.OutcomeGuidance
		}
	}

	userTurn := conversation.NewTurn(conversation.RoleUser, utterance, nil)
	assistantTurn := conversation.NewTurn(conversation.RoleAssistant, reply, outcome.Results)
	sess.AppendTurns(userTurn, assistantTurn)
	s.record(ctx, sess.ID, userTurn, assistantTurn)

	outcome.Reply = assistantTurn
	outcome.Sentences = ai.FormatReply(reply)
	s.metrics.CountTurn(outcome.Outcome)
	s.logger.Debug("turn complete: session=%s outcome=%s results=%d", sess.ID, outcome.Outcome, len(outcome.Results))
	return outcome, nil
}

func (s *ConversationService) call(ctx context.Context, phase string, req ports.ChatRequest) (*ports.ChatResponse, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	resp, err := s.model.Chat(ctx, req)
	s.metrics.ObserveModel(phase, started)
	if err != nil {
		s.logger.Warn("%s request failed: %v", phase, err)
		return nil, core.NewTransportError(phase, err)
	}
	if resp == nil {
		return nil, core.NewTransportError(phase, fmt.Errorf("empty response"))
	}
	return resp, nil
}

// dispatch runs tool calls one at a time in the order the model issued them
func (s *ConversationService) dispatch(sess *session.Session, calls []ports.ToolCall) []stats.Result {
	results := make([]stats.Result, 0, len(calls))
	for _, call := range calls {
		s.logger.Debug("dispatching %s(%s)", call.Name, call.Arguments)
		result := s.registry.Dispatch(sess.Engine(), call)
		s.metrics.CountToolCall(call.Name, !stats.IsError(result))
		results = append(results, result)
	}
	return results
}

func (s *ConversationService) record(ctx context.Context, id core.SessionID, turns ...conversation.Turn) {
	if s.recorder == nil {
		return
	}
	records := make([]ports.TurnRecord, 0, len(turns))
	for _, t := range turns {
		rec := ports.TurnRecord{
			ID:        t.ID,
			SessionID: id,
			Role:      string(t.Role),
			Content:   t.Content,
			CreatedAt: t.CreatedAt,
		}
		if len(t.Results) > 0 {
			raw, err := json.Marshal(t.Results)
			if err != nil {
				s.logger.Warn("failed to encode results for turn %s: %v", t.ID, err)
			} else {
				rec.Results = raw
			}
		}
		records = append(records, rec)
	}
	if err := s.recorder.RecordTurns(ctx, records); err != nil {
		s.logger.Warn("failed to record turns for session %s: %v", id, err)
	}
}

// SummarizeResults renders one "name: <json>" line per tool call, in call order
func SummarizeResults(calls []ports.ToolCall, results []stats.Result) (string, error) {
	lines := make([]string, 0, len(results))
	for i, r := range results {
		raw, err := json.Marshal(r)
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("%s: %s", calls[i].Name, raw))
	}
	return strings.Join(lines, "\n"), nil
}
