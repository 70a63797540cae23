package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"aistats/adapters/llm"
	"aistats/ai"
	"aistats/domain/core"
	"aistats/domain/dataset"
	"aistats/domain/stats"
	apperrors "aistats/internal/errors"
	"aistats/internal/metrics"
	"aistats/internal/session"
	"aistats/ports"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	ds, err := dataset.FromRecords("survey", []string{"score", "group", "age"}, [][]string{
		{"1", "a", "20"},
		{"2", "a", "22"},
		{"3", "a", "25"},
		{"4", "b", "31"},
		{"5", "b", "28"},
		{"6", "b", "40"},
	})
	require.NoError(t, err)
	s := session.New(core.SessionID(core.NewID()))
	s.ReplaceDataset(ds)
	return s
}

type recorderStub struct {
	mu      sync.Mutex
	records []ports.TurnRecord
	err     error
}

func (r *recorderStub) RecordTurns(_ context.Context, turns []ports.TurnRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, turns...)
	return nil
}

func (r *recorderStub) ListTurns(_ context.Context, _ core.SessionID, _ int) ([]ports.TurnRecord, error) {
	return r.records, nil
}

func TestConverse_ToolCallsThenNarration(t *testing.T) {
	sess := newSession(t)
	model := llm.NewMockChatModel(
		llm.ToolCallResponse(
			ports.ToolCall{ID: "1", Name: "descriptive_stats", Arguments: `{"variables":["score"]}`},
			ports.ToolCall{ID: "2", Name: "pearson_correlation", Arguments: `{"variables":["score","age"]}`},
		),
		llm.TextResponse("分数均值为3.5。因此分数与年龄存在显著相关。"),
	)
	m := metrics.New()
	recorder := &recorderStub{}
	svc := NewConversationService(model, nil, nil, WithMetrics(m), WithTurnRecorder(recorder))

	out, err := svc.Converse(context.Background(), sess, "分析分数和年龄的关系")
	require.NoError(t, err)

	assert.Equal(t, metrics.OutcomeNarrated, out.Outcome)
	require.Len(t, out.Results, 2)
	assert.Equal(t, stats.KindDescriptive, out.Results[0].Kind())
	assert.Equal(t, stats.KindCorrelation, out.Results[1].Kind())
	assert.Equal(t, "分数均值为3.5。因此分数与年龄存在显著相关。", out.Reply.Content)
	require.Len(t, out.Sentences, 2)
	assert.True(t, out.Sentences[1].Conclusion)

	require.Equal(t, 2, model.Calls())
	intent := model.Requests[0]
	assert.Equal(t, "auto", intent.ToolChoice)
	assert.Len(t, intent.Tools, 3)
	assert.Equal(t, ports.RoleSystem, intent.Messages[0].Role)
	assert.Contains(t, intent.Messages[0].Content, "score")

	narration := model.Requests[1]
	assert.Empty(t, narration.Tools, "narration request must not offer tools")
	n := len(narration.Messages)
	require.GreaterOrEqual(t, n, 2)
	summary := narration.Messages[n-2]
	assert.Equal(t, ports.RoleAssistant, summary.Role)
	assert.True(t, strings.HasPrefix(summary.Content, ai.ResultsPreamble))
	descAt := strings.Index(summary.Content, "descriptive_stats: ")
	corrAt := strings.Index(summary.Content, "pearson_correlation: ")
	assert.NotEqual(t, -1, descAt)
	assert.NotEqual(t, -1, corrAt)
	assert.Less(t, descAt, corrAt)
	assert.Equal(t, ports.RoleUser, narration.Messages[n-1].Role)

	history := sess.History()
	require.Len(t, history, 2)
	assert.Equal(t, "分析分数和年龄的关系", history[0].Content)
	assert.Len(t, history[1].Results, 2)

	require.Len(t, recorder.records, 2)
	assert.Equal(t, sess.ID, recorder.records[0].SessionID)
	assert.Nil(t, recorder.records[0].Results)
	assert.NotEmpty(t, recorder.records[1].Results)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues(metrics.OutcomeNarrated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("descriptive_stats", "ok")))
}

func TestConverse_HistoryIsSentOnNextTurn(t *testing.T) {
	sess := newSession(t)
	model := llm.NewMockChatModel(llm.TextResponse("你好"), llm.TextResponse("再见"))
	svc := NewConversationService(model, nil, nil)

	_, err := svc.Converse(context.Background(), sess, "你好")
	require.NoError(t, err)
	_, err = svc.Converse(context.Background(), sess, "再见")
	require.NoError(t, err)

	second := model.Requests[1].Messages
	require.Len(t, second, 4)
	assert.Equal(t, "你好", second[1].Content)
	assert.Equal(t, ports.RoleAssistant, second[2].Role)
	assert.Equal(t, "再见", second[3].Content)
	assert.Len(t, sess.History(), 4)
}

func TestConverse_DirectReplyGuidance(t *testing.T) {
	guidance, err := ai.NewPromptManager("").GuidanceMessage()
	require.NoError(t, err)

	cases := []struct {
		name      string
		utterance string
		reply     string
		want      string
		outcome   string
	}{
		{"plain chat", "你好", "你好！有什么可以帮你？", "你好！有什么可以帮你？", metrics.OutcomeDirect},
		{"stat keyword", "统计一下分数", "好的，我来看看。", guidance, metrics.OutcomeGuidance},
		{"leaked code", "hello", "```python\nprint(1)\n```", guidance, metrics.OutcomeGuidance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sess := newSession(t)
			model := llm.NewMockChatModel(llm.TextResponse(tc.reply))
			svc := NewConversationService(model, nil, nil)

			out, err := svc.Converse(context.Background(), sess, tc.utterance)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.Reply.Content)
			assert.Equal(t, tc.outcome, out.Outcome)
			assert.Empty(t, out.Results)
			assert.Equal(t, 1, model.Calls())
		})
	}
}

func TestConverse_TransportFailureCommitsNothing(t *testing.T) {
	for _, failAt := range []int{0, 1} {
		sess := newSession(t)
		model := llm.NewMockChatModel(
			llm.ToolCallResponse(ports.ToolCall{ID: "1", Name: "descriptive_stats", Arguments: `{"variables":["score"]}`}),
			llm.TextResponse("unused"),
		)
		model.Errors = make([]error, 2)
		model.Errors[failAt] = errors.New("connection reset")
		recorder := &recorderStub{}
		svc := NewConversationService(model, nil, nil, WithTurnRecorder(recorder))

		_, err := svc.Converse(context.Background(), sess, "统计分数")
		require.Error(t, err)
		assert.True(t, core.IsTransportError(err))
		assert.Equal(t, core.CodeTransport, apperrors.GetCode(err))
		assert.Empty(t, sess.History())
		assert.Empty(t, recorder.records)
	}
}

func TestConverse_RecorderFailureDoesNotFailTurn(t *testing.T) {
	sess := newSession(t)
	model := llm.NewMockChatModel(llm.TextResponse("ok"))
	svc := NewConversationService(model, nil, nil, WithTurnRecorder(&recorderStub{err: errors.New("db down")}))

	_, err := svc.Converse(context.Background(), sess, "hi")
	require.NoError(t, err)
	assert.Len(t, sess.History(), 2)
}

func TestConverse_UnknownToolBecomesErrorResult(t *testing.T) {
	sess := newSession(t)
	model := llm.NewMockChatModel(
		llm.ToolCallResponse(ports.ToolCall{ID: "1", Name: "anova", Arguments: `{}`}),
		llm.TextResponse("无法完成该分析。"),
	)
	svc := NewConversationService(model, nil, nil)

	out, err := svc.Converse(context.Background(), sess, "做个方差分析")
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	require.True(t, stats.IsError(out.Results[0]))
	assert.Equal(t, core.CodeInvalidArguments, out.Results[0].(*stats.ErrorResult).Code)
	assert.Contains(t, model.Requests[1].Messages[len(model.Requests[1].Messages)-2].Content, `anova: {"type":"error"`)
}

func TestConverse_Validation(t *testing.T) {
	sess := newSession(t)

	_, err := NewConversationService(nil, nil, nil).Converse(context.Background(), sess, "hi")
	assert.Equal(t, apperrors.CodeModelDisabled, apperrors.GetCode(err))

	model := llm.NewMockChatModel()
	_, err = NewConversationService(model, nil, nil).Converse(context.Background(), sess, "   ")
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
	assert.Zero(t, model.Calls())
}

func TestSummarizeResults(t *testing.T) {
	calls := []ports.ToolCall{{Name: "descriptive_stats"}, {Name: "independent_t_test"}}
	results := []stats.Result{
		stats.NewDescriptiveResult(),
		stats.NewErrorResult("independent_t_test", core.NewGroupCountError("group", 3)),
	}
	out, err := SummarizeResults(calls, results)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "descriptive_stats: {"))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(lines[1], "independent_t_test: ")), &payload))
	assert.Equal(t, core.CodeGroupCount, payload["code"])
	assert.Contains(t, payload, "error")
}
