package ui

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aistats/adapters/llm"
	"aistats/app"
	"aistats/domain/core"
	apperrors "aistats/internal/errors"
	"aistats/internal/metrics"
	"aistats/internal/session"
	"aistats/ports"
	"aistats/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const surveyCSV = "score,group,grade\n1,a,1\n2,a,2\n3,a,1\n4,b,2\n5,b,1\n6,b,1\n"

type apiClient struct {
	t       *testing.T
	handler http.Handler
	session string
}

func newTestServer(t *testing.T, model ports.ChatModel) (*apiClient, *Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var chat *app.ConversationService
	if model != nil {
		chat = app.NewConversationService(model, nil, nil)
	}
	srv := NewServer(Deps{
		Sessions: session.NewManager(),
		Chat:     chat,
		Metrics:  metrics.New(),
	})
	return &apiClient{t: t, handler: srv.Handler()}, srv
}

func (a *apiClient) do(req *http.Request) *httptest.ResponseRecorder {
	if a.session != "" {
		req.Header.Set(middleware.SessionHeader, a.session)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	if id := w.Header().Get(middleware.SessionHeader); id != "" {
		a.session = id
	}
	return w
}

func (a *apiClient) json(method, path string, body interface{}) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return a.do(req)
}

func (a *apiClient) upload(path, field, filename, content string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(a.t, err)
	_, err = part.Write([]byte(content))
	require.NoError(a.t, err)
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.do(req)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAPI_SessionLifecycle(t *testing.T) {
	client, srv := newTestServer(t, nil)

	w := client.json(http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["session_id"].(string)
	_, err := core.ParseSessionID(id)
	require.NoError(t, err)
	assert.Equal(t, id, client.session)

	w = client.json(http.MethodGet, "/api/labels", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, w.Header().Get(middleware.SessionHeader), "existing session is reused")
	assert.Equal(t, 1, srv.sessions.Len())

	client.session = "not-a-uuid"
	w = client.json(http.MethodGet, "/api/dataset", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_DatasetAndStatistics(t *testing.T) {
	client, _ := newTestServer(t, nil)

	w := client.json(http.MethodGet, "/api/dataset", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, core.CodeNoData, decode(t, w)["code"])

	w = client.upload("/api/dataset", "file", "survey.csv", surveyCSV)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := decode(t, w)
	assert.Equal(t, float64(6), summary["rows"])
	assert.Len(t, summary["columns"], 3)

	w = client.json(http.MethodPost, "/api/stats/descriptive", gin.H{"variables": []string{"grade", "nothing_here_xyz"}})
	require.Equal(t, http.StatusOK, w.Code)
	desc := decode(t, w)
	assert.Equal(t, "descriptive", desc["type"])
	blocks := desc["stats"].(map[string]interface{})
	assert.Equal(t, "categorical", blocks["grade"].(map[string]interface{})["type"])
	assert.Equal(t, "error", blocks["nothing_here_xyz"].(map[string]interface{})["type"])

	w = client.json(http.MethodPost, "/api/stats/ttest", gin.H{"data_var": "score", "group_var": "group"})
	require.Equal(t, http.StatusOK, w.Code)
	ttest := decode(t, w)
	assert.Equal(t, "independent_t_test", ttest["type"])
	assert.Equal(t, float64(4), ttest["df"])

	w = client.json(http.MethodPost, "/api/stats/correlation", gin.H{"variables": []string{"score", "grade"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = client.json(http.MethodGet, "/api/stats/last", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pearson_correlation", decode(t, w)["type"])

	w = client.json(http.MethodPost, "/api/stats/ttest", gin.H{"data_var": "score", "group_var": "grade"})
	assert.Equal(t, http.StatusOK, w.Code, "grade has two levels")

	w = client.json(http.MethodPost, "/api/stats/correlation", gin.H{"variables": []string{"score", "missing"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "missing", decode(t, w)["variable"])

	w = client.json(http.MethodPost, "/api/stats/descriptive", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = client.json(http.MethodDelete, "/api/dataset", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = client.json(http.MethodGet, "/api/stats/last", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_Procedures(t *testing.T) {
	client, _ := newTestServer(t, nil)
	w := client.upload("/api/dataset", "file", "survey.csv", surveyCSV)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = client.json(http.MethodPost, "/api/stats/grouped", gin.H{"group_var": "group", "variables": []string{"score"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	grouped := decode(t, w)
	assert.Equal(t, "grouped_descriptive", grouped["type"])
	assert.Len(t, grouped["groups"], 2)

	w = client.json(http.MethodPost, "/api/stats/ttest/one-sample", gin.H{"variable": "score", "test_value": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 3.5, decode(t, w)["mean"])

	w = client.json(http.MethodPost, "/api/stats/ttest/one-sample", gin.H{"variable": "score"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = client.json(http.MethodPost, "/api/stats/ttest/paired", gin.H{"variable1": "score", "variable2": "grade"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(6), decode(t, w)["n"])

	w = client.json(http.MethodPost, "/api/stats/anova", gin.H{"data_var": "score", "group_var": "grade"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "one_way_anova", decode(t, w)["type"])

	w = client.json(http.MethodPost, "/api/stats/regression", gin.H{"outcome": "score", "predictors": []string{"grade"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode(t, w)["coefficients"], 2)

	w = client.json(http.MethodPost, "/api/stats/reliability", gin.H{"items": []string{"score", "grade"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cronbach_alpha", decode(t, w)["type"])

	w = client.json(http.MethodPost, "/api/stats/reliability", gin.H{"items": []string{"score"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// "group" holds text, so no row is complete
	w = client.json(http.MethodPost, "/api/stats/mediation", gin.H{"x_var": "grade", "m_var": "group", "y_var": "score"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, core.CodeInsufficientData, decode(t, w)["code"])

	w = client.json(http.MethodGet, "/api/stats/last", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cronbach_alpha", decode(t, w)["type"])
}

func TestAPI_UploadRejectsUnknownFormat(t *testing.T) {
	client, _ := newTestServer(t, nil)
	w := client.upload("/api/dataset", "file", "notes.txt", "a,b\n1,2\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = client.upload("/api/dataset", "other", "survey.csv", surveyCSV)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_Labels(t *testing.T) {
	client, _ := newTestServer(t, nil)

	w := client.json(http.MethodPut, "/api/labels/grade", gin.H{"label": "年级"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "no dataset yet")

	require.Equal(t, http.StatusOK, client.upload("/api/dataset", "file", "survey.csv", surveyCSV).Code)

	w = client.json(http.MethodPut, "/api/labels/grade", gin.H{
		"label":        "年级",
		"value_labels": map[string]string{"1": "初一", "2.0": "初二", "3": "初三"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode(t, w)
	assert.Equal(t, "年级", got["label"])
	assert.Equal(t, map[string]interface{}{"1": "初一", "2": "初二", "3": "初三"}, got["value_labels"])

	w = client.json(http.MethodPut, "/api/labels/nope", gin.H{"label": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// labelled domain includes the unobserved value 3
	w = client.json(http.MethodPost, "/api/stats/descriptive", gin.H{"variables": []string{"grade"}})
	require.Equal(t, http.StatusOK, w.Code)
	grade := decode(t, w)["stats"].(map[string]interface{})["grade"].(map[string]interface{})
	values := grade["all_values"].([]interface{})
	require.Len(t, values, 3)
	assert.Equal(t, float64(0), values[2].(map[string]interface{})["frequency"])

	w = client.json(http.MethodGet, "/api/labels/export?format=json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.String()
	assert.Contains(t, exported, "初三")

	w = client.json(http.MethodDelete, "/api/labels/grade", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = client.json(http.MethodGet, "/api/labels/grade", nil)
	assert.Empty(t, decode(t, w)["label"])

	w = client.upload("/api/labels/import", "file", "labels.json", exported)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = client.json(http.MethodGet, "/api/labels/grade", nil)
	assert.Equal(t, "年级", decode(t, w)["label"])

	req := httptest.NewRequest(http.MethodPost, "/api/labels/import", strings.NewReader("variable_labels:\n  score: 分数\n"))
	req.Header.Set("Content-Type", "application/yaml")
	w = client.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	all := decode(t, w)
	assert.Equal(t, map[string]interface{}{"score": "分数"}, all["variable_labels"])
	assert.Contains(t, all["value_labels"], "grade", "absent section is kept")
}

func TestAPI_Chat(t *testing.T) {
	client, _ := newTestServer(t, nil)
	w := client.json(http.MethodPost, "/api/chat", gin.H{"message": "hi"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, apperrors.CodeModelDisabled, decode(t, w)["code"])

	model := llm.NewMockChatModel(
		llm.ToolCallResponse(ports.ToolCall{ID: "1", Name: "independent_t_test", Arguments: `{"data_var":"score","group_var":"group"}`}),
		llm.TextResponse("a组均值为2，b组均值为5。两组之间存在显著差异。"),
	)
	client, _ = newTestServer(t, model)
	require.Equal(t, http.StatusOK, client.upload("/api/dataset", "file", "survey.csv", surveyCSV).Code)

	w = client.json(http.MethodPost, "/api/chat", gin.H{"message": "比较两组的分数"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reply := decode(t, w)
	assert.Equal(t, "narrated", reply["outcome"])
	assert.Len(t, reply["results"], 1)
	assert.Contains(t, reply["html"], "<strong>两组之间存在显著差异。</strong>")

	w = client.json(http.MethodGet, "/api/chat", nil)
	assert.Equal(t, float64(2), decode(t, w)["count"])

	w = client.json(http.MethodGet, "/api/chat/log", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = client.json(http.MethodDelete, "/api/chat", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = client.json(http.MethodGet, "/api/chat", nil)
	assert.Equal(t, float64(0), decode(t, w)["count"])

	w = client.json(http.MethodPost, "/api/chat", gin.H{"message": "again"})
	assert.Equal(t, http.StatusBadGateway, w.Code, "mock has no more responses")
	assert.Equal(t, core.CodeTransport, decode(t, w)["code"])
}

func TestAPI_Health(t *testing.T) {
	client, _ := newTestServer(t, nil)
	w := client.json(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
	assert.Empty(t, w.Header().Get(middleware.SessionHeader))
}

func TestDebugRouter(t *testing.T) {
	m := metrics.New()
	m.CountTurn(metrics.OutcomeDirect)
	h := NewDebugRouter(m)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `aistats_conversation_turns_total{outcome="direct"} 1`)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
