package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/healthinsure-ai/internal/application/assistant"
	"github.com/bryanwahyu/healthinsure-ai/internal/domain/ai"
	"github.com/bryanwahyu/healthinsure-ai/internal/domain/documents"
	"github.com/bryanwahyu/healthinsure-ai/internal/infra/ai/prompt"
	"github.com/bryanwahyu/healthinsure-ai/internal/infra/memory"
	"github.com/bryanwahyu/healthinsure-ai/internal/middleware"
)

type stubGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (g *stubGenerator) Generate(_ context.Context, p string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, p)
	return g.reply, g.err
}

func (g *stubGenerator) last() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

type stubExtractor struct {
	calls int
	err   error
}

func (e *stubExtractor) Extract(data []byte) (string, error) {
	e.calls++
	if e.err != nil {
		return "", e.err
	}
	return "Extracted: " + string(bytes.TrimPrefix(data, []byte("%PDF-1.4\n"))), nil
}

type harness struct {
	handler http.Handler
	gen     *stubGenerator
	ext     *stubExtractor
}

func newHarness(t *testing.T, maxUpload int64) *harness {
	t.Helper()
	gen := &stubGenerator{reply: "model says hi"}
	ext := &stubExtractor{}
	svc := &assistant.Service{
		Generator: gen,
		Documents: memory.NewDocumentStore(time.Hour),
		Extractor: ext,
		Prompts:   prompt.Builder{MaxDocumentChars: 10000},
	}
	return &harness{
		handler: NewRouter(svc, Options{
			MaxUploadBytes: maxUpload,
			Provider:       "gemini",
			Model:          "gemini-1.5-flash",
			DocumentTTL:    time.Hour,
		}),
		gen:     gen,
		ext:     ext,
	}
}

func (h *harness) do(req *http.Request) (*httptest.ResponseRecorder, map[string]string) {
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	body := map[string]string{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func jsonRequest(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

type part struct {
	field, filename, contentType string
	data                         []byte
}

func multipartRequest(t *testing.T, path string, values map[string]string, files ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRoot(t *testing.T) {
	h := newHarness(t, 0)
	rec, body := h.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HealthInsure AI Backend is running!", body["message"])
}

func TestAskJSON(t *testing.T) {
	h := newHarness(t, 0)
	rec, body := h.do(jsonRequest("/ask", `{"question":"Is dental covered?","policyDate":"2024-01-01"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "success", "answer": "model says hi"}, body)
	assert.Contains(t, h.gen.last(), "Question: Is dental covered?")
	assert.Contains(t, h.gen.last(), "Policy Date: 2024-01-01")
}

func TestAskKeepsQuestionAsSent(t *testing.T) {
	h := newHarness(t, 0)
	rec, _ := h.do(jsonRequest("/ask", `{"question":"  Is dental covered?\r\nAnd vision?\u0000 ","userInfo":"age\t30"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, h.gen.last(), "Question:   Is dental covered?\r\nAnd vision? \n")
	assert.Contains(t, h.gen.last(), "User Info: age\t30\n")
}

func TestAskMissingQuestion(t *testing.T) {
	h := newHarness(t, 0)
	rec, body := h.do(jsonRequest("/ask", `{"userInfo":"x"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "question is required", body["message"])
	assert.Empty(t, h.gen.prompts)
}

func TestAskInvalidJSON(t *testing.T) {
	h := newHarness(t, 0)
	rec, body := h.do(jsonRequest("/ask", `{"question":`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON body", body["message"])
}

func TestAskProviderErrorIsSoft(t *testing.T) {
	h := newHarness(t, 0)
	h.gen.err = &ai.ProviderError{StatusCode: 429, Message: "Resource has been exhausted", Err: ai.ErrQuotaExceeded}

	rec, body := h.do(jsonRequest("/ask", `{"question":"q"}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "error", "message": "Resource has been exhausted"}, body)
}

func TestUploadThenAskSameSession(t *testing.T) {
	h := newHarness(t, 0)

	req := multipartRequest(t, "/upload-doc", nil, part{"file", "policy.pdf", "application/pdf", []byte("%PDF-1.4\nCataract limit 40000")})
	req.Header.Set(middleware.SessionHeader, "alice")
	rec, body := h.do(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "policy.pdf", body["filename"])
	assert.Equal(t, "alice", body["sessionId"])
	assert.Equal(t, "model says hi", body["summary"])
	assert.Equal(t, "alice", rec.Header().Get(middleware.SessionHeader))

	ask := jsonRequest("/ask", `{"question":"cataract?"}`)
	ask.Header.Set(middleware.SessionHeader, "alice")
	h.do(ask)
	assert.Contains(t, h.gen.last(), "Extracted: Cataract limit 40000")

	other := jsonRequest("/ask", `{"question":"cataract?"}`)
	other.Header.Set(middleware.SessionHeader, "bob")
	h.do(other)
	assert.NotContains(t, h.gen.last(), "Cataract limit")
}

func TestUploadCountsOnlyStoredDocuments(t *testing.T) {
	h := newHarness(t, 0)
	pdf := part{"file", "policy.pdf", "application/pdf", []byte("%PDF-1.4\nbody")}

	before := middleware.GetMetrics()
	h.ext.err = documents.ErrNoExtractableText
	rec, body := h.do(multipartRequest(t, "/upload-doc", nil, pdf))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "error", body["status"])

	after := middleware.GetMetrics()
	assert.Equal(t, before["documents_uploaded"], after["documents_uploaded"])
	assert.Equal(t, before["prompts_total"], after["prompts_total"])

	h.ext.err = nil
	rec, body = h.do(multipartRequest(t, "/upload-doc", nil, pdf))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])

	after = middleware.GetMetrics()
	assert.Equal(t, before["documents_uploaded"].(uint64)+1, after["documents_uploaded"].(uint64))
	assert.Equal(t, before["prompts_total"].(uint64)+1, after["prompts_total"].(uint64))
}

func TestClearDocument(t *testing.T) {
	h := newHarness(t, 0)
	req := multipartRequest(t, "/upload-doc", nil, part{"file", "policy.pdf", "application/pdf", []byte("%PDF-1.4\nCataract limit 40000")})
	req.Header.Set(middleware.SessionHeader, "alice")
	h.do(req)

	del := httptest.NewRequest(http.MethodDelete, "/document", nil)
	del.Header.Set(middleware.SessionHeader, "alice")
	rec, body := h.do(del)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "success", "message": "Document cleared.", "sessionId": "alice"}, body)

	ask := jsonRequest("/ask", `{"question":"cataract?"}`)
	ask.Header.Set(middleware.SessionHeader, "alice")
	h.do(ask)
	assert.NotContains(t, h.gen.last(), "Cataract limit")

	del = httptest.NewRequest(http.MethodDelete, "/document", nil)
	del.Header.Set(middleware.SessionHeader, "alice")
	_, body = h.do(del)
	assert.Equal(t, "No document was stored for this session.", body["message"])
}

func TestUploadRejectsNonPDF(t *testing.T) {
	h := newHarness(t, 0)
	req := multipartRequest(t, "/upload-doc", nil, part{"file", "notes.txt", "text/plain", []byte("hello")})
	rec, body := h.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Only PDF files are allowed.", body["message"])
	assert.Zero(t, h.ext.calls)
	assert.Empty(t, h.gen.prompts)
}

func TestUploadMissingFile(t *testing.T) {
	h := newHarness(t, 0)
	rec, body := h.do(multipartRequest(t, "/upload-doc", map[string]string{"x": "y"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "file is required", body["message"])
}

func TestUploadTooLarge(t *testing.T) {
	h := newHarness(t, 1024)
	big := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("a"), 4096)...)
	rec, body := h.do(multipartRequest(t, "/upload-doc", nil, part{"file", "big.pdf", "application/pdf", big}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Uploaded file is too large.", body["message"])
	assert.Zero(t, h.ext.calls)
}

func TestCheckClaimForm(t *testing.T) {
	h := newHarness(t, 0)
	req := multipartRequest(t, "/check-claim",
		map[string]string{"claim_type": "Hospitalization", "expense_description": "Knee surgery"},
		part{"bill", "bill.jpg", "image/jpeg", []byte{0xff, 0xd8}},
	)
	rec, body := h.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "model says hi", body["result"])
	assert.Contains(t, h.gen.last(), "Claim Type: Hospitalization")
	assert.Contains(t, h.gen.last(), "Bill Attached: Yes")
}

func TestCheckClaimWithoutBill(t *testing.T) {
	h := newHarness(t, 0)
	rec, _ := h.do(formRequest("/check-claim", url.Values{
		"claim_type":          {"OPD"},
		"expense_description": {"Consultation"},
	}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, h.gen.last(), "Bill Attached: No")
}

func TestRecommendAcceptsNumbers(t *testing.T) {
	h := newHarness(t, 0)
	rec, body := h.do(jsonRequest("/recommend-policy", `{"age":34,"gender":"female","coverage":"family","budget":25000.5}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "model says hi", body["recommendations"])
	assert.Contains(t, h.gen.last(), "Age: 34")
	assert.Contains(t, h.gen.last(), "Annual Budget: ₹25000.5")
	assert.Contains(t, h.gen.last(), "Health Conditions: None")
}

func TestRecommendPassesFreeFormValues(t *testing.T) {
	cases := []struct {
		name   string
		req    *http.Request
		budget string
	}{
		{"commas", formRequest("/recommend-policy", url.Values{
			"user_age": {"34"}, "user_gender": {"male"}, "coverage": {"individual"}, "budget": {"25,000"},
		}), "Annual Budget: ₹25,000\n"},
		{"currency symbol", formRequest("/recommend-policy", url.Values{
			"user_age": {"34"}, "user_gender": {"male"}, "coverage": {"individual"}, "budget": {"₹25000"},
		}), "Annual Budget: ₹25000\n"},
		{"shorthand", formRequest("/recommend-policy", url.Values{
			"user_age": {"mid thirties"}, "user_gender": {"male"}, "coverage": {"individual"}, "budget": {"25k"},
		}), "Annual Budget: ₹25k\n"},
		{"json exponent", jsonRequest("/recommend-policy",
			`{"age":34,"gender":"male","coverage":"individual","budget":2.5e4}`), "Annual Budget: ₹2.5e4\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, 0)
			rec, body := h.do(tc.req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "model says hi", body["recommendations"])
			assert.Contains(t, h.gen.last(), tc.budget)
		})
	}
}

func TestRecommendRequiresBudget(t *testing.T) {
	h := newHarness(t, 0)
	rec, body := h.do(formRequest("/recommend-policy", url.Values{
		"user_age": {"34"}, "user_gender": {"male"}, "coverage": {"individual"},
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "budget is required", body["message"])
}

func TestWellnessWithHealthData(t *testing.T) {
	h := newHarness(t, 0)
	req := multipartRequest(t, "/wellness-insights",
		map[string]string{"wellness_goal": "lose weight"},
		part{"health_data", "steps.csv", "text/csv", []byte("day,steps\n1,4000\n")},
	)
	rec, body := h.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "model says hi", body["insights"])
	assert.Contains(t, h.gen.last(), "Health data file uploaded (steps.csv).")
}

func TestBlockchainAction(t *testing.T) {
	h := newHarness(t, 0)

	rec, body := h.do(jsonRequest("/blockchain-action", `{"action":"view-records","recordId":"R1"}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body["result"], "Transaction Hash")
	assert.Contains(t, body["result"], "Data Hash")

	rec, body = h.do(jsonRequest("/blockchain-action", `{"action":"delete-everything"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid blockchain action.", body["message"])
	assert.Empty(t, h.gen.prompts)
}

func TestLogin(t *testing.T) {
	h := newHarness(t, 0)

	rec, body := h.do(jsonRequest("/login", `{"email":"test@example.com","password":"password123"}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, assistant.LoginToken, body["token"])

	rec, body = h.do(formRequest("/login", url.Values{"email": {"test@example.com"}, "password": {"nope"}}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", body["message"])
}

func TestInvalidSessionHeader(t *testing.T) {
	h := newHarness(t, 0)
	req := jsonRequest("/ask", `{"question":"q"}`)
	req.Header.Set(middleware.SessionHeader, "bad session!")
	rec, _ := h.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, h.gen.prompts)
}

func TestInteractionsWithoutAudit(t *testing.T) {
	h := newHarness(t, 0)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/interactions?limit=5", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHealthEndpoints(t *testing.T) {
	h := newHarness(t, 0)

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	h.do(multipartRequest(t, "/upload-doc", nil, part{"file", "policy.pdf", "application/pdf", []byte("%PDF-1.4\nbody")}))

	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var health middleware.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.NotNil(t, health.Service)
	assert.Equal(t, "gemini", health.Service.Provider)
	assert.Equal(t, "gemini-1.5-flash", health.Service.Model)
	assert.Equal(t, "1h0m0s", health.Service.DocumentTTL)
	assert.Equal(t, 1, health.Service.DocumentsInMemory)
	assert.False(t, health.Service.ArchiveEnabled)

	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var metrics map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.Contains(t, metrics, "prompts_total")
	assert.Equal(t, float64(1), metrics["documents_in_memory"])
}

func TestScalarUnmarshal(t *testing.T) {
	var v struct {
		A scalar `json:"a"`
		B scalar `json:"b"`
		C scalar `json:"c"`
		D scalar `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"x","b":12.5,"c":true,"d":null}`), &v))
	assert.Equal(t, scalar("x"), v.A)
	assert.Equal(t, scalar("12.5"), v.B)
	assert.Equal(t, scalar("true"), v.C)
	assert.Equal(t, scalar(""), v.D)

	assert.Error(t, json.Unmarshal([]byte(`{"a":{"nested":1}}`), &v))
}
