package widget

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/liliang-cn/sitechat/internal/domain"
	"go.uber.org/zap"
)

type stubChatService struct {
	resp  *domain.ChatResponse
	err   error
	calls int
	last  *domain.ChatRequest
}

func (s *stubChatService) Chat(_ context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	s.calls++
	s.last = req
	return s.resp, s.err
}

func newTestRouter(svc ChatService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc, 1<<10, zap.NewNop()).RegisterRoutes(r.Group("/api"))
	return r
}

func doRequest(r http.Handler, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatMethodNotAllowed(t *testing.T) {
	svc := &stubChatService{}
	r := newTestRouter(svc)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		w := doRequest(r, method, "")
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s status = %d, want 405", method, w.Code)
		}
		var body domain.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s body is not JSON: %v", method, err)
		}
		if body.Error == "" || body.Hint == "" {
			t.Errorf("%s body = %+v, want error and hint", method, body)
		}
	}
	if svc.calls != 0 {
		t.Errorf("chat calls = %d, want 0", svc.calls)
	}
}

func TestChatValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "not json", body: "hola"},
		{name: "missing messages", body: `{"message":"hola"}`},
		{name: "null messages", body: `{"messages":null}`},
		{name: "messages is object", body: `{"messages":{"role":"user","content":"hola"}}`},
		{name: "messages is string", body: `{"messages":"hola"}`},
		{name: "empty messages", body: `{"messages":[]}`},
		{name: "bad role", body: `{"messages":[{"role":"robot","content":"hola"}]}`},
		{name: "missing role", body: `{"messages":[{"content":"hola"}]}`},
		{name: "entry not object", body: `{"messages":["hola"]}`},
		{name: "top-level array", body: `[{"role":"user","content":"hola"}]`},
		{name: "string without object", body: `"hola"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubChatService{}
			w := doRequest(newTestRouter(svc), http.MethodPost, tt.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
			var body domain.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Errorf("body = %s, want {error}", w.Body.String())
			}
			if svc.calls != 0 {
				t.Errorf("chat calls = %d, want 0", svc.calls)
			}
		})
	}
}

func TestChatBodyTooLarge(t *testing.T) {
	svc := &stubChatService{}
	big := `{"messages":[{"role":"user","content":"` + strings.Repeat("a", 2048) + `"}]}`

	w := doRequest(newTestRouter(svc), http.MethodPost, big)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if svc.calls != 0 {
		t.Errorf("chat calls = %d, want 0", svc.calls)
	}
}

func TestChatSuccess(t *testing.T) {
	svc := &stubChatService{resp: &domain.ChatResponse{Answer: "Abrimos a las 9."}}
	body := `{"messages":[{"role":"user","content":"hola"},{"role":"assistant","content":"¿sí?"},{"role":"user","content":"¿horario?"}]}`

	w := doRequest(newTestRouter(svc), http.MethodPost, body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["answer"] != "Abrimos a las 9." {
		t.Errorf("answer = %v", resp["answer"])
	}
	if _, ok := resp["raw"]; ok {
		t.Error("raw should be omitted on the plain path")
	}
	if len(svc.last.Messages) != 3 || svc.last.Messages[2].Content != "¿horario?" {
		t.Errorf("request = %+v", svc.last)
	}
}

func TestChatBookingResponseCarriesRaw(t *testing.T) {
	svc := &stubChatService{resp: &domain.ChatResponse{
		Answer: "No slots",
		Raw:    json.RawMessage(`{"ok":false,"code":"NO_AVAIL","message":"No slots"}`),
	}}

	w := doRequest(newTestRouter(svc), http.MethodPost, `{"messages":[{"role":"user","content":"cita"}]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Answer string               `json:"answer"`
		Raw    domain.BookingResult `json:"raw"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Answer != "No slots" || resp.Raw.Code != domain.CodeNoAvailability {
		t.Errorf("resp = %+v", resp)
	}
}

func TestChatDoubleEncodedBody(t *testing.T) {
	svc := &stubChatService{resp: &domain.ChatResponse{Answer: "ok"}}
	inner := `{"messages":[{"role":"user","content":"hola"}]}`
	encoded, _ := json.Marshal(inner)

	w := doRequest(newTestRouter(svc), http.MethodPost, string(encoded))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if svc.calls != 1 || svc.last.Messages[0].Content != "hola" {
		t.Errorf("request = %+v", svc.last)
	}
}

func TestChatServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "upstream", err: domain.UpstreamError("completion", errors.New("status 503: secret detail"))},
		{name: "configuration", err: errors.Join(domain.ErrConfiguration, errors.New("secret detail"))},
		{name: "unexpected", err: errors.New("secret detail")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubChatService{err: tt.err}
			w := doRequest(newTestRouter(svc), http.MethodPost, `{"messages":[{"role":"user","content":"hola"}]}`)

			if w.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500", w.Code)
			}
			if strings.Contains(w.Body.String(), "secret detail") {
				t.Errorf("internal detail leaked: %s", w.Body.String())
			}
			var body domain.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Error != internalErrorMessage {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}

func TestParseChatRequestKeepsOrder(t *testing.T) {
	req, err := ParseChatRequest([]byte(`{"messages":[{"role":"system","content":"a"},{"role":"user","content":"b"},{"role":"assistant","content":"c"}]}`))
	if err != nil {
		t.Fatalf("ParseChatRequest() error = %v", err)
	}
	got := ""
	for _, m := range req.Messages {
		got += m.Content
	}
	if got != "abc" {
		t.Errorf("order = %q, want abc", got)
	}
}

func TestParseChatRequestErrorsMatchValidation(t *testing.T) {
	_, err := ParseChatRequest([]byte(`{}`))
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}
