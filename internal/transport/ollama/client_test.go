package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/modamart/stylist/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(&Config{
		BaseURL: srv.URL,
		Model:   "llama3.1:8b",
		Timeout: 5 * time.Second,
		Logger:  zap.NewNop(),
	})
	return client, srv
}

func TestChat_SingleObject(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "llama3.1:8b" {
			t.Errorf("unexpected model %q", req.Model)
		}
		if req.Prompt != "hello" {
			t.Errorf("unexpected prompt %q", req.Prompt)
		}
		_, _ = w.Write([]byte(`{"response": "hi there", "done": true}`))
	})

	got, err := client.Chat(context.Background(), "hello", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hi there" {
		t.Errorf("expected %q, got %q", "hi there", got)
	}
}

func TestChat_StreamingLastLineWins(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(
			`{"response":"a"}` + "\n" +
				`{"response":"ab"}` + "\n" +
				`{"response":"abc"}` + "\n",
		))
	})

	got, err := client.Chat(context.Background(), "q", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "abc" {
		t.Errorf("expected last accumulated answer %q, got %q", "abc", got)
	}
}

func TestChat_MalformedLinesSkipped(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(
			`{"response":"partial"}` + "\n" +
				`this line is not json` + "\n" +
				`{"response":"final answer","done":true}` + "\n" +
				`{broken` + "\n",
		))
	})

	got, err := client.Chat(context.Background(), "q", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "final answer" {
		t.Errorf("expected %q, got %q", "final answer", got)
	}
}

func TestChat_SystemInstructionForwarded(t *testing.T) {
	var gotSystem string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotSystem = req.System
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	})

	if _, err := client.Chat(context.Background(), "q", "you are terse"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotSystem != "you are terse" {
		t.Errorf("expected system instruction forwarded, got %q", gotSystem)
	}
}

func TestChat_NonSuccessStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	})

	_, err := client.Chat(context.Background(), "q", "")
	if err == nil {
		t.Fatal("expected error for non-2xx status")
	}
	if !errors.Is(err, domain.ErrLLMUnavailable) {
		t.Errorf("expected ErrLLMUnavailable, got %v", err)
	}
}

func TestChat_ServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewClient(&Config{BaseURL: srv.URL, Model: "m", Timeout: time.Second})

	_, err := client.Chat(context.Background(), "q", "")
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
	if !errors.Is(err, domain.ErrLLMUnavailable) {
		t.Errorf("expected ErrLLMUnavailable, got %v", err)
	}
}

func TestChat_NothingParsable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json at all\nstill not json\n"))
	})

	_, err := client.Chat(context.Background(), "q", "")
	if err == nil {
		t.Fatal("expected error when no line parses")
	}
	if !errors.Is(err, domain.ErrLLMUnavailable) {
		t.Errorf("expected ErrLLMUnavailable, got %v", err)
	}
}

func TestDecodeResponse_PrettyPrintedObject(t *testing.T) {
	body := "{\n  \"response\": \"spread over lines\",\n  \"done\": true\n}"

	got, err := decodeResponse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "spread over lines" {
		t.Errorf("expected %q, got %q", "spread over lines", got)
	}
}

func TestChat_ContextCancelled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Chat(ctx, "q", ""); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
