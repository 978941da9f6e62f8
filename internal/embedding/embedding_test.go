package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	got, err := CosineSimilarity([]float32{1, 0}, []float32{1, 0})
	if err != nil || math.Abs(got-1) > 1e-9 {
		t.Fatalf("identical got=%v err=%v", got, err)
	}
	if got, _ := CosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Fatalf("orthogonal got=%v want=0", got)
	}
	if got, _ := CosineSimilarity([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Fatalf("zero vector got=%v want=0", got)
	}
	if _, err := CosineSimilarity([]float32{1}, []float32{1, 2}); err == nil {
		t.Fatalf("expected length mismatch error")
	}
}

func TestLexicalEngine_RanksRelatedNamesHigher(t *testing.T) {
	t.Parallel()

	e := NewLexicalEngine(0)
	vecs, err := e.Embed(context.Background(), []string{"clock in", "clock-in time", "task description"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	related, _ := CosineSimilarity(vecs[0], vecs[1])
	unrelated, _ := CosineSimilarity(vecs[0], vecs[2])
	if related <= unrelated {
		t.Fatalf("related=%v should exceed unrelated=%v", related, unrelated)
	}

	again, _ := e.Embed(context.Background(), []string{"clock in"})
	if diff := cmp.Diff(vecs[0], again[0]); diff != "" {
		t.Fatalf("lexical vectors not deterministic (-first +second):\n%s", diff)
	}
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine(context.Background(), Config{Provider: ProviderNone}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("none provider err got=%v want ErrDisabled", err)
	}
	if _, err := NewEngine(context.Background(), Config{Provider: "openai"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
	if _, err := NewEngine(context.Background(), Config{Provider: ProviderGenAI}); err == nil {
		t.Fatalf("expected error for genai without key")
	}
	e, err := NewEngine(context.Background(), DefaultConfig())
	if err != nil || e.Name() != "lexical" {
		t.Fatalf("default engine got=%v err=%v", e, err)
	}
}

type countingEngine struct {
	calls atomic.Int32
	texts atomic.Int32
}

func (c *countingEngine) Embed(_ context.Context, texts []string) ([][]float32, error) {
	c.calls.Add(1)
	c.texts.Add(int32(len(texts)))
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 1}
	}
	return out, nil
}

func (c *countingEngine) Name() string { return "counting" }

func TestLazy_LoadsOnceAndMemoizes(t *testing.T) {
	t.Parallel()

	inner := &countingEngine{}
	var loads atomic.Int32
	lazy := NewLazy(func(context.Context) (Engine, error) {
		loads.Add(1)
		return inner, nil
	}, zap.NewNop())

	if lazy.Loaded() {
		t.Fatalf("engine loaded before first use")
	}
	if _, err := lazy.Embed(context.Background(), []string{"start", "end"}); err != nil {
		t.Fatalf("embed: %v", err)
	}
	vecs, err := lazy.Embed(context.Background(), []string{"end", "task"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}

	if loads.Load() != 1 {
		t.Fatalf("factory calls got=%d want=1", loads.Load())
	}
	if inner.texts.Load() != 3 {
		t.Fatalf("texts embedded got=%d want=3", inner.texts.Load())
	}
	if vecs[0][0] != 3 || vecs[1][0] != 4 {
		t.Fatalf("vectors out of order: %v", vecs)
	}
	if lazy.Name() != "counting" {
		t.Fatalf("name got=%s", lazy.Name())
	}
}

func TestLazy_FactoryErrorIsSticky(t *testing.T) {
	t.Parallel()

	var loads atomic.Int32
	lazy := NewLazy(func(context.Context) (Engine, error) {
		loads.Add(1)
		return nil, errors.New("model missing")
	}, zap.NewNop())

	for i := 0; i < 3; i++ {
		if _, err := lazy.Embed(context.Background(), []string{"x"}); err == nil {
			t.Fatalf("expected error on call %d", i)
		}
	}
	if loads.Load() != 1 {
		t.Fatalf("factory calls got=%d want=1", loads.Load())
	}
}

func TestOllamaEngine(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			http.NotFound(w, r)
			return
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Prompt == "boom" {
			http.Error(w, "model not loaded", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{float32(len(req.Prompt)), 0.5}})
	}))
	t.Cleanup(srv.Close)

	e := NewOllamaEngine(srv.URL+"/", "test-model", 5)
	vecs, err := e.Embed(context.Background(), []string{"ab", "abcd"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	want := [][]float32{{2, 0.5}, {4, 0.5}}
	if diff := cmp.Diff(want, vecs); diff != "" {
		t.Fatalf("vectors mismatch (-want +got):\n%s", diff)
	}

	if _, err := e.Embed(context.Background(), []string{"ok", "boom"}); err == nil {
		t.Fatalf("expected error from failing server")
	}
}
