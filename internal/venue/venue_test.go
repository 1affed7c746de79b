package venue

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/kanji/internal/apperr"
)

func int64Ptr(v int64) *int64 { return &v }

func TestBudgetCode(t *testing.T) {
	tests := []struct {
		budget int64
		want   string
	}{
		{1000, "B009"},
		{2999, "B009"},
		{3000, "B010"},
		{4999, "B010"},
		{5000, "B011"},
		{12000, "B011"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.budget), func(t *testing.T) {
			assert.Equal(t, tt.want, budgetCode(tt.budget))
		})
	}
}

func TestHotpepperRecommend(t *testing.T) {
	t.Parallel()

	t.Run("maps shops and sends constraints", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "test-key", q.Get("key"))
			assert.Equal(t, "Shibuya", q.Get("keyword"))
			assert.Equal(t, "json", q.Get("format"))
			assert.Equal(t, "3", q.Get("count"))
			assert.Equal(t, "B010", q.Get("budget"))
			assert.Equal(t, "8", q.Get("party_capacity"))

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"results":{"shop":[
				{"name":"Uotami","address":"Udagawacho","budget":{"average":"3000 JPY"},"urls":{"pc":"https://example.com/uotami"}},
				{"name":"","address":"skipped"},
				{"name":"Watami","address":"Shinjuku","budget":{"average":""},"urls":{"pc":""}}
			]}}`)
		}))
		defer srv.Close()

		h := NewHotpepper("test-key", 3, nil, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
		got, err := h.Recommend(context.Background(), Query{
			Title:              "Team dinner",
			BudgetPerPerson:    int64Ptr(4000),
			PartySize:          8,
			LocationConstraint: "Shibuya",
		})

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Uotami", got[0].Name)
		assert.Equal(t, "3000 JPY", got[0].PriceRange)
		assert.Equal(t, "https://example.com/uotami", got[0].URL)
		assert.Equal(t, "Watami", got[1].Name)
	})

	t.Run("keyword falls back to title", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Team dinner", r.URL.Query().Get("keyword"))
			assert.Empty(t, r.URL.Query().Get("budget"))
			fmt.Fprint(w, `{"results":{"shop":[]}}`)
		}))
		defer srv.Close()

		h := NewHotpepper("k", 5, nil, WithBaseURL(srv.URL))
		got, err := h.Recommend(context.Background(), Query{Title: "Team dinner"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("server error is dependency unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		h := NewHotpepper("k", 5, nil, WithBaseURL(srv.URL))
		_, err := h.Recommend(context.Background(), Query{Title: "x"})
		assert.ErrorIs(t, err, apperr.ErrDependencyUnavailable)
	})

	t.Run("api error body is dependency unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"results":{"error":[{"message":"invalid key","code":2000}]}}`)
		}))
		defer srv.Close()

		h := NewHotpepper("bad", 5, nil, WithBaseURL(srv.URL))
		_, err := h.Recommend(context.Background(), Query{Title: "x"})
		assert.ErrorIs(t, err, apperr.ErrDependencyUnavailable)
	})
}

type fakeGenerator struct {
	resp   *genai.GenerateContentResponse
	err    error
	prompt string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	if len(parts) > 0 {
		if t, ok := parts[0].(genai.Text); ok {
			f.prompt = string(t)
		}
	}
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(text)}},
		}},
	}
}

func TestGeminiRecommend(t *testing.T) {
	t.Run("parses fenced JSON", func(t *testing.T) {
		gen := &fakeGenerator{resp: textResponse("```json\n" +
			`[{"name":"Torikizoku","address":"Shibuya","price_range":"3000","rating":3.9,"url":"https://example.com"},` +
			`{"name":"  "},{"name":"Uotami"}]` + "\n```")}

		g := NewGemini(gen, 5, nil)
		got, err := g.Recommend(context.Background(), Query{
			Title:              "Welcome party",
			PartySize:          6,
			BudgetPerPerson:    int64Ptr(4000),
			LocationConstraint: "Shibuya",
		})

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Torikizoku", got[0].Name)
		require.NotNil(t, got[0].Rating)
		assert.InDelta(t, 3.9, *got[0].Rating, 0.001)
		assert.Equal(t, "Uotami", got[1].Name)

		assert.Contains(t, gen.prompt, "Welcome party")
		assert.Contains(t, gen.prompt, "Party size: 6")
		assert.Contains(t, gen.prompt, "4000 JPY")
		assert.Contains(t, gen.prompt, "Shibuya")
	})

	t.Run("truncates to max results", func(t *testing.T) {
		gen := &fakeGenerator{resp: textResponse(`[{"name":"A"},{"name":"B"},{"name":"C"}]`)}
		got, err := NewGemini(gen, 2, nil).Recommend(context.Background(), Query{Title: "x"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("no candidates is empty", func(t *testing.T) {
		gen := &fakeGenerator{resp: &genai.GenerateContentResponse{}}
		got, err := NewGemini(gen, 5, nil).Recommend(context.Background(), Query{Title: "x"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("request failure is dependency unavailable", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("quota exceeded")}
		_, err := NewGemini(gen, 5, nil).Recommend(context.Background(), Query{Title: "x"})
		assert.ErrorIs(t, err, apperr.ErrDependencyUnavailable)
	})

	t.Run("malformed JSON is dependency unavailable", func(t *testing.T) {
		gen := &fakeGenerator{resp: textResponse("Sorry, I cannot help with that.")}
		_, err := NewGemini(gen, 5, nil).Recommend(context.Background(), Query{Title: "x"})
		assert.ErrorIs(t, err, apperr.ErrDependencyUnavailable)
	})
}

func TestStaticRecommend(t *testing.T) {
	s := NewStatic(0)

	all, err := s.Recommend(context.Background(), Query{Title: "Team dinner"})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	shibuya, err := s.Recommend(context.Background(), Query{LocationConstraint: "near Shibuya station"})
	require.NoError(t, err)
	require.Len(t, shibuya, 1)
	assert.Equal(t, "Uotami Shibuya Center-gai", shibuya[0].Name)

	seafood, err := s.Recommend(context.Background(), Query{LocationConstraint: "seafood"})
	require.NoError(t, err)
	require.Len(t, seafood, 1)
	assert.Equal(t, "Sakanaya Dojo Akihabara", seafood[0].Name)

	none, err := s.Recommend(context.Background(), Query{LocationConstraint: "Osaka"})
	require.NoError(t, err)
	assert.Empty(t, none)
}
