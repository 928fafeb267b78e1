package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alpha4Coders/DevTrack/internal"
)

func TestMotivationReturnsModelText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "key-123", r.URL.Query().Get("key"))

		var req generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Contents, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "Current streak: 5 days")
		assert.Contains(t, req.Contents[0].Parts[0].Text, "devtrack")

		json.NewEncoder(w).Encode(generateResponse{
			Candidates: []struct {
				Content content `json:"content"`
			}{
				{Content: content{Parts: []part{{Text: "Five days straight, keep going!"}}}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key-123", internal.NewNopLogger())
	got := c.Motivation(context.Background(), MotivationStats{
		Streak:      5,
		UserGoal:    "Learning Go",
		ProjectName: "devtrack",
	})
	assert.Equal(t, "Five days straight, keep going!", got)
}

func TestMotivationFallsBackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key-123", internal.NewNopLogger())
	got := c.Motivation(context.Background(), MotivationStats{Streak: 1})
	assert.Equal(t, FallbackMessage, got)
}

func TestMotivationFallsBackOnEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key-123", internal.NewNopLogger())
	got := c.Motivation(context.Background(), MotivationStats{Streak: 1})
	assert.Equal(t, FallbackMessage, got)
}
