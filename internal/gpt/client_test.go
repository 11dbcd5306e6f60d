package gpt

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewClient("test-key")
	client.baseURL = srv.URL
	return client, srv
}

func TestGenerate(t *testing.T) {
	var request chatRequest
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &request))

		w.Write([]byte(`{"choices":[{"message":{"content":"a friendly reply"}}]}`))
	}))
	defer srv.Close()

	reply := client.Generate(context.Background(), "Reply to this tweet: big news")

	assert.Equal(t, "a friendly reply", reply)
	assert.Equal(t, model, request.Model)
	require.Len(t, request.Messages, 1)
	assert.Equal(t, "user", request.Messages[0].Role)
	assert.Equal(t, "Reply to this tweet: big news", request.Messages[0].Content)
}

func TestGenerate_FallsBackOnServerError(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	assert.Equal(t, FallbackReply, client.Generate(context.Background(), "prompt"))
}

func TestGenerate_FallsBackOnEmptyChoices(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	assert.Equal(t, FallbackReply, client.Generate(context.Background(), "prompt"))
}

func TestGenerate_FallsBackOnMalformedBody(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	assert.Equal(t, FallbackReply, client.Generate(context.Background(), "prompt"))
}
