package xapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewClient(Credentials{BearerToken: "bearer", AccessToken: "access"})
	client.baseURL = srv.URL
	return client, srv
}

func TestResolveIdentity(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/by/username/target", r.URL.Path)
		assert.Equal(t, "Bearer bearer", r.Header.Get("Authorization"))
		w.Write([]byte(`{"data":{"id":"4242","name":"Target","username":"target"}}`))
	}))
	defer srv.Close()

	userID, err := client.ResolveIdentity(context.Background(), "target")
	require.NoError(t, err)
	assert.Equal(t, int64(4242), userID)
}

func TestResolveIdentity_NoData(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"title":"Not Found Error"}]}`))
	}))
	defer srv.Close()

	_, err := client.ResolveIdentity(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveIdentity_RateLimited(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-rate-limit-reset", "1717243200")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := client.ResolveIdentity(context.Background(), "target")
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestFetchRecentPosts(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/4242/tweets", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("max_results"))
		assert.Equal(t, "created_at,text", r.URL.Query().Get("tweet.fields"))
		w.Write([]byte(`{"data":[
			{"id":"100","text":"first","created_at":"2024-06-01T12:00:00.000Z"},
			{"id":"101","text":"second","created_at":"2024-06-01T12:05:00.000Z"}
		]}`))
	}))
	defer srv.Close()

	posts, err := client.FetchRecentPosts(context.Background(), 4242, 5)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "100", posts[0].ID)
	assert.Equal(t, "first", posts[0].Text)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), posts[0].CreatedAt.UTC())
	assert.Equal(t, "101", posts[1].ID)
}

func TestFetchRecentPosts_Empty(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{"result_count":0}}`))
	}))
	defer srv.Close()

	posts, err := client.FetchRecentPosts(context.Background(), 4242, 5)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestCreateReply(t *testing.T) {
	var payload string
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tweets", r.URL.Path)
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		payload = string(buf)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"900"}}`))
	}))
	defer srv.Close()

	err := client.CreateReply(context.Background(), "@target thanks", "100")
	require.NoError(t, err)
	assert.Contains(t, payload, `"@target thanks"`)
	assert.Contains(t, payload, `"100"`)
}

func TestCreateReply_RateLimited(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := client.CreateReply(context.Background(), "@target thanks", "100")
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestCreateReply_ServerError(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := client.CreateReply(context.Background(), "@target thanks", "100")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrQuotaExceeded)
}
