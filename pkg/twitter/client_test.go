package twitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twscraper/pkg/config"
	"twscraper/pkg/errors"
	"twscraper/pkg/logger"
)

func testConfig(baseURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Twitter.BaseURL = baseURL
	cfg.Twitter.BearerToken = "test-token"
	cfg.Twitter.RequestTimeout = 5 * time.Second
	cfg.Retry.Enabled = false
	return cfg
}

func TestFetchProfile(t *testing.T) {
	var gotAuth, gotPath, gotHandle string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotHandle = r.URL.Query().Get("screen_name")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"description":      "Tracked account",
			"favourites_count": 120,
			"followers_count":  4500,
			"friends_count":    310,
			"statuses_count":   9876,
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), logger.NewTestLogger())

	snapshot, err := client.FetchProfile(context.Background(), "acmecorp")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, ProfileEndpoint, gotPath)
	assert.Equal(t, "acmecorp", gotHandle)

	require.NotNil(t, snapshot.StatusesCount)
	assert.Equal(t, int64(9876), *snapshot.StatusesCount)
	require.NotNil(t, snapshot.Description)
	assert.Equal(t, "Tracked account", *snapshot.Description)
}

func TestFetchProfileSparseResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"followers_count": 12}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), logger.NewTestLogger())

	snapshot, err := client.FetchProfile(context.Background(), "sparse")
	require.NoError(t, err)

	assert.Nil(t, snapshot.StatusesCount)
	assert.Nil(t, snapshot.Description)
	require.NotNil(t, snapshot.FollowersCount)
	assert.Equal(t, int64(12), *snapshot.FollowersCount)
}

func TestFetchProfileNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), logger.NewTestLogger())

	_, err := client.FetchProfile(context.Background(), "ghost")
	require.Error(t, err)

	var apiErr *errors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errors.ErrorTypeNotFound, apiErr.Type)
	assert.Equal(t, http.StatusNotFound, apiErr.Code)
}

func TestFetchPage(t *testing.T) {
	var gotMaxID, gotMode string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMaxID = r.URL.Query().Get("max_id")
		gotMode = r.URL.Query().Get("tweet_mode")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id_str": "102", "created_at": "Mon Sep 08 15:19:11 +0000 2014", "full_text": "hello", "favorite_count": 3, "retweet_count": 1},
			{"id_str": "101", "created_at": "Sun Sep 07 10:00:00 +0000 2014", "full_text": "world", "favorite_count": 0, "retweet_count": 0}
		]`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), logger.NewTestLogger())

	entries, err := client.FetchPage(context.Background(), "acmecorp", "103")
	require.NoError(t, err)

	assert.Equal(t, "103", gotMaxID)
	assert.Equal(t, "extended", gotMode)

	require.Len(t, entries, 2)
	assert.Equal(t, "102", entries[0].ID)
	require.NotNil(t, entries[0].FullText)
	assert.Equal(t, "hello", *entries[0].FullText)
	require.NotNil(t, entries[0].FavoriteCount)
	assert.Equal(t, int64(3), *entries[0].FavoriteCount)
}

func TestFetchPageEmptyTimeline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), logger.NewTestLogger())

	entries, err := client.FetchPage(context.Background(), "quiet", "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetchPageMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"this is": "not a timeline"`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), logger.NewTestLogger())

	_, err := client.FetchPage(context.Background(), "acmecorp", "")
	require.Error(t, err)

	var apiErr *errors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errors.ErrorTypeParsing, apiErr.Type)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"statuses_count": 1}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Retry.Enabled = true
	cfg.Retry.MaxAttempts = 3
	cfg.Retry.BaseDelay = time.Millisecond
	cfg.Retry.MaxDelay = 5 * time.Millisecond

	client := NewClient(cfg, logger.NewTestLogger())

	snapshot, err := client.FetchProfile(context.Background(), "flaky")
	require.NoError(t, err)
	require.NotNil(t, snapshot.StatusesCount)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientDoesNotRetryAuthErrors(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Retry.Enabled = true
	cfg.Retry.MaxAttempts = 3
	cfg.Retry.BaseDelay = time.Millisecond

	client := NewClient(cfg, logger.NewTestLogger())

	_, err := client.FetchProfile(context.Background(), "locked")
	require.Error(t, err)

	var apiErr *errors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errors.ErrorTypeAuth, apiErr.Type)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
