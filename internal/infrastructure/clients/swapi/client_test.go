package swapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holocron-labs/swapi-explorer/backend/internal/infrastructure/clients/swapi"
	"github.com/holocron-labs/swapi-explorer/backend/pkg/config"
)

func newTestClient(baseURL string, maxRetries int) *swapi.Client {
	return swapi.NewClient(&config.SwapiConfig{
		BaseURL:        baseURL,
		RequestTimeout: 2 * time.Second,
		MaxRetries:     maxRetries,
		RetryBaseDelay: time.Millisecond,
	})
}

func TestClient_SearchPeople_DecodesPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/people", r.URL.Path)
		assert.Equal(t, "luke", r.URL.Query().Get("name"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"message": "ok",
			"result": [
				{"uid": "1", "description": "A person", "properties": {"name": "Luke Skywalker", "films": ["f1"]}}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2)
	page, err := client.SearchPeople(context.Background(), "luke")

	require.NoError(t, err)
	require.Len(t, page.Result, 1)
	assert.Equal(t, "1", page.Result[0].UID)
	assert.Equal(t, "Luke Skywalker", page.Result[0].Properties.Name)
	assert.Equal(t, []string{"f1"}, page.Result[0].Properties.Films)
}

func TestClient_GetFilm_RetriesOnRateLimit(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"message":"ok","result":{"uid":"4","description":"A film","properties":{"title":"A New Hope"}}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2)
	film, err := client.GetFilm(context.Background(), "4")

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, "A New Hope", film.Result.Properties.Title)
}

func TestClient_GetFilm_GivesUpAfterMaxRetries(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2)
	_, err := client.GetFilm(context.Background(), "4")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, 3, attempts)
}

func TestClient_GetPerson_ServerErrorIsNotRetried(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2)
	_, err := client.GetPerson(context.Background(), "1")

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestClient_FetchPerson_ResolvesAbsoluteURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/people/2", r.URL.Path)
		_, _ = w.Write([]byte(`{"message":"ok","result":{"uid":"2","description":"A person","properties":{"name":"C-3PO"}}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	person, err := client.FetchPerson(context.Background(), server.URL+"/people/2")

	require.NoError(t, err)
	assert.Equal(t, "C-3PO", person.Result.Properties.Name)
}
