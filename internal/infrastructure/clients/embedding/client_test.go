package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_BlankURLErrors(t *testing.T) {
	for _, url := range []string{"", "   "} {
		client, err := NewClient(url, "some-model", time.Second)
		assert.Error(t, err)
		assert.Nil(t, client)
	}
}

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)

		vectors := make([][]float64, len(req.Input))
		for i := range req.Input {
			vectors[i] = []float64{float64(i), 1, 0}
		}
		json.NewEncoder(w).Encode(embedResponse{Embeddings: vectors})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "test-model", time.Second)
	require.NoError(t, err)
	vectors, err := client.Embed(context.Background(), []string{"lagnat", "fever"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float64{0, 1, 0}, vectors[0])
}

func TestEmbed_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float64{{1}}})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "test-model", time.Second)
	require.NoError(t, err)
	_, err = client.Embed(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}

func TestEmbed_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "test-model", time.Second)
	require.NoError(t, err)
	_, err = client.Embed(context.Background(), []string{"a"})
	assert.Error(t, err)
}

func TestEmbed_EmptyInput(t *testing.T) {
	client, err := NewClient("http://unused", "m", time.Second)
	require.NoError(t, err)
	vectors, err := client.Embed(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, vectors)
}
