package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index_to_code.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewClient_NotReadyWithoutServiceURL(t *testing.T) {
	client := NewClient("", writeArtifact(t, `{"0":"MD90.0"}`), time.Second)
	assert.False(t, client.Ready())
}

func TestNewClient_NotReadyWithoutArtifact(t *testing.T) {
	client := NewClient("http://localhost:9000", "", time.Second)
	assert.False(t, client.Ready())

	client = NewClient("http://localhost:9000", "/nonexistent/labels.json", time.Second)
	assert.False(t, client.Ready())
}

func TestNewClient_NotReadyWithBadArtifact(t *testing.T) {
	client := NewClient("http://localhost:9000", writeArtifact(t, `{"zero":"MD90.0"}`), time.Second)
	assert.False(t, client.Ready())

	client = NewClient("http://localhost:9000", writeArtifact(t, `{}`), time.Second)
	assert.False(t, client.Ready())
}

func TestClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/classify", r.URL.Path)
		var req classifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "lagnat at ubo", req.Text)
		json.NewEncoder(w).Encode(classifyResponse{Probabilities: []float64{0.1, 0.7, 0.2}})
	}))
	defer srv.Close()

	artifact := writeArtifact(t, `{"0":"MD81","1":"MD90.0","2":"MD12"}`)
	client := NewClient(srv.URL, artifact, time.Second)
	require.True(t, client.Ready())

	predictions, err := client.Classify(context.Background(), "lagnat at ubo")
	require.NoError(t, err)
	require.Len(t, predictions, 3)
	assert.Equal(t, "MD90.0", predictions[0].Code)
	assert.InDelta(t, 0.7, predictions[0].Probability, 1e-9)
	assert.Equal(t, "MD12", predictions[1].Code)
	assert.Equal(t, "MD81", predictions[2].Code)
}

func TestClassify_SkipsIndicesWithoutCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(classifyResponse{Probabilities: []float64{0.4, 0.6}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, writeArtifact(t, `{"0":"MD90.0"}`), time.Second)
	predictions, err := client.Classify(context.Background(), "lagnat")
	require.NoError(t, err)
	require.Len(t, predictions, 1)
	assert.Equal(t, "MD90.0", predictions[0].Code)
}

func TestClassify_NotReady(t *testing.T) {
	client := NewClient("", "", time.Second)
	_, err := client.Classify(context.Background(), "lagnat")
	assert.Error(t, err)
}

func TestClassify_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, writeArtifact(t, `{"0":"MD90.0"}`), time.Second)
	_, err := client.Classify(context.Background(), "lagnat")
	assert.Error(t, err)
}
