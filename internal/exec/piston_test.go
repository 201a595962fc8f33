package exec

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMapsRunnerResponse(t *testing.T) {
	var got struct {
		Language string `json:"language"`
		Version  string `json:"version"`
		Files    []struct {
			Content string `json:"content"`
		} `json:"files"`
		Stdin string `json:"stdin"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v2/execute", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{
			"run": map[string]any{"stdout": "4\n", "stderr": "", "code": 0},
		})
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL).Run(context.Background(), "python", "print(2+2)", "")
	require.NoError(t, err)
	assert.Equal(t, "4\n", res.Output)
	assert.Equal(t, 0, res.ExitCode)

	assert.Equal(t, "python", got.Language)
	assert.Equal(t, "3.10.0", got.Version)
	require.Len(t, got.Files, 1)
	assert.Equal(t, "print(2+2)", got.Files[0].Content)
}

func TestRunAppendsStderr(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"run": map[string]any{"stdout": "partial\n", "stderr": "boom\n", "code": 1},
		})
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL).Run(context.Background(), "cpp", "int main(){}", "")
	require.NoError(t, err)
	assert.Equal(t, "partial\nboom\n", res.Output)
	assert.Equal(t, 1, res.ExitCode)
}

func TestRunUnsupportedLanguage(t *testing.T) {
	_, err := NewClient("http://unused").Run(context.Background(), "cobol", "", "")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestRunSurfacesRunnerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Run(context.Background(), "java", "class A{}", "")
	assert.ErrorContains(t, err, "runner status 429")
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("python"))
	assert.True(t, Supported("cpp"))
	assert.True(t, Supported("java"))
	assert.False(t, Supported("brainfuck"))
}
