// Package exec is the client of the code-execution collaborator, a
// Piston-style HTTP runner.
package exec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

// runtimes maps the workspace language names to runner versions.
var runtimes = map[string]struct {
	Language string
	Version  string
}{
	"cpp":    {"c++", "10.2.0"},
	"java":   {"java", "15.0.2"},
	"python": {"python", "3.10.0"},
}

// Result is the collaborator boundary response.
type Result struct {
	Output   string `json:"output"`
	ExitCode int    `json:"exitCode"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Supported reports whether a language has a mapped runtime.
func Supported(language string) bool {
	_, ok := runtimes[language]
	return ok
}

// Run submits code with optional stdin and returns captured output and
// exit code.
func (c *Client) Run(ctx context.Context, language, code, stdin string) (Result, error) {
	rt, ok := runtimes[language]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
	}

	reqBody := struct {
		Language string `json:"language"`
		Version  string `json:"version"`
		Files    []struct {
			Content string `json:"content"`
		} `json:"files"`
		Stdin string `json:"stdin"`
	}{
		Language: rt.Language,
		Version:  rt.Version,
		Stdin:    stdin,
	}
	reqBody.Files = append(reqBody.Files, struct {
		Content string `json:"content"`
	}{Content: code})

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/execute", bytes.NewReader(raw))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("runner request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("runner status %d", resp.StatusCode)
	}

	var out struct {
		Run struct {
			Stdout string `json:"stdout"`
			Stderr string `json:"stderr"`
			Code   int    `json:"code"`
		} `json:"run"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("runner response: %w", err)
	}

	output := out.Run.Stdout
	if out.Run.Stderr != "" {
		output += out.Run.Stderr
	}
	return Result{Output: output, ExitCode: out.Run.Code}, nil
}
