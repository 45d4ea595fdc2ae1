package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/viper"
)

// apiError mirrors the {"error": "...", "kind": "..."} body every httpapi
// handler writes on failure.
type apiError struct {
	Message string `json:"error"`
	Kind    string `json:"kind"`
}

// cliError wraps an apiError with the exit code main() maps it to.
type cliError struct {
	apiError
	status int
}

func (e *cliError) Error() string { return e.Message }

var kindExitCode = map[string]int{
	"BadRequest":         2,
	"AlreadyActive":      4,
	"NotActive":          3,
	"DuplicateException": 4,
	"ExceptionNotFound":  3,
	"Storage":            5,
}

// exitCodeFor maps an error returned by a subcommand's RunE to the exit
// code the command interface defines for each store.Kind. Errors that never
// reached the Control API (connection refused, JSON decode failure) exit 1.
func exitCodeFor(err error) int {
	if ce, ok := err.(*cliError); ok {
		if code, ok := kindExitCode[ce.Kind]; ok {
			return code
		}
	}
	return 1
}

func controlAddr() string {
	return viper.GetString("control_addr")
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

// apiCall sends an HTTP request to the daemon's Control API and decodes a
// successful JSON response into out (skipped if out is nil or the response
// has no body, as with 204 No Content). A non-2xx response is decoded as
// an apiError and returned as a *cliError.
func apiCall(method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, "http://"+controlAddr()+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect to daemon at %s: %w", controlAddr(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return fmt.Errorf("daemon returned status %d and an unreadable error body", resp.StatusCode)
		}
		return &cliError{apiError: apiErr, status: resp.StatusCode}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
