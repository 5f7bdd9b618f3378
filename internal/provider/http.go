package provider

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/go-resty/resty/v2"
)

// maxErrorBody caps how much of an error response body is read when
// extracting a structured error message.
const maxErrorBody = 64 << 10

// newClient builds the HTTP client for one provider call. Streaming
// responses have no bounded duration, so no client timeout is set;
// cancellation happens through the request context.
func newClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json")
}

// openStream performs a streaming POST and hands back the raw response
// body. Non-2xx responses are drained and turned into a TransportError
// carrying the message from the structured error body when present.
func openStream(ctx context.Context, client *resty.Client, path string, headers map[string]string, payload any) (io.ReadCloser, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(payload).
		SetDoNotParseResponse(true).
		Post(path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, &TransportError{Message: err.Error()}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.RawBody(), maxErrorBody))
		resp.RawBody().Close()
		return nil, newTransportError(resp.StatusCode(), body)
	}
	return resp.RawBody(), nil
}

// postJSON performs a non-streaming POST and decodes the JSON response
// into out.
func postJSON(ctx context.Context, client *resty.Client, path string, headers map[string]string, payload, out any) error {
	resp, err := client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(payload).
		Post(path)
	if err != nil {
		if ctx.Err() != nil {
			return ErrCancelled
		}
		return &TransportError{Message: err.Error()}
	}
	if resp.IsError() {
		return newTransportError(resp.StatusCode(), resp.Body())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &TransportError{StatusCode: resp.StatusCode(), Message: "malformed response body"}
	}
	return nil
}

// getJSON performs a GET and decodes the JSON response into out. Used
// by model listing; callers treat any error as a fallback trigger.
func getJSON(ctx context.Context, client *resty.Client, path string, headers map[string]string, out any) error {
	resp, err := client.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(path)
	if err != nil {
		return &TransportError{Message: err.Error()}
	}
	if resp.IsError() {
		return newTransportError(resp.StatusCode(), resp.Body())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &TransportError{StatusCode: resp.StatusCode(), Message: "malformed response body"}
	}
	return nil
}
