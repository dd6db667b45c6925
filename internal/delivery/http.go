package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds one delivery call, PDF upload included.
const DefaultTimeout = 60 * time.Second

// HTTPChannel posts requests to a relay over HTTP.
type HTTPChannel struct {
	Base string
	HTTP *http.Client
}

var _ Channel = (*HTTPChannel)(nil)

// NewHTTPChannel returns a channel for the relay at base. A zero timeout uses
// DefaultTimeout.
func NewHTTPChannel(base string, timeout time.Duration) *HTTPChannel {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPChannel{
		Base: strings.TrimRight(base, "/"),
		HTTP: &http.Client{Timeout: timeout},
	}
}

// Send posts req to the relay.
func (c *HTTPChannel) Send(ctx context.Context, req Request) (Response, error) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(req); err != nil {
		return Response{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+SendPath, buf)
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return Response{}, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Response{}, &NetworkError{Err: err}
	}

	var out Response
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode/100 != 2 {
		return out, &StatusError{Code: resp.StatusCode, RelayMessage: out.Error}
	}
	if decodeErr != nil {
		return Response{}, &StatusError{Code: http.StatusBadGateway, RelayMessage: "invalid relay response"}
	}
	return out, nil
}
