package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"supply-route-service/internal/platform/obs"
	"supply-route-service/internal/ports"
)

// RelayClient hands text messages to the SMS relay service, which owns the
// carrier credentials.
type RelayClient struct {
	session *http.Client
	url     string
}

func NewRelayClient(url string) *RelayClient {
	return &RelayClient{
		session: &http.Client{Timeout: 15 * time.Second},
		url:     url,
	}
}

type relayRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type relayResponse struct {
	Success    bool   `json:"success"`
	MessageSID string `json:"messageSid"`
	Error      string `json:"error"`
}

// Send posts the message. A relay that answers with an error body yields a
// SendResult with Success false; transport failures are returned as errors.
func (c *RelayClient) Send(ctx context.Context, to string, message string) (_ ports.SendResult, err error) {
	defer obs.Time(ctx, "relay.Send")(&err)

	body, err := json.Marshal(relayRequest{To: to, Message: message})
	if err != nil {
		return ports.SendResult{}, fmt.Errorf("send message: encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return ports.SendResult{}, fmt.Errorf("send message: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.session.Do(req)
	if err != nil {
		return ports.SendResult{}, fmt.Errorf("send message: execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return ports.SendResult{}, fmt.Errorf("send message: read response: %w", err)
	}

	var decoded relayResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		if resp.StatusCode >= 400 {
			return ports.SendResult{Error: fmt.Sprintf("relay status %d", resp.StatusCode)}, nil
		}
		return ports.SendResult{}, fmt.Errorf("send message: decode response: %w", err)
	}

	if resp.StatusCode >= 400 && decoded.Success {
		decoded.Success = false
	}
	if !decoded.Success && decoded.Error == "" {
		decoded.Error = fmt.Sprintf("relay status %d", resp.StatusCode)
	}

	return ports.SendResult{
		Success:    decoded.Success,
		MessageSID: decoded.MessageSID,
		Error:      decoded.Error,
	}, nil
}
