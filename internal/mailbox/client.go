// Package mailbox consumes the mail relay: the external collaborator that exposes
// each account's inbox over HTTP, filtered to the tracker vendor's sender address
// and searchable "since marker". The pipeline only fetches; protocol-level
// retries are the relay's responsibility.
package mailbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Revenn0/trackwatch/pkg/models"
	"github.com/google/uuid"
)

// Sentinel errors for relay failures.
var (
	ErrRelayUnreachable = errors.New("mail relay unreachable")
	ErrRelayQueryError  = errors.New("mail relay query error")
	ErrRelayTimeout     = errors.New("mail relay timeout")
)

// Source supplies batches of raw messages for an account. FetchSince returns up
// to limit messages strictly after the marker (empty marker means from the
// beginning) plus the total number of messages still pending after the marker,
// for progress reporting.
type Source interface {
	FetchSince(ctx context.Context, accountID uuid.UUID, marker string, limit int) ([]models.Message, int, error)
}

// HTTPClient implements Source against the relay's HTTP API.
type HTTPClient struct {
	baseURL string
	token   string
	sender  string
	client  *http.Client
}

// NewHTTPClient creates a relay client. sender is the origin filter applied to
// every fetch.
func NewHTTPClient(baseURL, token, sender string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		sender:  sender,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) FetchSince(ctx context.Context, accountID uuid.UUID, marker string, limit int) ([]models.Message, int, error) {
	params := url.Values{
		"account": {accountID.String()},
		"sender":  {c.sender},
	}
	if marker != "" {
		params.Set("after", marker)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	u := fmt.Sprintf("%s/relay/api/v1/messages?%s", c.baseURL, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("building request: %w", err)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, 0, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("%w: status %d", ErrRelayQueryError, resp.StatusCode)
	}

	var relayResp fetchResponse
	if err := json.NewDecoder(resp.Body).Decode(&relayResp); err != nil {
		return nil, 0, fmt.Errorf("decoding relay response: %w", err)
	}

	messages := relayResp.Messages
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, relayResp.TotalRemaining, nil
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrRelayTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrRelayTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrRelayUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrRelayUnreachable, err)
}

type fetchResponse struct {
	Messages       []models.Message `json:"messages"`
	TotalRemaining int              `json:"total_remaining"`
}

// Compile-time check that HTTPClient implements Source.
var _ Source = (*HTTPClient)(nil)
