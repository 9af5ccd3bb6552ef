package club

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"tehbot/internal/core/domain"

	"github.com/rs/zerolog/log"
)

const (
	commandTechStart = "tech_start"
	typeFree         = "free"

	fallbackFailure = "API error"
)

// Client talks to the club management API. Every call is a single attempt.
type Client struct {
	endpoint     string
	apiKey       string
	clubID       int
	uuidAsString bool
	httpClient   *http.Client
}

func New(cfg domain.ClubConfig) *Client {
	return &Client{
		endpoint:     cfg.APIURL,
		apiKey:       cfg.APIKey,
		clubID:       cfg.ClubID,
		uuidAsString: cfg.UUIDAsString,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
	}
}

// UUIDs serializes either as a singleton list or, for older API revisions, as a bare string.
type UUIDs struct {
	Values   []string
	AsString bool
}

func (u UUIDs) MarshalJSON() ([]byte, error) {
	if u.AsString && len(u.Values) == 1 {
		return json.Marshal(u.Values[0])
	}

	return json.Marshal(u.Values)
}

func (u *UUIDs) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		u.Values = []string{single}
		u.AsString = true
		return nil
	}

	u.AsString = false
	return json.Unmarshal(data, &u.Values)
}

type actionRequest struct {
	ClubID  int    `json:"club_id"`
	Command string `json:"command"`
	Type    string `json:"type"`
	UUIDs   UUIDs  `json:"uuids"`
}

type actionResponse struct {
	Status  *bool  `json:"status"`
	Message string `json:"message"`
}

func (c *Client) SwitchToTechMode(ctx context.Context, uuid string) domain.ActionResult {
	l := log.With().
		Str("uuid", uuid).
		Int("clubId", c.clubID).
		Str("endpoint", c.endpoint).
		Logger()

	payloadBuf := new(bytes.Buffer)
	err := json.NewEncoder(payloadBuf).Encode(actionRequest{
		ClubID:  c.clubID,
		Command: commandTechStart,
		Type:    typeFree,
		UUIDs:   UUIDs{Values: []string{uuid}, AsString: c.uuidAsString},
	})
	if err != nil {
		l.Error().Err(err).Msg("error encoding action request")
		return failure(domain.NoResponseStatus, fmt.Sprintf("error encoding request: %s", err))
	}

	l.Info().Msg("sending tech mode request")
	l.Debug().RawJSON("payload", bytes.TrimSpace(payloadBuf.Bytes())).Msg("action request")

	status, body, err := c.post(ctx, payloadBuf)
	if err != nil {
		l.Error().Err(err).Msg("error connecting to club API")
		return failure(domain.NoResponseStatus, fmt.Sprintf("API connection error: %s", err))
	}

	l.Info().Int("status", status).Msg("club API responded")
	l.Debug().Bytes("body", body).Msg("club API response body")

	return interpret(status, body)
}

func (c *Client) post(ctx context.Context, payloadBuf *bytes.Buffer) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, payloadBuf)
	if err != nil {
		return 0, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Add("X-API-KEY", c.apiKey)
	req.Header.Add("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("error executing request: %w", err)
	}

	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("error reading response: %w", err)
	}

	return res.StatusCode, body, nil
}

// interpret treats only HTTP 200 together with "status": true as success.
func interpret(status int, body []byte) domain.ActionResult {
	var result actionResponse
	decodeErr := json.Unmarshal(body, &result)

	if status != http.StatusOK {
		if decodeErr == nil && result.Message != "" {
			return failure(status, result.Message)
		}
		return failure(status, fmt.Sprintf("unexpected status code: %d", status))
	}

	if decodeErr != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(decodeErr, &syntaxErr) {
			return failure(status, "malformed API response")
		}
		return failure(status, fmt.Sprintf("malformed API response: %s", decodeErr))
	}

	if result.Status == nil || !*result.Status {
		if result.Message != "" {
			return failure(status, result.Message)
		}
		return failure(status, fallbackFailure)
	}

	return domain.ActionResult{Succeeded: true, Message: result.Message, HTTPStatus: status}
}

func failure(status int, message string) domain.ActionResult {
	return domain.ActionResult{Succeeded: false, Message: message, HTTPStatus: status}
}
