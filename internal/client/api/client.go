// Package api talks to the remote animal-tracking service: login, list,
// update and delete. Every failure comes back as a *ValidationError or a
// *RemoteError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/animaltrack/internal/logger"
	"github.com/atinyakov/animaltrack/internal/models"
)

const (
	pathLogin   = "/login"
	pathAnimals = "/animals"

	// maxErrorBodySize bounds how much of a failed response is read for
	// its message.
	maxErrorBodySize = 1 << 20
)

// Client calls the remote API.
type Client struct {
	http    *http.Client
	baseURL string
	log     *zap.Logger
}

// New returns a Client for baseURL. httpClient may be nil, in which case a
// client with DefaultTimeout is used.
func New(baseURL string, httpClient *http.Client, log *zap.Logger) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logger.OrNop(log),
	}, nil
}

// Authenticate logs in with an e-mail address and password and returns the
// opaque session payload.
func (c *Client) Authenticate(ctx context.Context, user, password string) (models.Session, error) {
	if err := ValidateCredentials(user, password); err != nil {
		return nil, err
	}

	body := map[string]string{"user": user, "password": password}
	var sess models.Session
	if err := c.do(ctx, http.MethodPost, pathLogin, nil, body, &sess); err != nil {
		return nil, err
	}
	if len(sess) == 0 {
		return nil, &RemoteError{StatusCode: http.StatusOK, Message: "login returned an empty session"}
	}
	return sess, nil
}

// ListAnimals returns the full current list.
func (c *Client) ListAnimals(ctx context.Context) ([]models.Animal, error) {
	var animals []models.Animal
	if err := c.do(ctx, http.MethodGet, pathAnimals, nil, nil, &animals); err != nil {
		return nil, err
	}
	if animals == nil {
		animals = []models.Animal{}
	}
	return animals, nil
}

// UpdateAnimal sends name and status for the animal identified by fid.
func (c *Client) UpdateAnimal(ctx context.Context, fid, name, status string) error {
	if fid == "" {
		return &ValidationError{Field: "fid", Message: "animal has no server id"}
	}
	body := models.AnimalUpdate{FID: fid, Name: name, Status: status}
	return c.do(ctx, http.MethodPost, pathAnimals, nil, body, nil)
}

// DeleteAnimal removes the animal identified by fid.
func (c *Client) DeleteAnimal(ctx context.Context, fid string) error {
	if fid == "" {
		return &ValidationError{Field: "fid", Message: "animal has no server id"}
	}
	return c.do(ctx, http.MethodDelete, pathAnimals, url.Values{"fid": {fid}}, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &RemoteError{Message: "could not encode request", Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return &RemoteError{Message: err.Error(), Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("api request failed",
			zap.String("request_id", reqID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return &RemoteError{Message: transportMessage(err), Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("api request",
		zap.String("request_id", reqID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		msg := serverMessage(raw)
		if msg == "" {
			msg = fmt.Sprintf("request failed with status code %d", resp.StatusCode)
		}
		return &RemoteError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	// 2xx bodies are decoded from the stream without a size limit.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return &RemoteError{StatusCode: resp.StatusCode, Message: "request timed out", Err: err}
		}
		return &RemoteError{StatusCode: resp.StatusCode, Message: "invalid response from server", Err: err}
	}
	return nil
}

// serverMessage extracts {"message": "..."} from an error body.
func serverMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}

func transportMessage(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if uerr.Timeout() {
			return "request timed out"
		}
		return uerr.Err.Error()
	}
	return err.Error()
}
