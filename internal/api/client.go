package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cisd/recruitment-portal/internal/application"
	"github.com/cisd/recruitment-portal/internal/metrics"
	"github.com/cisd/recruitment-portal/internal/session"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// TokenSource supplies the bearer token for authenticated calls. Clear is
// called when the backend answers 401.
type TokenSource interface {
	Token() string
	Clear()
}

type Client struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
		logger:  logger,
	}
}

type messageBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Do issues one JSON request. A nil src makes an anonymous call. With a
// src, an empty token fails fast as unauthorized and a 401 clears the source.
func (c *Client) Do(ctx context.Context, method, path string, src TokenSource, body, out interface{}) error {
	var token string
	if src != nil {
		token = src.Token()
		if token == "" {
			return &Error{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: MessageUnauthorized}
		}
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindValidation, Message: "unable to encode request", Err: err}
		}
		reqBody = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &Error{Kind: KindValidation, Message: "unable to build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	endpoint := endpointLabel(path)
	start := time.Now()
	res, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveBackendCall(method, endpoint, 0, time.Since(start))
		c.logger.Error().Err(err).Str("method", method).Str("endpoint", endpoint).Msg("backend unreachable")
		return &Error{Kind: KindNetwork, Message: MessageNetwork, Err: err}
	}
	defer res.Body.Close()
	metrics.ObserveBackendCall(method, endpoint, res.StatusCode, time.Since(start))
	c.logger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", res.StatusCode).
		Dur("took", time.Since(start)).
		Msg("backend call")

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Status: res.StatusCode, Message: MessageNetwork, Err: err}
	}

	if res.StatusCode == http.StatusUnauthorized && src != nil {
		src.Clear()
		return &Error{Kind: KindUnauthorized, Status: res.StatusCode, Message: MessageUnauthorized}
	}
	if res.StatusCode >= http.StatusBadRequest {
		var msg messageBody
		json.Unmarshal(raw, &msg)
		text := msg.Message
		if text == "" {
			text = msg.Error
		}
		if text == "" {
			text = MessageServer
		}
		return &Error{Kind: KindServer, Status: res.StatusCode, Message: text}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindServer, Status: res.StatusCode, Message: MessageServer, Err: errors.Wrap(err, "unable to decode backend response")}
	}
	return nil
}

// endpointLabel replaces record ids in a path so metrics stay low cardinality.
func endpointLabel(path string) string {
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	for i := 1; i < len(parts); i++ {
		switch parts[i-1] {
		case "applications":
			if parts[i] != "all" && parts[i] != "status-counts" && parts[i] != "" {
				parts[i] = ":id"
			}
		case "payments":
			if parts[i] != "" {
				parts[i] = ":applicationId"
			}
		}
	}
	return strings.Join(parts, "/")
}

type loginResponse struct {
	Token    string        `json:"token"`
	ID       string        `json:"_id"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Role     string        `json:"role"`
	Location string        `json:"location"`
	User     *session.User `json:"user"`
}

// Login exchanges credentials for a session. A rejected login is a server
// error carrying the backend's message, not an unauthorized error.
func (c *Client) Login(ctx context.Context, email, password string) (session.Session, error) {
	var res loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.Do(ctx, http.MethodPost, "/api/auth/login", nil, body, &res); err != nil {
		return session.Session{}, err
	}
	if res.Token == "" {
		return session.Session{}, &Error{Kind: KindServer, Message: "Login failed"}
	}
	user := session.User{ID: res.ID, Username: res.Username, Email: res.Email, Role: res.Role, Location: res.Location}
	if res.User != nil {
		user = *res.User
	}
	if user.Email == "" {
		user.Email = email
	}
	return session.Session{Token: res.Token, User: user}, nil
}

func (c *Client) Verify(ctx context.Context, src TokenSource) error {
	return c.Do(ctx, http.MethodGet, "/api/auth/verify", src, nil, nil)
}

// CreateApplication is the public, unauthenticated submission endpoint.
func (c *Client) CreateApplication(ctx context.Context, app application.Application) (application.Application, error) {
	var created application.Application
	if err := c.Do(ctx, http.MethodPost, "/api/applications", nil, app, &created); err != nil {
		var apiErr *Error
		// some deployments answer 201 with a plain message body
		if errors.As(err, &apiErr) && apiErr.Kind == KindServer && apiErr.Status < http.StatusBadRequest {
			return app, nil
		}
		return application.Application{}, err
	}
	if created.ID == "" {
		return app, nil
	}
	return created, nil
}

func (c *Client) ListApplications(ctx context.Context, src TokenSource, page, limit int, status string) (application.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if status != "" && status != application.FilterAll {
		q.Set("status", application.NormalizeStatus(status).Backend())
	}
	var res application.Page
	if err := c.Do(ctx, http.MethodGet, "/api/applications?"+q.Encode(), src, nil, &res); err != nil {
		return application.Page{}, err
	}
	if res.CurrentPage == 0 {
		res.CurrentPage = page
	}
	if res.TotalPages == 0 {
		res.TotalPages = application.TotalPages(res.TotalApplications, limit)
	}
	return res, nil
}

func (c *Client) AllApplications(ctx context.Context, src TokenSource) ([]application.Application, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, "/api/applications/all", src, nil, &raw); err != nil {
		return nil, err
	}
	list, err := application.DecodeList(raw)
	if err != nil {
		return nil, &Error{Kind: KindServer, Message: MessageServer, Err: errors.Wrap(err, "unable to decode applications")}
	}
	return list, nil
}

type statusUpdate struct {
	Status      string `json:"status"`
	ReviewNotes string `json:"reviewNotes,omitempty"`
}

func (c *Client) UpdateStatus(ctx context.Context, src TokenSource, id string, st application.Status, notes string) error {
	body := statusUpdate{Status: st.Backend(), ReviewNotes: notes}
	return c.Do(ctx, http.MethodPost, fmt.Sprintf("/api/applications/%s/status", url.PathEscape(id)), src, body, nil)
}

func (c *Client) UpdateComment(ctx context.Context, src TokenSource, id, comment string) error {
	body := map[string]string{"comment": comment}
	return c.Do(ctx, http.MethodPost, fmt.Sprintf("/api/applications/%s/comment", url.PathEscape(id)), src, body, nil)
}

func (c *Client) StatusCounts(ctx context.Context, src TokenSource) (application.StatusCounts, error) {
	var counts application.StatusCounts
	if err := c.Do(ctx, http.MethodGet, "/api/applications/status-counts", src, nil, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}
