// Package client talks to the Mangrove Watch API. It is the identity
// service and report intake as seen from the terminal client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
	"github.com/xyz-asif/mangrovewatch/internal/features/leaderboard"
	"github.com/xyz-asif/mangrovewatch/internal/features/reports"
	"github.com/xyz-asif/mangrovewatch/internal/session"
	apperrors "github.com/xyz-asif/mangrovewatch/pkg/errors"
)

// ErrUnauthorized means the server refused the bearer token of an
// authenticated call. The session holding that token is no longer valid.
var ErrUnauthorized = errors.New("client: token rejected by server")

const maxBodyBytes = 1 << 20

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API rooted at baseURL, e.g.
// http://localhost:8080/api/v1.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Code       string          `json:"code"`
	Data       json.RawMessage `json:"data"`
}

// Register implements session.IdentityService.
func (c *Client) Register(ctx context.Context, req auth.RegisterRequest) (*session.RegistrationResult, error) {
	var out session.RegistrationResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login implements session.IdentityService.
func (c *Client) Login(ctx context.Context, creds session.Credentials) (*session.LoginResult, error) {
	var out session.LoginResult
	body := auth.LoginRequest{Email: creds.Email, Password: creds.Password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the identity behind token.
func (c *Client) Me(ctx context.Context, token string) (*auth.Identity, error) {
	var out auth.RegisterResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) SubmitReport(ctx context.Context, token string, req reports.SubmitRequest) (*reports.Report, error) {
	var out reports.Report
	if err := c.do(ctx, http.MethodPost, "/reports", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReportQuery mirrors the list filters of GET /reports.
type ReportQuery struct {
	Status   reports.Status
	Severity reports.Severity
	Mine     bool
	Page     int
	Limit    int
}

func (q ReportQuery) values() url.Values {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.Severity != "" {
		v.Set("severity", string(q.Severity))
	}
	if q.Mine {
		v.Set("mine", "true")
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// ReportPage is one page of a report listing.
type ReportPage struct {
	Items []reports.Report `json:"items"`
	Total int64            `json:"total"`
	Limit int              `json:"limit"`
	Page  int              `json:"page"`
}

func (c *Client) ListReports(ctx context.Context, token string, q ReportQuery) (*ReportPage, error) {
	path := "/reports"
	if encoded := q.values().Encode(); encoded != "" {
		path += "?" + encoded
	}
	var out ReportPage
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetReport(ctx context.Context, token, id string) (*reports.Report, error) {
	var out reports.Report
	if err := c.do(ctx, http.MethodGet, "/reports/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TransitionReport(ctx context.Context, token, id string, status reports.Status) (*reports.Report, error) {
	var out reports.Report
	path := "/reports/" + url.PathEscape(id) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, token, reports.TransitionRequest{Status: status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Leaderboard(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	path := "/leaderboard"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []leaderboard.Entry
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MyStats(ctx context.Context, token string) (*leaderboard.Entry, error) {
	var out leaderboard.Entry
	if err := c.do(ctx, http.MethodGet, "/leaderboard/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &apperrors.IdentityServiceError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &apperrors.IdentityServiceError{StatusCode: resp.StatusCode, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &apperrors.IdentityServiceError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected %s response: %w", resp.Status, err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		return statusError(resp.StatusCode, token != "", env)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &apperrors.IdentityServiceError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

// statusError maps a failed envelope onto the error taxonomy.
func statusError(status int, authenticated bool, env envelope) error {
	msg := env.Message
	switch {
	case status == http.StatusUnauthorized && authenticated:
		return fmt.Errorf("%s: %w", fallback(msg, "unauthorized"), ErrUnauthorized)
	case status == http.StatusUnauthorized:
		return &apperrors.AuthenticationError{Message: msg}
	case status == http.StatusForbidden && authenticated:
		return &apperrors.AuthorizationError{Message: msg}
	case status == http.StatusNotFound:
		return fmt.Errorf("%s: %w", fallback(msg, "not found"), apperrors.ErrNotFound)
	case status == http.StatusConflict && env.Code == "ILLEGAL_TRANSITION":
		return fmt.Errorf("%s: %w", msg, apperrors.ErrIllegalTransition)
	case status == http.StatusConflict && env.Code == "STALE_REPORT":
		return fmt.Errorf("%s: %w", msg, apperrors.ErrConflict)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return &apperrors.ValidationError{Message: fallback(msg, "invalid request")}
	default:
		return &apperrors.IdentityServiceError{Message: msg, StatusCode: status}
	}
}

func fallback(msg, def string) string {
	if msg == "" {
		return def
	}
	return msg
}
