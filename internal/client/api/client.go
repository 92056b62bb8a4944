// Package api is the HTTP client for the clinicdesk REST API.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/clinicdesk/internal/netx"
	"github.com/dmitrijs2005/clinicdesk/internal/server/models"
)

// ErrUnauthorized is returned when the server rejects the session token.
var ErrUnauthorized = errors.New("unauthorized")

// User is the account returned by signup and login.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// LoginRequest identifies the account by FullName, or by Email when set.
type LoginRequest struct {
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// NewPatient is the body of an add-patient call. Age is sent as typed so
// the server applies its own coercion rules.
type NewPatient struct {
	FullName string  `json:"fullName"`
	Phone    string  `json:"phone"`
	Age      string  `json:"age"`
	Gender   string  `json:"gender"`
	Address  *string `json:"address,omitempty"`
}

// Client talks to one clinicdesk server.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/users/signup", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/users/login", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) ListPatients(ctx context.Context, token string) ([]*models.Patient, error) {
	var resp struct {
		Patients []*models.Patient `json:"patients"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/patients", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Patients, nil
}

func (c *Client) AddPatient(ctx context.Context, token string, p NewPatient) (*models.Patient, error) {
	var resp struct {
		Patient *models.Patient `json:"patient"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/patients", token, p, &resp); err != nil {
		return nil, err
	}
	return resp.Patient, nil
}

func (c *Client) Dashboard(ctx context.Context, token string) (*models.DashboardSummary, error) {
	var resp models.DashboardSummary
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ping checks /healthz.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", "", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	err := netx.DoJSON(ctx, c.http, method, c.baseURL+path, token, in, out)

	var se *netx.StatusError
	if token != "" && errors.As(err, &se) &&
		(se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden) {
		return errors.Join(ErrUnauthorized, err)
	}
	return err
}
