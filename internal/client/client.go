// Package client talks to the feedback board REST API on behalf of one
// browsing context: it keeps the session cookie and the local upvote marks.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/scrumsquad/feedback-board/internal/client/localstore"
	"github.com/scrumsquad/feedback-board/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second
	upvoteMarker   = "upvoted_"
)

// APIError is a non-2xx answer from the API. It unwraps to the matching
// domain sentinel so callers can use errors.Is.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.kind }

// User is the public account view returned by the auth endpoints.
type User struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	IsAdmin     bool   `json:"isAdmin"`
	Role        string `json:"role"`
}

// Identity converts the account view into the renderer's viewer identity.
func (u *User) Identity() domain.Identity {
	if u == nil {
		return domain.Guest()
	}
	return domain.Identity{
		DisplayName: u.DisplayName,
		Handle:      u.Handle,
		Role:        domain.ParseRole(u.Role),
	}
}

// NewPost is the payload for CreatePost.
type NewPost struct {
	Issue      string `json:"issue"`
	Impact     string `json:"impact"`
	Suggestion string `json:"suggestion"`
	Theme      string `json:"theme"`
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	storage localstore.Storage
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Jar should be set
// for sessions to survive between calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithStorage sets where upvote marks are kept. Defaults to memory.
func WithStorage(s localstore.Storage) Option {
	return func(c *Client) { c.storage = s }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: defaultTimeout},
		storage: localstore.NewMemory(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// Storage returns the browsing-context storage backing the client.
func (c *Client) Storage() localstore.Storage { return c.storage }

// SessionKey is the storage key holding the exported session cookie.
const SessionKey = "session"

// SaveSession copies the session cookies for the API root into storage so a
// later process can resume the session.
func (c *Client) SaveSession() error {
	if c.http.Jar == nil {
		return nil
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	parts := make([]string, 0, 1)
	for _, ck := range c.http.Jar.Cookies(u) {
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	if len(parts) == 0 {
		return c.storage.Remove(SessionKey)
	}
	return c.storage.Set(SessionKey, strings.Join(parts, "; "))
}

// RestoreSession loads cookies written by SaveSession into the jar.
func (c *Client) RestoreSession() error {
	raw, ok := c.storage.Get(SessionKey)
	if !ok || raw == "" || c.http.Jar == nil {
		return nil
	}
	cookies, err := http.ParseCookie(raw)
	if err != nil {
		return fmt.Errorf("parse stored session: %w", err)
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	for _, ck := range cookies {
		ck.Path = "/"
	}
	c.http.Jar.SetCookies(u, cookies)
	return nil
}

type authResponse struct {
	OK   bool  `json:"ok"`
	User *User `json:"user"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	var resp authResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/employeeLogin", body, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) Signup(ctx context.Context, username, password, displayName string) (*User, error) {
	var resp authResponse
	body := map[string]string{"username": username, "password": password, "displayName": displayName}
	if err := c.do(ctx, http.MethodPost, "/api/signup", body, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// WhoAmI returns the session user, or nil for a guest.
func (c *Client) WhoAmI(ctx context.Context) (*User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodGet, "/api/whoami", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, nil
	}
	return resp.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

func (c *Client) ListPosts(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	if err := c.do(ctx, http.MethodGet, "/api/feedback", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) CreatePost(ctx context.Context, post NewPost) (*domain.Post, error) {
	var resp struct {
		Item *domain.Post `json:"item"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/feedback", post, &resp); err != nil {
		return nil, err
	}
	return resp.Item, nil
}

// Upvoted reports whether this browsing context has upvoted the post.
func (c *Client) Upvoted(id int64) bool {
	_, ok := c.storage.Get(upvoteMarker + strconv.FormatInt(id, 10))
	return ok
}

// ToggleUpvote upvotes the post, or withdraws the upvote when this browsing
// context already cast one. An unknown post leaves the mark alone and
// returns ErrPostNotFound.
func (c *Client) ToggleUpvote(ctx context.Context, id int64) (int, error) {
	key := upvoteMarker + strconv.FormatInt(id, 10)
	_, undo := c.storage.Get(key)

	var resp struct {
		Upvotes int `json:"upvotes"`
	}
	path := "/api/feedback/" + strconv.FormatInt(id, 10) + "/upvote"
	err := c.do(ctx, http.MethodPost, path, map[string]bool{"undo": undo}, &resp)
	if err != nil {
		return 0, err
	}

	if undo {
		err = c.storage.Remove(key)
	} else {
		err = c.storage.Set(key, "true")
	}
	if err != nil {
		return resp.Upvotes, fmt.Errorf("save upvote mark: %w", err)
	}
	return resp.Upvotes, nil
}

func (c *Client) ListUpdates(ctx context.Context, postID int64) ([]domain.Update, error) {
	var updates []domain.Update
	path := "/api/feedback/" + strconv.FormatInt(postID, 10) + "/updates"
	if err := c.do(ctx, http.MethodGet, path, nil, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *Client) AddUpdate(ctx context.Context, postID int64, content string) (*domain.Update, error) {
	var resp struct {
		Update *domain.Update `json:"update"`
	}
	path := "/api/feedback/" + strconv.FormatInt(postID, 10) + "/update"
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"text": content}, &resp); err != nil {
		return nil, err
	}
	return resp.Update, nil
}

func (c *Client) ListAllUpdates(ctx context.Context) ([]domain.Update, error) {
	var updates []domain.Update
	if err := c.do(ctx, http.MethodGet, "/api/updates", nil, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *Client) Summary(ctx context.Context) (*domain.Report, error) {
	var report domain.Report
	if err := c.do(ctx, http.MethodGet, "/api/reports/summary", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", domain.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrTransport, err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var envelope struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(data, &envelope)
	return &APIError{Status: status, Message: envelope.Message, kind: kindFor(status, envelope.Message)}
}

func kindFor(status int, message string) error {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrValidation
	case http.StatusUnauthorized:
		if message == "Invalid credentials" {
			return domain.ErrInvalidCredentials
		}
		return domain.ErrUnauthenticated
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrPostNotFound
	case http.StatusConflict:
		return domain.ErrUserExists
	default:
		return domain.ErrTransport
	}
}
