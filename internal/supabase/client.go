// Package supabase talks to the hosted table store over its PostgREST
// interface. The wire format is the store's contract; everything returned
// here is already decoded into the dashboard's models.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/backendstudioapp/dashboardtypeform/internal/models"
	"github.com/backendstudioapp/dashboardtypeform/internal/utils"
)

const (
	leadsTable    = "leads_typeform_setter"
	studentsTable = "alumnos"
	notesTable    = "notes"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

type Client struct {
	base    string
	apiKey  string
	httpc   HTTPClient
	log     *slog.Logger
	backoff utils.Backoff
}

func New(baseURL, apiKey string, httpc HTTPClient, log *slog.Logger) *Client {
	return &Client{
		base:    baseURL,
		apiKey:  apiKey,
		httpc:   httpc,
		log:     log,
		backoff: utils.NewBackoff(100*time.Millisecond, 2),
	}
}

// ListLeads returns every lead row, newest first. Ordering is advisory
// only; consumers re-derive whatever order they need.
func (c *Client) ListLeads(ctx context.Context) ([]models.Lead, error) {
	var leads []models.Lead
	q := url.Values{"select": {"*"}, "order": {"fecha_registro.desc"}}
	if err := c.getJSON(ctx, leadsTable, q, &leads); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

func (c *Client) ListStudents(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	q := url.Values{"select": {"*"}, "order": {"fecha_compra.desc"}}
	if err := c.getJSON(ctx, studentsTable, q, &students); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// UpdateLead patches the given fields on the lead identified by phone
// number, the row key the intake form guarantees.
func (c *Client) UpdateLead(ctx context.Context, phone string, fields map[string]any) error {
	q := url.Values{"telefono": {"eq." + phone}}
	return c.write(ctx, http.MethodPatch, leadsTable, q, fields, nil)
}

func (c *Client) UpdateStudent(ctx context.Context, id int, fields map[string]any) error {
	q := url.Values{"id": {fmt.Sprintf("eq.%d", id)}}
	return c.write(ctx, http.MethodPatch, studentsTable, q, fields, nil)
}

func (c *Client) ListNotes(ctx context.Context, leadID string) ([]models.Note, error) {
	var notes []models.Note
	q := url.Values{
		"select":  {"*"},
		"lead_id": {"eq." + leadID},
		"order":   {"created_at.desc"},
	}
	if err := c.getJSON(ctx, notesTable, q, &notes); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

func (c *Client) CreateNote(ctx context.Context, leadID, content string) (models.Note, error) {
	body := map[string]any{"lead_id": leadID, "content": content}
	var created []models.Note
	if err := c.write(ctx, http.MethodPost, notesTable, nil, body, &created); err != nil {
		return models.Note{}, fmt.Errorf("create note: %w", err)
	}
	if len(created) == 0 {
		return models.Note{}, errors.New("create note: empty response")
	}
	return created[0], nil
}

func (c *Client) UpdateNote(ctx context.Context, noteID, content string) error {
	q := url.Values{"id": {"eq." + noteID}}
	return c.write(ctx, http.MethodPatch, notesTable, q, map[string]any{"content": content}, nil)
}

func (c *Client) DeleteNote(ctx context.Context, noteID string) error {
	q := url.Values{"id": {"eq." + noteID}}
	return c.write(ctx, http.MethodDelete, notesTable, q, nil, nil)
}

// getJSON fetches with retry; reads are idempotent so transient store
// hiccups just cost a backoff cycle.
func (c *Client) getJSON(ctx context.Context, table string, q url.Values, dst any) error {
	return c.backoff.Do(func(i int) error {
		if i > 0 {
			c.log.Debug("retrying fetch", slog.String("table", table), slog.Int("attempt", i))
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tableURL(table, q), nil)
		if err != nil {
			return err
		}
		c.setHeaders(req)
		resp, err := c.httpc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return fmt.Errorf("non-2xx: %d body=%s", resp.StatusCode, string(b))
		}
		return json.NewDecoder(resp.Body).Decode(dst)
	})
}

// write performs a single mutation attempt; writes are not retried.
func (c *Client) write(ctx context.Context, method, table string, q url.Values, body any, dst any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.tableURL(table, q), rd)
	if err != nil {
		return err
	}
	c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if dst != nil {
		req.Header.Set("Prefer", "return=representation")
	} else {
		req.Header.Set("Prefer", "return=minimal")
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("non-2xx: %d body=%s", resp.StatusCode, string(b))
	}
	if dst != nil {
		return json.NewDecoder(resp.Body).Decode(dst)
	}
	return nil
}

func (c *Client) tableURL(table string, q url.Values) string {
	u := c.base + "/rest/v1/" + table
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}
