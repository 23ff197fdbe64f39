// Package backend talks to the hosted alarms collection over the
// PostgREST-style REST interface Supabase exposes.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/NikhilKonkimalla/snooze-u-looze/internal/alarm"
)

const alarmsPath = "/rest/v1/alarms"

// Client is a thin CRUD wrapper over the remote alarms collection.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient builds a client for the given project URL and anon key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// record is the wire shape of one alarm row.
type record struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	AlarmTime  time.Time  `json:"alarm_time"`
	Task       alarm.Task `json:"task"`
	IsActive   bool       `json:"is_active"`
	RepeatDays []int      `json:"repeat_days,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toRecord(a *alarm.Alarm) record {
	return record{
		ID:         a.ID,
		UserID:     a.OwnerID,
		AlarmTime:  a.Time,
		Task:       a.Task,
		IsActive:   a.IsActive,
		RepeatDays: a.RepeatDays,
		CreatedAt:  a.CreatedAt,
	}
}

func (r record) toAlarm() alarm.Alarm {
	return alarm.Alarm{
		ID:         r.ID,
		OwnerID:    r.UserID,
		Time:       r.AlarmTime,
		Task:       r.Task,
		IsActive:   r.IsActive,
		RepeatDays: r.RepeatDays,
		CreatedAt:  r.CreatedAt,
	}
}

func (c *Client) do(ctx context.Context, method, url string, body any, prefer string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("backend: status %s, body %s", resp.Status, string(msg))
	}
	return resp, nil
}

// List returns the owner's alarm records.
func (c *Client) List(ctx context.Context, ownerID uuid.UUID) ([]alarm.Alarm, error) {
	url := fmt.Sprintf("%s%s?user_id=eq.%s&select=*", c.baseURL, alarmsPath, ownerID)
	resp, err := c.do(ctx, http.MethodGet, url, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var records []record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("backend: decode list: %w", err)
	}
	alarms := make([]alarm.Alarm, 0, len(records))
	for _, r := range records {
		alarms = append(alarms, r.toAlarm())
	}
	return alarms, nil
}

// Create inserts a record and returns the stored representation.
func (c *Client) Create(ctx context.Context, a *alarm.Alarm) (*alarm.Alarm, error) {
	url := c.baseURL + alarmsPath
	resp, err := c.do(ctx, http.MethodPost, url, toRecord(a), "return=representation")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// PostgREST returns the inserted rows as an array.
	var records []record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("backend: decode insert: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("backend: insert returned no rows")
	}
	stored := records[0].toAlarm()
	return &stored, nil
}

// Update overwrites a record by id.
func (c *Client) Update(ctx context.Context, a *alarm.Alarm) error {
	url := fmt.Sprintf("%s%s?id=eq.%s", c.baseURL, alarmsPath, a.ID)
	resp, err := c.do(ctx, http.MethodPatch, url, toRecord(a), "")
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// Delete removes a record by id.
func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	url := fmt.Sprintf("%s%s?id=eq.%s", c.baseURL, alarmsPath, id)
	resp, err := c.do(ctx, http.MethodDelete, url, nil, "")
	if err != nil {
		return err
	}
	return resp.Body.Close()
}
