// Package loki pushes vote telemetry events to Grafana Loki.
package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultJob is the job label attached to every stream.
const DefaultJob = "glassballots"

// ErrNoBaseURL is returned when the client has no Loki URL configured.
var ErrNoBaseURL = errors.New("loki: base URL is empty")

type pushRequest struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"` // [timestamp_ns, line]
}

// Label names must match [a-zA-Z_:][a-zA-Z0-9_:]*; values are restricted here to keep queries simple.
var labelSanitize = regexp.MustCompile(`[^a-zA-Z0-9_\-:.]`)

// eventFields are the parts of a telemetry event JSON used for stream labels and the entry timestamp.
type eventFields struct {
	EventType string `json:"event_type"`
	Source    string `json:"source"`
	OrgID     string `json:"org_id"`
	CreatedAt string `json:"created_at"`
}

// Client sends log lines to a Loki push endpoint.
type Client struct {
	baseURL string
	job     string
	http    *http.Client
}

// NewClient returns a Client for baseURL (e.g. http://localhost:3100). An empty job uses DefaultJob.
func NewClient(baseURL, job string, httpClient *http.Client) *Client {
	if job == "" {
		job = DefaultJob
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"), job: job, http: httpClient}
}

// PushEventJSON labels a raw event (a Kafka message value) by event type, source and org and pushes it.
// Lines that do not parse are pushed unlabelled with the current time.
func (c *Client) PushEventJSON(ctx context.Context, raw []byte) error {
	labels, ts := labelsFor(raw)
	return c.Push(ctx, ts, string(raw), labels)
}

func labelsFor(raw []byte) (map[string]string, time.Time) {
	labels := map[string]string{}
	ts := time.Now().UTC()
	var f eventFields
	if err := json.Unmarshal(raw, &f); err != nil {
		return labels, ts
	}
	for k, v := range map[string]string{"event_type": f.EventType, "source": f.Source, "org_id": f.OrgID} {
		if v != "" {
			labels[k] = v
		}
	}
	if f.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, f.CreatedAt); err == nil {
			ts = t
		}
	}
	return labels, ts
}

// Push sends one line at timestamp with the given labels plus job. Non-2xx responses are errors.
func (c *Client) Push(ctx context.Context, timestamp time.Time, line string, labels map[string]string) error {
	if c == nil || c.baseURL == "" {
		return ErrNoBaseURL
	}
	streamLabels := make(map[string]string, len(labels)+1)
	for k, v := range labels {
		if v = labelSanitize.ReplaceAllString(strings.TrimSpace(v), "_"); v != "" {
			streamLabels[k] = v
		}
	}
	streamLabels["job"] = c.job
	payload, err := json.Marshal(pushRequest{Streams: []stream{{
		Stream: streamLabels,
		Values: [][]string{{strconv.FormatInt(timestamp.UnixNano(), 10), line}},
	}}})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/loki/api/v1/push", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("loki: push returned %s", resp.Status)
	}
	return nil
}
