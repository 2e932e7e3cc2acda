package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"
)

const (
	defaultTimeout = 20 * time.Second

	// DefaultEmoji marks fallback items when the planner could not be
	// reached.
	DefaultEmoji = "📘"

	DefaultStartMessage    = "You can do it! One step at a time. 💪"
	DefaultCompleteMessage = "Great job! You finished it! 🎉"

	maxResponseBytes = 1 << 20
)

// TaskDescriptor is one task as submitted to the planner service.
type TaskDescriptor struct {
	Title            string `json:"title"`
	Subject          string `json:"subject"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	Emoji            string `json:"emoji,omitempty"`
}

// PlannedTask is one item of the optimized schedule the service returns.
// Reasoning is advisory only.
type PlannedTask struct {
	Title            string `json:"title"`
	Subject          string `json:"subject"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	IsBreak          bool   `json:"is_break"`
	Emoji            string `json:"emoji"`
	Reasoning        string `json:"reasoning,omitempty"`
}

type planRequest struct {
	Tasks                []TaskDescriptor `json:"tasks"`
	AvailableTimeMinutes int              `json:"available_time_minutes,omitempty"`
}

type planResponse struct {
	Tasks []PlannedTask `json:"tasks"`
}

type encouragementRequest struct {
	TaskTitle  string `json:"task_title"`
	IsComplete bool   `json:"is_complete"`
}

type encouragementResponse struct {
	Message string `json:"message"`
}

// Client talks to the schedule-planning service. Every failure mode
// degrades to a deterministic local result; callers never see an error.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreatePlan asks the service to reorder and annotate the given tasks
// into a schedule with breaks. On any transport or parse failure it
// reports the fallback plan instead, preserving the user's input 1:1.
func (c *Client) CreatePlan(ctx context.Context, descriptors []TaskDescriptor, availableMinutes int) (plan []PlannedTask, usedFallback bool) {
	if len(descriptors) == 0 {
		return []PlannedTask{}, false
	}
	body, err := sonic.Marshal(planRequest{Tasks: descriptors, AvailableTimeMinutes: availableMinutes})
	if err != nil {
		log.WithError(err).Warn("gateway: encode plan request")
		return Fallback(descriptors), true
	}

	var resp planResponse
	if err := c.post(ctx, "/v1/schedule", body, &resp); err != nil {
		log.WithError(err).Warn("gateway: plan request failed, using fallback")
		return Fallback(descriptors), true
	}
	if len(resp.Tasks) == 0 {
		log.Warn("gateway: plan response empty, using fallback")
		return Fallback(descriptors), true
	}
	for i := range resp.Tasks {
		if strings.TrimSpace(resp.Tasks[i].Emoji) == "" {
			resp.Tasks[i].Emoji = DefaultEmoji
		}
		if resp.Tasks[i].EstimatedMinutes <= 0 {
			log.WithField("title", resp.Tasks[i].Title).Warn("gateway: plan item has invalid estimate, using fallback")
			return Fallback(descriptors), true
		}
	}
	return resp.Tasks, false
}

// Encouragement fetches a short motivational line for a task. Failures
// substitute a fixed default, distinct for starting vs completing.
func (c *Client) Encouragement(ctx context.Context, taskTitle string, isComplete bool) string {
	fallback := DefaultStartMessage
	if isComplete {
		fallback = DefaultCompleteMessage
	}
	body, err := sonic.Marshal(encouragementRequest{TaskTitle: taskTitle, IsComplete: isComplete})
	if err != nil {
		log.WithError(err).Warn("gateway: encode encouragement request")
		return fallback
	}
	var resp encouragementResponse
	if err := c.post(ctx, "/v1/encouragement", body, &resp); err != nil {
		log.WithError(err).Debug("gateway: encouragement request failed")
		return fallback
	}
	if strings.TrimSpace(resp.Message) == "" {
		return fallback
	}
	return resp.Message
}

// Fallback maps descriptors 1:1 into a plan, preserving order, with no
// breaks inserted and a placeholder glyph where none was given.
func Fallback(descriptors []TaskDescriptor) []PlannedTask {
	out := make([]PlannedTask, 0, len(descriptors))
	for _, d := range descriptors {
		emoji := d.Emoji
		if strings.TrimSpace(emoji) == "" {
			emoji = DefaultEmoji
		}
		out = append(out, PlannedTask{
			Title:            d.Title,
			Subject:          d.Subject,
			EstimatedMinutes: d.EstimatedMinutes,
			IsBreak:          false,
			Emoji:            emoji,
		})
	}
	return out
}

func (c *Client) post(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}
	dec := sonic.ConfigStd.NewDecoder(io.LimitReader(res.Body, maxResponseBytes))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
