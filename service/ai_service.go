package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	model "github.com/nfredmond/project-manager/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RateLimiter counts calls per key inside a fixed window.
type RateLimiter struct {
	mu           sync.Mutex
	requestCount map[string]int
	limit        int
	window       time.Duration
	lastReset    time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requestCount: make(map[string]int),
		limit:        limit,
		window:       window,
		lastReset:    timeNow(),
	}
}

// Allow records a call for key and reports whether it is within the limit.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if timeNow().Sub(rl.lastReset) > rl.window {
		rl.requestCount = make(map[string]int)
		rl.lastReset = timeNow()
	}

	rl.requestCount[key]++
	return rl.requestCount[key] <= rl.limit
}

// sleep is replaced in tests so retries do not wait.
var sleep = time.Sleep

type AIOptions struct {
	APIKey        string
	Endpoint      string
	Model         string
	Timeout       time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	RatePerMinute int
}

// AIService generates grant narratives and meeting summaries through an
// OpenAI-compatible chat completions endpoint.
type AIService struct {
	db      *gorm.DB
	opts    AIOptions
	client  *http.Client
	limiter *RateLimiter
	logger  *zap.Logger
}

func NewAIService(db *gorm.DB, opts AIOptions, logger *zap.Logger) *AIService {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RatePerMinute <= 0 {
		opts.RatePerMinute = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIService{
		db:      db,
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: NewRateLimiter(opts.RatePerMinute, time.Minute),
		logger:  logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete sends one prompt and returns the first choice's text. 429
// responses are retried with a linearly growing delay.
func (s *AIService) complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	if s.opts.APIKey == "" {
		return "", ErrAIUnavailable
	}
	if !s.limiter.Allow("chat_completion") {
		s.logger.Warn("local AI rate limit exceeded")
		return "", ErrAIRateLimited
	}

	reqBody, err := json.Marshal(chatRequest{
		Model:       s.opts.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	var resp *http.Response
	for attempt := 0; attempt < s.opts.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.Endpoint, bytes.NewReader(reqBody))
		if err != nil {
			return "", fmt.Errorf("create chat request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+s.opts.APIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err = s.client.Do(req)
		if err == nil && resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		if err != nil {
			s.logger.Warn("chat request failed", zap.Int("attempt", attempt+1), zap.Error(err))
		} else {
			s.logger.Warn("chat provider rate limited", zap.Int("attempt", attempt+1), zap.String("status", resp.Status))
			resp.Body.Close()
			resp = nil
		}
		if attempt < s.opts.MaxRetries-1 {
			sleep(s.opts.RetryDelay * time.Duration(attempt+1))
		}
	}
	if resp == nil {
		return "", fmt.Errorf("chat provider unavailable after %d attempts", s.opts.MaxRetries)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat provider returned %s", resp.Status)
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parse chat response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("chat provider returned no choices")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

type GrantNarrativeInput struct {
	ProjectID string  `json:"projectId" binding:"required"`
	GrantType *string `json:"grantType"`
	Section   string  `json:"section" binding:"required"`
	Context   *string `json:"context"`
}

// GenerateGrantNarrative drafts one section of a grant application using the
// project's description and budget.
func (s *AIService) GenerateGrantNarrative(ctx context.Context, tenantID string, in GrantNarrativeInput) (string, error) {
	if strings.TrimSpace(in.ProjectID) == "" || strings.TrimSpace(in.Section) == "" {
		return "", invalid("projectId and section are required")
	}
	var project model.Project
	if err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", in.ProjectID, tenantID).
		First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("project %s: %w", in.ProjectID, ErrNotFound)
		}
		return "", err
	}

	prompt := fmt.Sprintf("You are a grants specialist writing the %s section of a %s grant. "+
		"Project: %s. Description: %s. Budget: $%.0f with $%.0f spent. Context from planner: %s. "+
		"Write 2-3 concise paragraphs referencing safety, equity, climate, and deliverability.",
		in.Section, stringOr(in.GrantType, "public"), project.Name,
		stringOr(project.Description, "N/A"), project.Budget, project.Spent,
		stringOr(in.Context, "None"))

	return s.complete(ctx, prompt, 0.4)
}

type MeetingSummaryInput struct {
	Title       string          `json:"title" binding:"required"`
	MeetingDate *string         `json:"meetingDate"`
	Status      *string         `json:"status"`
	Location    *string         `json:"location"`
	Agenda      json.RawMessage `json:"agenda"`
	Notes       json.RawMessage `json:"notes"`
	Minutes     json.RawMessage `json:"minutes"`
	Resolutions json.RawMessage `json:"resolutions"`
}

type MeetingSummary struct {
	Summary   string   `json:"summary"`
	NextSteps []string `json:"nextSteps"`
	Risks     []string `json:"risks"`
	Raw       string   `json:"raw,omitempty"`
}

// SummarizeMeeting asks for a JSON summary. Output that is not JSON is
// returned verbatim as the summary.
func (s *AIService) SummarizeMeeting(ctx context.Context, in MeetingSummaryInput) (*MeetingSummary, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalid("title is required")
	}
	prompt := fmt.Sprintf(`You are a public agency board clerk summarizing a planning meeting.
Return strictly valid JSON with keys: summary (<=120 words string), nextSteps (array of 3 bullet strings), risks (array of up to 2 bullet strings).
Meeting data:
- Title: %s
- Status: %s
- Date: %s
- Location: %s
- Agenda: %s
- Notes: %s
- Minutes: %s
- Resolutions: %s`,
		in.Title,
		stringOr(in.Status, "Unknown"),
		stringOr(in.MeetingDate, "Unscheduled"),
		stringOr(in.Location, "N/A"),
		describeSection(in.Agenda),
		describeSection(in.Notes),
		describeSection(in.Minutes),
		describeSection(in.Resolutions))

	text, err := s.complete(ctx, prompt, 0.3)
	if err != nil {
		return nil, err
	}
	return ParseMeetingSummary(text), nil
}

// ParseMeetingSummary decodes the model output, falling back to the raw text.
func ParseMeetingSummary(text string) *MeetingSummary {
	summary := &MeetingSummary{Summary: text, Raw: text}
	var parsed MeetingSummary
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		if parsed.Summary != "" {
			summary.Summary = parsed.Summary
		}
		summary.NextSteps = parsed.NextSteps
		summary.Risks = parsed.Risks
	}
	if summary.NextSteps == nil {
		summary.NextSteps = []string{}
	}
	if summary.Risks == nil {
		summary.Risks = []string{}
	}
	return summary
}

// describeSection renders a free-form agenda or minutes value for a prompt.
func describeSection(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "Not provided"
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if text == "" {
			return "Not provided"
		}
		return text
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err == nil {
		parts := make([]string, 0, len(entries))
		for _, entry := range entries {
			var s string
			if json.Unmarshal(entry, &s) == nil {
				parts = append(parts, s)
				continue
			}
			parts = append(parts, string(entry))
		}
		return strings.Join(parts, " • ")
	}
	return string(raw)
}
