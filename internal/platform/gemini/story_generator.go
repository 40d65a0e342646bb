package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"google.golang.org/genai"

	"github.com/taskfable/questlog-api/internal/config"
	"github.com/taskfable/questlog-api/internal/domain"
	"github.com/taskfable/questlog-api/internal/generation"
)

// StoryGenerator implements generation.StoryGenerator using Google's
// Gemini API.
type StoryGenerator struct {
	logger         *slog.Logger
	config         config.LLMConfig
	promptTemplate *template.Template
	client         *genai.Client
	model          string
}

// NewStoryGenerator creates a StoryGenerator from the LLM configuration.
// Returns generation.ErrInvalidConfig for missing or unusable settings.
func NewStoryGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*StoryGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	promptTemplate, err := loadPromptTemplate(cfg.PromptTemplatePath)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &StoryGenerator{
		logger:         logger.With("component", "gemini_story_generator"),
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
	}, nil
}

// GenerateStory produces a story draft for the task. The API call is
// bounded by the configured timeout and retried with exponential
// backoff on transient failures. The reward pool is parsed from the
// response text, falling back to (10, 5).
func (g *StoryGenerator) GenerateStory(
	ctx context.Context,
	task *domain.Task,
	priorContext string,
) (*generation.StoryDraft, error) {
	if task == nil {
		return nil, ErrNilTask
	}

	prompt, err := renderPrompt(g.promptTemplate, promptData{
		Title:        task.Title,
		Description:  task.Description,
		PriorContext: priorContext,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	if g.config.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(g.config.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	text, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	xp, currency := parseRewards(text)
	g.logger.InfoContext(ctx, "story generated",
		"task_id", task.ID.String(),
		"text_length", len(text),
		"xp", xp,
		"currency", currency)

	return &generation.StoryDraft{Text: text, XP: xp, Currency: currency}, nil
}

// callWithRetry calls the Gemini API, retrying transient failures with
// exponential backoff and jitter. Permanent failures (safety blocks,
// empty responses) return immediately.
func (g *StoryGenerator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	baseDelaySeconds := g.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.config.Temperature),
	}

	for attempt := 0; ; attempt++ {
		text, transient, err := g.callOnce(ctx, prompt, genCfg)
		if err == nil {
			return text, nil
		}

		g.logger.WarnContext(ctx, "Gemini API call failed",
			"attempt", attempt+1,
			"max_attempts", maxRetries+1,
			"transient", transient,
			"error", err)

		if !transient {
			return "", err
		}
		if attempt >= maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, maxRetries)
		}

		// delay = base * 2^attempt * jitter in [0.5, 1.0)
		backoff := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5) * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// callOnce performs a single API call and classifies any failure as
// transient (retryable) or permanent.
func (g *StoryGenerator) callOnce(
	ctx context.Context,
	prompt string,
	cfg *genai.GenerateContentConfig,
) (text string, transient bool, err error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", true, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", false, fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
	}

	text = strings.TrimSpace(resp.Text())
	if text == "" {
		return "", false, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, ErrEmptyResponse)
	}
	return text, false, nil
}
