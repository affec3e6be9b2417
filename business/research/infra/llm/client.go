// Package llm generates marketplace search keywords through an
// OpenAI-compatible chat completions API.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fd1az/resale-pricer/business/research/app"
	"github.com/fd1az/resale-pricer/internal/apm"
	"github.com/fd1az/resale-pricer/internal/apperror"
	"github.com/fd1az/resale-pricer/internal/cache"
	"github.com/fd1az/resale-pricer/internal/circuitbreaker"
	"github.com/fd1az/resale-pricer/internal/httpclient"
	"github.com/fd1az/resale-pricer/internal/logger"
	"github.com/fd1az/resale-pricer/internal/ratelimit"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"

	completionsPath = "/chat/completions"
	tracerName      = "github.com/fd1az/resale-pricer/business/research/infra/llm"
)

// keywordPrompt precedes the listing title in the single user message.
const keywordPrompt = `You are an expert at searching an international online marketplace.
From the title of a listing on a Japanese flea-market app, generate the best English search keywords for finding the same item.

Rules:
- Convert brand names to their English spelling (e.g. シャネル -> Chanel, ルイヴィトン -> Louis Vuitton)
- State the item category in English (e.g. バッグ -> Bag, 財布 -> Wallet)
- Include important features such as material, color or size
- Ignore Japanese noise words like 美品, 送料無料, 新品, 未使用
- Leave out anything that does not help the search
- Use 3 to 6 words

Output only the keywords on a single line.

Title: `

var _ app.KeywordGenerator = (*Client)(nil)

// Config configures the client.
type Config struct {
	BaseURL           string
	Model             string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int
	CacheTTL          time.Duration
	MaxTokens         int
	Temperature       float64
}

// Client calls the completions API behind a rate limiter and a circuit
// breaker, caching keywords per title.
type Client struct {
	http    httpclient.Client
	cfg     Config
	breaker *circuitbreaker.CircuitBreaker[string]
	limiter *ratelimit.Limiter
	cache   *cache.Cache[string, string]
	log     logger.LoggerInterface
	tracer  apm.Tracer
}

// NewClient creates a client. Extra options reach the underlying HTTP
// client, which is how tests substitute the transport.
func NewClient(cfg Config, log logger.LoggerInterface, opts ...httpclient.ClientOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperror.Validation(apperror.CodeInvalidAPIKey, "API key is not configured")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 100
	}

	tracer := apm.NewTracer(tracerName)

	base := []httpclient.ClientOption{
		httpclient.WithProviderName("llm"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithBearerToken(cfg.APIKey),
		httpclient.WithTracer(tracer.GetTracer()),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	}
	client, err := httpclient.New(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	cbCfg := circuitbreaker.DefaultConfig("llm-keywords")
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "circuit breaker state changed",
			"breaker", name,
			"from", from.String(),
			"to", to.String(),
		)
	}

	return &Client{
		http:    client,
		cfg:     cfg,
		breaker: circuitbreaker.New[string](cbCfg),
		limiter: ratelimit.New("llm-keywords", cfg.RequestsPerMinute),
		cache:   cache.New[string, string](cfg.CacheTTL),
		log:     log,
		tracer:  tracer,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate returns keywords for title, serving repeats from the cache.
func (c *Client) Generate(ctx context.Context, title string) (string, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "llm.Generate")
	defer span.End()

	key := strings.Join(strings.Fields(title), " ")
	if kw, ok := c.cache.Get(ctx, key); ok {
		span.SetAttribute(attribute.Bool("llm.cache_hit", true))
		return kw, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		span.NoticeError(err)
		return "", err
	}

	kw, err := c.breaker.Execute(func() (string, error) {
		return c.complete(ctx, key)
	})
	if err != nil {
		span.NoticeError(err)
		return "", err
	}

	c.cache.Set(ctx, key, kw, 0)
	span.SetAttributes(
		attribute.Bool("llm.cache_hit", false),
		attribute.String("llm.keywords", kw),
	)
	c.log.Debug(ctx, "generated keywords", "title", key, "keywords", kw)
	return kw, nil
}

func (c *Client) complete(ctx context.Context, title string) (string, error) {
	var result chatResponse
	_, err := c.http.NewRequest(
		httpclient.WithLabels(httpclient.Label{Key: "endpoint", Value: "chat_completions"}),
		httpclient.WithResponseErrorHandler(completionErrorHandler),
	).
		SetBody(chatRequest{
			Model:       c.cfg.Model,
			Messages:    []chatMessage{{Role: "user", Content: keywordPrompt + title}},
			MaxTokens:   c.cfg.MaxTokens,
			Temperature: c.cfg.Temperature,
		}).
		SetResult(&result).
		Post(ctx, completionsPath)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return "", err
		}
		return "", apperror.External(apperror.CodeKeywordGenerationFailed, "chat completions request failed", err)
	}

	if len(result.Choices) == 0 {
		return "", apperror.New(apperror.CodeKeywordGenerationFailed,
			apperror.WithContext("response contained no choices"))
	}
	kw := strings.TrimSpace(result.Choices[0].Message.Content)
	if kw == "" {
		return "", apperror.New(apperror.CodeKeywordGenerationFailed,
			apperror.WithContext("response was empty"))
	}
	return kw, nil
}

func completionErrorHandler(statusCode int, body []byte) error {
	if statusCode < http.StatusBadRequest {
		return nil
	}
	if statusCode == http.StatusUnauthorized {
		return apperror.New(apperror.CodeInvalidAPIKey)
	}

	detail := fmt.Sprintf("HTTP %d", statusCode)
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		detail = apiErr.Error.Message
	}
	return apperror.New(apperror.CodeKeywordGenerationFailed, apperror.WithContext(detail))
}
