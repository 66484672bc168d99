// Package completion performs the client-side reply composition against the
// provider's chat completion API using the official OpenAI client. Mistral
// is served through its OpenAI-compatible endpoint, so one adapter covers
// both providers; only the base URL and default model differ.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/recallmesh/core"
	"github.com/hupe1980/recallmesh/logging"
	"github.com/hupe1980/recallmesh/store"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"
)

const defaultSystemPrompt = "You are a helpful assistant. Use the retrieved conversation context when it is relevant to the user's message."

// Options configure the completion client.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	// BaseURL overrides the provider's completion endpoint. Empty means the
	// provider default.
	BaseURL string
	// SystemPrompt is the instruction prepended to every composition; the
	// retrieved context is rendered beneath it.
	SystemPrompt string
	// Logger receives call telemetry. Defaults to a no-op logger.
	Logger logging.Logger
}

// Client composes replies from a user message and retrieved context rows.
type Client struct {
	client   *openai.Client
	provider core.Provider
	opts     Options
}

// New creates a completion client for the provider named by the credentials.
// The engine performs no retries of its own, so SDK-level retries are
// disabled to keep one exchange at exactly one upstream call.
func New(creds core.ProviderCredentials, optFns ...func(o *Options)) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	opts := Options{
		Model:               creds.Provider.DefaultChatModel(),
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
		SystemPrompt:        defaultSystemPrompt,
		Logger:              logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = creds.Provider.CompletionBaseURL()
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(creds.APIKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(reqOpts...)
	return &Client{client: &client, provider: creds.Provider, opts: opts}, nil
}

// NewFromClient creates a completion client from an existing OpenAI client.
func NewFromClient(client *openai.Client, provider core.Provider, optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:               provider.DefaultChatModel(),
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
		SystemPrompt:        defaultSystemPrompt,
		Logger:              logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Client{client: client, provider: provider, opts: opts}
}

// Complete composes a reply to the query grounded in the retrieved rows.
func (c *Client) Complete(ctx context.Context, query string, contextRows []store.Object) (string, error) {
	return c.chat(ctx, c.systemText(c.opts.SystemPrompt, contextRows), query)
}

// CompleteGrounded composes a reply to a raw transport message using a
// caller-supplied grounding prompt. An empty prompt falls back to the
// configured system prompt.
func (c *Client) CompleteGrounded(ctx context.Context, prompt, inbound string, contextRows []store.Object) (string, error) {
	if prompt == "" {
		prompt = c.opts.SystemPrompt
	}
	return c.chat(ctx, c.systemText(prompt, contextRows), inbound)
}

func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	start := time.Now()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model:               c.opts.Model,
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxCompletionTokens),
	})
	if err != nil {
		c.opts.Logger.Error("Completion call failed", "provider", string(c.provider), "model", c.opts.Model, "error", err.Error())
		return "", core.Wrap(core.KindGeneration, err, "completion call")
	}

	if len(resp.Choices) == 0 {
		return "", core.NewError(core.KindGeneration, "completion returned no choices")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", core.NewError(core.KindGeneration, "completion returned empty content")
	}

	c.opts.Logger.Debug("Completion call completed",
		"provider", string(c.provider),
		"model", c.opts.Model,
		"duration", time.Since(start).String(),
	)

	return content, nil
}

// systemText renders the system prompt with the retrieved rows beneath it.
func (c *Client) systemText(prompt string, contextRows []store.Object) string {
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\n")
	b.WriteString(renderContext(contextRows))
	return b.String()
}

// renderContext turns retrieved rows into prompt text. Dialogue rows render
// as "role: content" lines; rows without a content property fall back to the
// author field so channel payloads stay readable.
func renderContext(rows []store.Object) string {
	if len(rows) == 0 {
		return "No prior context was retrieved."
	}

	var b strings.Builder
	b.WriteString("Retrieved context:")

	for _, row := range rows {
		content, _ := row.Properties["content"].(string)
		if content == "" {
			continue
		}

		speaker, _ := row.Properties["role"].(string)
		if speaker == "" {
			speaker, _ = row.Properties["author"].(string)
		}

		b.WriteString("\n- ")
		if speaker != "" {
			b.WriteString(speaker)
			b.WriteString(": ")
		}
		b.WriteString(content)
	}

	return b.String()
}

// IssueText flattens a failed completion call into the human-readable text
// used as the reply body. Provider validation errors arrive as a `detail`
// array in the response body; those issues are joined into one line. Plain
// API errors fall back to the error body message.
func IssueText(err error) string {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		if msg := renderIssues(apierr.RawJSON()); msg != "" {
			return fmt.Sprintf("completion failed (%d): %s", apierr.StatusCode, msg)
		}
		if apierr.Message != "" {
			return fmt.Sprintf("completion failed (%d): %s", apierr.StatusCode, apierr.Message)
		}
		return fmt.Sprintf("completion failed (%d)", apierr.StatusCode)
	}

	return fmt.Sprintf("completion failed: %s", core.Render(err))
}

// renderIssues extracts issue text from a raw error body. Handles the
// FastAPI-style `detail` array Mistral returns for invalid requests and the
// `error.message` object OpenAI returns.
func renderIssues(raw string) string {
	if raw == "" {
		return ""
	}

	if detail := gjson.Get(raw, "detail"); detail.Exists() {
		if !detail.IsArray() {
			return detail.String()
		}

		var parts []string
		detail.ForEach(func(_, item gjson.Result) bool {
			msg := item.Get("msg").String()
			if msg == "" {
				msg = item.String()
			}
			if loc := item.Get("loc"); loc.IsArray() {
				var path []string
				loc.ForEach(func(_, seg gjson.Result) bool {
					path = append(path, seg.String())
					return true
				})
				msg = strings.Join(path, ".") + ": " + msg
			}
			parts = append(parts, msg)
			return true
		})

		return strings.Join(parts, "; ")
	}

	if msg := gjson.Get(raw, "error.message"); msg.Exists() {
		return msg.String()
	}

	if msg := gjson.Get(raw, "message"); msg.Exists() {
		return msg.String()
	}

	return ""
}
