package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"

	"github.com/chronoboard/backend/pkg/logger"
)

// ErrSummarization is returned when the generation call errors, times out,
// or comes back with no usable text.
var ErrSummarization = errors.New("summarization failed")

const promptTemplate = "You are an assistant that helps summarize project documents. " +
	"Given the following content, generate a concise summary of 3-5 sentences " +
	"that clearly describes what the document is about. Keep it informative, " +
	"skip fluff, and highlight key takeaways or topics if any.\n\n" +
	"Document Content:\n%s\n\nSummary:"

type Config struct {
	Model         string
	MaxTokens     int32
	Temperature   float32
	MaxInputChars int
	Timeout       time.Duration
}

// Summarizer produces short natural-language summaries through a Gemini
// generative model. The client is injected so tests can point it at a fake
// endpoint.
type Summarizer struct {
	client *genai.Client
	cfg    Config
	logger logger.Logger
}

func NewSummarizer(client *genai.Client, cfg Config, log logger.Logger) *Summarizer {
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 300
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = 16000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Summarizer{client: client, cfg: cfg, logger: log}
}

// Summarize requests a bounded completion for the given text. One call, no
// retries; the caller decides what a failure means for the document.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty input text", ErrSummarization)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	model := s.client.GenerativeModel(s.cfg.Model)
	model.SetTemperature(s.cfg.Temperature)
	model.SetMaxOutputTokens(s.cfg.MaxTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(s.Prompt(text)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummarization, err)
	}

	summary := responseText(resp)
	if summary == "" {
		return "", fmt.Errorf("%w: model returned no content", ErrSummarization)
	}

	s.logger.Debug("summary generated",
		logger.Int("input_chars", len(text)),
		logger.Int("summary_chars", len(summary)),
	)
	return summary, nil
}

// Prompt embeds the input in the fixed instruction template, truncated to
// MaxInputChars so the request stays bounded regardless of document size.
func (s *Summarizer) Prompt(text string) string {
	if len(text) > s.cfg.MaxInputChars {
		text = text[:s.cfg.MaxInputChars]
	}
	return fmt.Sprintf(promptTemplate, text)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}
