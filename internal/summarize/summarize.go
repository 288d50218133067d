// Package summarize produces short job-description summaries.
package summarize

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shortlist-group/jobscout/pkg/anthropic"
)

// Summarizer condenses a job description into a short summary.
type Summarizer interface {
	Summarize(ctx context.Context, description string) string
}

// Extractive is the deterministic local fallback: the first N sentences of
// the description.
type Extractive struct {
	MaxSentences int
}

// Summarize returns the first MaxSentences sentences, whitespace-collapsed.
func (e Extractive) Summarize(_ context.Context, description string) string {
	n := e.MaxSentences
	if n <= 0 {
		n = 3
	}
	text := strings.Join(strings.Fields(description), " ")
	if text == "" {
		return ""
	}

	var sentences []string
	start := 0
	for i := 0; i < len(text) && len(sentences) < n; i++ {
		switch text[i] {
		case '.', '!', '?':
			sentence := strings.TrimSpace(text[start : i+1])
			if sentence != "" {
				sentences = append(sentences, sentence)
			}
			start = i + 1
		}
	}
	if len(sentences) < n && start < len(text) {
		if tail := strings.TrimSpace(text[start:]); tail != "" {
			sentences = append(sentences, tail)
		}
	}
	return strings.Join(sentences, " ")
}

const hostedPrompt = "Summarize this job description in two sentences. State the role focus and the most concrete responsibilities. No preamble."

// Hosted summarizes via the Anthropic API and degrades to the extractive
// fallback on any failure, timeout, or missing configuration.
type Hosted struct {
	AI       anthropic.Client
	Model    string
	Timeout  time.Duration
	Fallback Extractive
}

// Summarize asks the hosted model for a summary. Any error path returns the
// extractive fallback instead — summaries are best-effort and must never
// fail a pipeline run.
func (h Hosted) Summarize(ctx context.Context, description string) string {
	if h.AI == nil || strings.TrimSpace(description) == "" {
		return h.Fallback.Summarize(ctx, description)
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	input := description
	if len(input) > 6000 {
		input = input[:6000]
	}

	resp, err := h.AI.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     h.Model,
		MaxTokens: 256,
		System:    hostedPrompt,
		Messages:  []anthropic.Message{{Role: "user", Content: input}},
	})
	if err != nil {
		zap.L().Debug("summarize: hosted call failed, using extractive fallback", zap.Error(err))
		return h.Fallback.Summarize(ctx, description)
	}

	summary := strings.TrimSpace(resp.Text())
	if summary == "" {
		return h.Fallback.Summarize(ctx, description)
	}
	return summary
}
