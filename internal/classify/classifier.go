// Package classify asks an LLM to assign a category and description to each bookmark of a batch.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"

	"github.com/jonathan/bookmark-organizer/internal/llm"
	"github.com/jonathan/bookmark-organizer/internal/prompts"
	"github.com/jonathan/bookmark-organizer/internal/schemas"
	"github.com/jonathan/bookmark-organizer/internal/types"
)

// replySchema is the structured-output contract sent to providers that support it.
var replySchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"url":         {Type: genai.TypeString},
			"add_date":    {Type: genai.TypeString},
			"title":       {Type: genai.TypeString},
			"category":    {Type: genai.TypeString},
			"description": {Type: genai.TypeString},
		},
		Required: []string{"url", "category", "description"},
	},
}

// Options configures a Classifier.
type Options struct {
	Tier            llm.ModelTier
	MaxOutputTokens int32
	Logger          *zap.Logger
}

// Classifier turns one batch of bookmarks into organized bookmarks with one LLM call.
type Classifier struct {
	client          llm.Client
	tier            llm.ModelTier
	maxOutputTokens int32
	logger          *zap.Logger
}

// New creates a Classifier over client.
func New(client llm.Client, opts Options) *Classifier {
	if opts.Tier == "" {
		opts.Tier = llm.TierLite
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = llm.DefaultMaxOutputTokens
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Classifier{
		client:          client,
		tier:            opts.Tier,
		maxOutputTokens: opts.MaxOutputTokens,
		logger:          opts.Logger,
	}
}

type replyItem struct {
	URL         string `json:"url"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// ClassifyBatch returns exactly len(batch) organized bookmarks in batch order.
// index is only used for error reporting and logs.
func (c *Classifier) ClassifyBatch(ctx context.Context, index int, batch []types.Bookmark) ([]types.OrganizedBookmark, error) {
	if len(batch) == 0 {
		return []types.OrganizedBookmark{}, nil
	}

	prompt, err := BuildPrompt(batch)
	if err != nil {
		return nil, err
	}

	log := c.logger.With(zap.Int("batch", index), zap.Int("items", len(batch)))
	log.Info("sending bookmarks to classifier", zap.String("model", c.client.GetModel(c.tier)))

	reply, err := c.client.GenerateJSON(ctx, prompt, c.tier,
		llm.WithMaxOutputTokens(c.maxOutputTokens),
		llm.WithResponseSchema(replySchema),
	)
	if err != nil {
		return nil, &ExternalServiceError{Batch: index, Message: "classification request failed", Cause: err}
	}

	items, err := parseReply(index, reply, len(batch))
	if err != nil {
		log.Debug("unusable classifier reply", zap.String("reply", reply))
		return nil, err
	}

	items, reordered, mismatched := correlate(batch, items)
	if reordered {
		log.Warn("classifier reordered the batch; restored submission order")
	}
	if mismatched > 0 {
		log.Debug("reply urls do not match the batch", zap.Int("mismatched", mismatched), zap.String("reply", reply))
		return nil, &MalformedResponseError{
			Batch:    index,
			Message:  fmt.Sprintf("reply urls do not match the batch (%d differ)", mismatched),
			Sent:     len(batch),
			Received: len(items),
		}
	}

	result := make([]types.OrganizedBookmark, len(batch))
	for i, b := range batch {
		result[i] = b.Organize(strings.TrimSpace(items[i].Category), strings.TrimSpace(items[i].Description))
	}

	log.Info("organized bookmarks")
	return result, nil
}

// BuildPrompt renders the classification prompt for a batch. Icon payloads are never included.
func BuildPrompt(batch []types.Bookmark) (string, error) {
	inputs := make([]types.ClassifierInput, len(batch))
	for i, b := range batch {
		inputs[i] = b.ForClassifier()
	}

	data, err := json.MarshalIndent(inputs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode batch: %w", err)
	}

	template := prompts.MustGet("bookmarks.json", "organize-bookmarks")
	return prompts.Format(template, map[string]string{
		"Bookmarks": string(data),
		"Count":     strconv.Itoa(len(batch)),
	}), nil
}

func parseReply(index int, reply string, sent int) ([]replyItem, error) {
	arrayText, ok := llm.ExtractJSONArray(llm.CleanJSONBlock(reply))
	if !ok {
		return nil, &MalformedResponseError{Batch: index, Message: "reply contains no JSON array", Sent: sent}
	}

	if err := schemas.Validate(schemas.OrganizedBookmarks, []byte(arrayText)); err != nil {
		return nil, &MalformedResponseError{Batch: index, Message: "reply does not match the expected shape", Sent: sent, Cause: err}
	}

	var items []replyItem
	if err := json.Unmarshal([]byte(arrayText), &items); err != nil {
		return nil, &MalformedResponseError{Batch: index, Message: "reply is not valid JSON", Sent: sent, Cause: err}
	}

	if len(items) != sent {
		return nil, &MalformedResponseError{
			Batch:    index,
			Message:  "item count mismatch",
			Sent:     sent,
			Received: len(items),
		}
	}
	return items, nil
}

// correlate aligns reply items with the submitted batch. Items are positional;
// when the reply is a permutation of the batch by URL it is put back in batch
// order. mismatched counts positions whose URL differs when no alignment exists.
func correlate(batch []types.Bookmark, items []replyItem) (aligned []replyItem, reordered bool, mismatched int) {
	mismatched = countMismatches(batch, items)
	if mismatched == 0 {
		return items, false, 0
	}

	positions := make(map[string][]int, len(items))
	for i, item := range items {
		key := normalizeURL(item.URL)
		positions[key] = append(positions[key], i)
	}

	aligned = make([]replyItem, len(batch))
	for i, b := range batch {
		key := normalizeURL(b.URL)
		queue := positions[key]
		if len(queue) == 0 {
			return items, false, mismatched
		}
		aligned[i] = items[queue[0]]
		positions[key] = queue[1:]
	}
	return aligned, true, 0
}

func countMismatches(batch []types.Bookmark, items []replyItem) int {
	n := 0
	for i, b := range batch {
		if normalizeURL(b.URL) != normalizeURL(items[i].URL) {
			n++
		}
	}
	return n
}

// normalizeURL ignores the rewrites models commonly make: scheme, host case
// and a trailing slash.
func normalizeURL(u string) string {
	u = strings.TrimSpace(u)
	lower := strings.ToLower(u)
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(lower, scheme) {
			u = u[len(scheme):]
			break
		}
	}
	host, path, _ := strings.Cut(u, "/")
	host = strings.ToLower(host)
	if path = strings.TrimRight(path, "/"); path == "" {
		return host
	}
	return host + "/" + path
}
