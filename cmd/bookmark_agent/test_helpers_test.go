package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/jonathan/bookmark-organizer/internal/llm"
)

var promptURLPattern = regexp.MustCompile(`"url": "([^"]+)"`)

// echoClient files every bookmark of a prompt under one category.
type echoClient struct {
	category string
	err      error
	calls    int
}

func (c *echoClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier, opts ...llm.GenerateOption) (string, error) {
	return c.GenerateJSON(ctx, prompt, tier, opts...)
}

func (c *echoClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier, _ ...llm.GenerateOption) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	var items []string
	for _, m := range promptURLPattern.FindAllStringSubmatch(prompt, -1) {
		if m[1] == "original url" {
			continue
		}
		items = append(items, fmt.Sprintf(`{"url": %q, "category": %q, "description": "About %s"}`, m[1], c.category, m[1]))
	}
	return "[" + strings.Join(items, ",") + "]", nil
}

func (c *echoClient) GetModel(llm.ModelTier) string { return "fake-model" }

func (c *echoClient) Close() error { return nil }

// withFakeLLM swaps the client factories for the duration of a test.
func withFakeLLM(t *testing.T, client llm.Client, embedder llm.Embedder) {
	t.Helper()
	origClient, origEmbedder, origNow := newLLMClient, newEmbedder, nowFunc
	newLLMClient = func(context.Context, *llm.Config, string) (llm.Client, error) {
		return client, nil
	}
	newEmbedder = func(context.Context, *llm.Config, string) (llm.Embedder, error) {
		if embedder == nil {
			return nil, fmt.Errorf("no embedder configured")
		}
		return embedder, nil
	}
	nowFunc = func() time.Time { return time.Unix(1700000000, 0) }
	t.Cleanup(func() {
		newLLMClient, newEmbedder, nowFunc = origClient, origEmbedder, origNow
	})
}

// testEnv points the configuration at a temporary log file and sets an API key.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("BOOKMARKS_LOG_FILE", filepath.Join(dir, "test.log"))
	return dir
}

// executeCommand runs the root command in-process and returns its stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(t.Context())
	return out.String(), err
}

// resetFlags restores every flag to its default; pflag keeps values and the
// Changed mark between Execute calls.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}
}

const sampleExport = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><A HREF="https://go.dev/doc" ADD_DATE="1700000001">Go docs</A>
    <DT><A HREF="https://pkg.go.dev" ADD_DATE="1700000002" ICON="data:image/png;base64,AAAA">Packages</A>
    <DT><A HREF="https://news.ycombinator.com" ADD_DATE="1700000003">HN</A>
</DL><p>
`
