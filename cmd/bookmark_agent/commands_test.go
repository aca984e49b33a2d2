package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/bookmark-organizer/internal/bookmarks"
	"github.com/jonathan/bookmark-organizer/internal/config"
	"github.com/jonathan/bookmark-organizer/internal/llm"
	"github.com/jonathan/bookmark-organizer/internal/types"
)

func TestOrganizeCommand_WritesJSONAndHTML(t *testing.T) {
	dir := testEnv(t)
	client := &echoClient{category: "Programming"}
	withFakeLLM(t, client, nil)

	input := filepath.Join(dir, "export.html")
	require.NoError(t, os.WriteFile(input, []byte(sampleExport), 0644))
	jsonOut := filepath.Join(dir, "out", "organized.json")
	htmlOut := filepath.Join(dir, "out", "organized.html")

	stdout, err := executeCommand(t, "organize", "--in", input, "--out", jsonOut, "--html", htmlOut)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Batch 1/1 organized (3 bookmarks so far)")
	assert.Contains(t, stdout, "Programming (3)")
	assert.Equal(t, 1, client.calls)

	content, err := os.ReadFile(jsonOut)
	require.NoError(t, err)
	var organized []types.OrganizedBookmark
	require.NoError(t, json.Unmarshal(content, &organized))
	require.Len(t, organized, 3)
	assert.Equal(t, "https://go.dev/doc", organized[0].URL)
	assert.Equal(t, "Programming", organized[0].Category)
	assert.Equal(t, "AAAA", organized[1].IconData)

	html, err := os.ReadFile(htmlOut)
	require.NoError(t, err)
	reparsed, err := bookmarks.Parse(html)
	require.NoError(t, err)
	assert.Len(t, reparsed, 3)
}

func TestOrganizeCommand_StdoutOutput(t *testing.T) {
	dir := testEnv(t)
	withFakeLLM(t, &echoClient{category: "Reading"}, nil)

	input := filepath.Join(dir, "export.html")
	require.NoError(t, os.WriteFile(input, []byte(sampleExport), 0644))

	stdout, err := executeCommand(t, "organize", "--in", input, "--out", "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"category": "Reading"`)
}

func TestOrganizeCommand_SmallBatches(t *testing.T) {
	dir := testEnv(t)
	t.Setenv("BOOKMARKS_CHUNK_SIZE", "1")
	client := &echoClient{category: "Misc"}
	withFakeLLM(t, client, nil)

	input := filepath.Join(dir, "export.html")
	require.NoError(t, os.WriteFile(input, []byte(sampleExport), 0644))

	stdout, err := executeCommand(t, "organize", "--in", input, "--out", filepath.Join(dir, "o.json"))
	require.NoError(t, err)
	assert.Equal(t, 3, client.calls)
	assert.Contains(t, stdout, "Batch 3/3 organized (3 bookmarks so far)")
}

func TestOrganizeCommand_ClassifierFailure(t *testing.T) {
	dir := testEnv(t)
	withFakeLLM(t, &echoClient{err: errors.New("quota exceeded")}, nil)

	input := filepath.Join(dir, "export.html")
	require.NoError(t, os.WriteFile(input, []byte(sampleExport), 0644))
	output := filepath.Join(dir, "o.json")

	_, err := executeCommand(t, "organize", "--in", input, "--out", output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "no partial output is written")
}

func TestOrganizeCommand_PlotSkippedForSmallLists(t *testing.T) {
	dir := testEnv(t)
	embedder := embedFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{float32(i), 1}
		}
		return out, nil
	})
	withFakeLLM(t, &echoClient{category: "Misc"}, embedder)

	input := filepath.Join(dir, "export.html")
	require.NoError(t, os.WriteFile(input, []byte(sampleExport), 0644))
	plotOut := filepath.Join(dir, "plot.json")

	_, err := executeCommand(t, "organize", "--in", input, "--out", filepath.Join(dir, "o.json"), "--plot", plotOut)
	require.NoError(t, err)

	_, statErr := os.Stat(plotOut)
	assert.True(t, os.IsNotExist(statErr))
}

func TestOrganizeCommand_MissingAPIKey(t *testing.T) {
	dir := testEnv(t)
	t.Setenv("GEMINI_API_KEY", "")
	withFakeLLM(t, &echoClient{}, nil)

	input := filepath.Join(dir, "export.html")
	require.NoError(t, os.WriteFile(input, []byte(sampleExport), 0644))

	_, err := executeCommand(t, "organize", "--in", input, "--out", filepath.Join(dir, "o.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestOrganizeCommand_MissingInputFlag(t *testing.T) {
	testEnv(t)
	_, err := executeCommand(t, "organize")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "in" not set`)
}

func TestConvertCommand(t *testing.T) {
	dir := testEnv(t)
	withFakeLLM(t, &echoClient{}, nil)

	organized := []types.OrganizedBookmark{
		{URL: "https://go.dev", AddDate: "1", Title: "Go", Category: "Programming", Description: "Go site"},
		{URL: "https://example.com", AddDate: "2", Title: "Example"},
	}
	data, err := json.Marshal(organized)
	require.NoError(t, err)
	input := filepath.Join(dir, "organized.json")
	require.NoError(t, os.WriteFile(input, data, 0644))
	output := filepath.Join(dir, "bookmarks.html")

	stdout, err := executeCommand(t, "convert", "--in", input, "--out", output)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote 2 bookmarks")

	html, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(html), `LAST_MODIFIED="1700000000"`)
	assert.Contains(t, string(html), `<H3 ADD_DATE="1700000000">Programming</H3>`)
	assert.Contains(t, string(html), `<H3 ADD_DATE="1700000000">Uncategorized</H3>`)
}

func TestConvertCommand_InvalidJSON(t *testing.T) {
	dir := testEnv(t)
	input := filepath.Join(dir, "organized.json")
	require.NoError(t, os.WriteFile(input, []byte("{not json"), 0644))

	_, err := executeCommand(t, "convert", "--in", input, "--out", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal")
}

func TestLLMConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Model = "custom-lite"
	cfg.MaxOutputTokens = 1234

	lc := llmConfig(cfg)
	assert.Equal(t, "custom-lite", lc.GetModel(llm.TierLite))
	assert.Equal(t, int32(1234), lc.MaxOutputTokens)
	assert.Equal(t, llm.ProviderGemini, lc.EmbeddingProvider)

	cfg.EmbeddingProvider = "ollama"
	lc = llmConfig(cfg)
	assert.Equal(t, llm.ProviderOllama, lc.EmbeddingProvider)
	assert.Equal(t, defaultOllamaEmbeddingModel, lc.EmbeddingModel)
}

type embedFunc func(ctx context.Context, texts []string) ([][]float32, error)

func (f embedFunc) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return f(ctx, texts)
}
