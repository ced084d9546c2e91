package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidegen/internal/adapters/secondary/config"
	"github.com/fredcamaral/slidegen/internal/adapters/secondary/export"
	"github.com/fredcamaral/slidegen/internal/domain/entities"
	"github.com/fredcamaral/slidegen/internal/test/builders"
)

const sampleText = `Title: Intro
Style: title
• Welcome
• Let's begin

Title: Market Overview
Style: data
Data: chart
• Market size: $50B by 2025
• 45% YoY growth rate`

type deckJSON struct {
	Source string `json:"source"`
	Prompt string `json:"prompt"`
	Slides []struct {
		Title    string   `json:"title"`
		Content  []string `json:"content"`
		Style    string   `json:"style"`
		DataType string   `json:"dataType"`
	} `json:"slides"`
}

// execute runs the CLI with an isolated home directory
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--no-color"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleText), 0600))
	return path
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "version "+Version)
	assert.Contains(t, out, "Build Date: "+BuildDate)
}

func TestParseCommand(t *testing.T) {
	t.Run("pretty output", func(t *testing.T) {
		out, _, err := execute(t, "", "parse", writeSample(t))
		require.NoError(t, err)

		assert.Contains(t, out, "1. Intro")
		assert.Contains(t, out, "[Title]")
		assert.Contains(t, out, "2. Market Overview")
		assert.Contains(t, out, "[Data (chart)]")
		assert.Contains(t, out, "• 45% YoY growth rate")
		assert.Contains(t, out, "--- 2 slides ---")
	})

	t.Run("json from stdin", func(t *testing.T) {
		out, _, err := execute(t, sampleText, "parse", "-", "--json")
		require.NoError(t, err)

		var deck deckJSON
		require.NoError(t, json.Unmarshal([]byte(out), &deck))
		require.Len(t, deck.Slides, 2)
		assert.Equal(t, string(entities.SourceText), deck.Source)
		assert.Equal(t, "data", deck.Slides[1].Style)
		assert.Equal(t, "chart", deck.Slides[1].DataType)
	})

	t.Run("explain shows derivation", func(t *testing.T) {
		out, _, err := execute(t, "", "parse", writeSample(t), "--explain")
		require.NoError(t, err)

		assert.Contains(t, out, "style: marker on line 2")
		assert.Contains(t, out, "data: marker on line 3")
		assert.Contains(t, out, "content: bullets")
	})

	t.Run("explain reports fallback", func(t *testing.T) {
		out, _, err := execute(t, "Just one line of prose", "parse", "-", "--explain")
		require.NoError(t, err)

		assert.Contains(t, out, "whole document parsed as one slide")
		assert.Contains(t, out, "style: inferred")
	})

	t.Run("blank input has no content", func(t *testing.T) {
		_, _, err := execute(t, "  \n\t\n", "parse", "-")
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrNoContent)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := execute(t, "", "parse", filepath.Join(t.TempDir(), "nope.txt"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "accessing input file")
	})

	t.Run("requires one argument", func(t *testing.T) {
		_, _, err := execute(t, "", "parse")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "accepts 1 arg(s)")
	})
}

func TestExportCommand(t *testing.T) {
	t.Run("markdown to stdout via alias", func(t *testing.T) {
		out, _, err := execute(t, "", "export", writeSample(t), "--format", "md", "--output", "-")
		require.NoError(t, err)

		assert.Contains(t, out, "## Intro")
		assert.Contains(t, out, "## Market Overview")
	})

	t.Run("pptx to explicit file", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "out", "deck.pptx")

		out, _, err := execute(t, "", "export", writeSample(t), "--format", "pptx", "--output", target)
		require.NoError(t, err)
		assert.Contains(t, out, "Wrote "+target)
		assert.Contains(t, out, "(2 slides, pptx)")

		info, err := os.Stat(target)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})

	t.Run("output dir names the file after the deck", func(t *testing.T) {
		dir := t.TempDir()

		_, _, err := execute(t, "", "export", writeSample(t), "--format", "json", "--output-dir", dir)
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, "intro.json"))
		require.NoError(t, err)
		var deck deckJSON
		require.NoError(t, json.Unmarshal(data, &deck))
		assert.Len(t, deck.Slides, 2)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := execute(t, "", "export", writeSample(t), "--format", "docx")
		require.Error(t, err)

		var exportErr *export.ExportError
		require.ErrorAs(t, err, &exportErr)
		assert.Equal(t, "UNSUPPORTED_FORMAT", exportErr.Code)
	})
}

func TestGenerateCommand(t *testing.T) {
	t.Run("mock provider to stdout", func(t *testing.T) {
		out, _, err := execute(t, "", "generate", "Quarterly", "review",
			"--provider", "mock", "--format", "json", "--output", "-")
		require.NoError(t, err)

		var deck deckJSON
		require.NoError(t, json.Unmarshal([]byte(out), &deck))
		require.NotEmpty(t, deck.Slides)
		assert.Equal(t, "Quarterly review", deck.Prompt)
		assert.Equal(t, string(entities.SourceGenerated), deck.Source)
		assert.Equal(t, "Quarterly review", deck.Slides[0].Title)
		assert.Equal(t, "section", deck.Slides[0].Style)
	})

	t.Run("preview goes to stderr", func(t *testing.T) {
		_, stderr, err := execute(t, "", "generate", "Launch plan",
			"--provider", "mock", "--format", "markdown", "--output", "-", "--preview")
		require.NoError(t, err)
		assert.Contains(t, stderr, "1. Launch plan")
	})

	t.Run("missing api key", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")

		_, _, err := execute(t, "", "generate", "Anything", "--provider", "anthropic", "--output", "-")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
	})

	t.Run("unknown provider fails validation", func(t *testing.T) {
		_, _, err := execute(t, "", "generate", "Anything", "--provider", "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider")
	})
}

func TestExtractCommand(t *testing.T) {
	pptxPath := filepath.Join(t.TempDir(), "deck.pptx")
	var buf bytes.Buffer
	require.NoError(t, export.NewService(export.Options{}).Export(context.Background(), builders.AllStylesDeck(), "pptx", &buf))
	require.NoError(t, os.WriteFile(pptxPath, buf.Bytes(), 0600))

	t.Run("pretty output", func(t *testing.T) {
		out, _, err := execute(t, "", "extract", pptxPath)
		require.NoError(t, err)

		assert.Contains(t, out, "Slide 1")
		assert.Contains(t, out, "Transforming Ideas")
		assert.Contains(t, out, "Slide 5")
	})

	t.Run("json output", func(t *testing.T) {
		out, _, err := execute(t, "", "extract", pptxPath, "--json")
		require.NoError(t, err)

		var slides []struct {
			Number int    `json:"number"`
			Text   string `json:"text"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &slides))
		require.Len(t, slides, 5)
		assert.Equal(t, 1, slides[0].Number)
	})

	t.Run("rejects other extensions", func(t *testing.T) {
		_, _, err := execute(t, "", "extract", "notes.docx")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected a .pptx file")
	})
}

func TestPromptsCommand(t *testing.T) {
	t.Run("built-in catalog", func(t *testing.T) {
		out, _, err := execute(t, "", "prompts")
		require.NoError(t, err)
		assert.Contains(t, out, "Digital Marketing")
		assert.Contains(t, out, "Product Launch")
	})

	t.Run("init then list from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prompts.yaml")

		out, _, err := execute(t, "", "prompts", "--init", path)
		require.NoError(t, err)
		assert.Contains(t, out, "Wrote prompt catalog to "+path)

		out, _, err = execute(t, "", "prompts", "--prompts", path, "--json")
		require.NoError(t, err)

		var prompts []entities.PromptTemplate
		require.NoError(t, json.Unmarshal([]byte(out), &prompts))
		assert.Len(t, prompts, len(entities.DefaultPrompts()))
	})

	t.Run("init refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prompts.yaml")
		require.NoError(t, os.WriteFile(path, []byte("prompts: []\n"), 0600))

		_, _, err := execute(t, "", "prompts", "--init", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")

		_, _, err = execute(t, "", "prompts", "--init", path, "--force")
		require.NoError(t, err)
	})
}

func TestCollectFlags(t *testing.T) {
	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{Use: "test"}
		cmd.Flags().String("format", "", "")
		cmd.Flags().Int("port", 0, "")
		cmd.Flags().Bool("verbose", false, "")
		cmd.Flags().String("host", "", "")
		return cmd
	}

	t.Run("only changed flags", func(t *testing.T) {
		cmd := newCmd()
		require.NoError(t, cmd.Flags().Parse([]string{"--port", "8080"}))

		flags, err := collectFlags(cmd)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"port": 8080}, flags)
	})

	t.Run("format aliases are normalized", func(t *testing.T) {
		cmd := newCmd()
		require.NoError(t, cmd.Flags().Parse([]string{"--format", "PPT", "--verbose", "--host", "0.0.0.0"}))

		flags, err := collectFlags(cmd)
		require.NoError(t, err)
		assert.Equal(t, "pptx", flags["format"])
		assert.Equal(t, true, flags["verbose"])
		assert.Equal(t, "0.0.0.0", flags["host"])
	})

	t.Run("bad format", func(t *testing.T) {
		cmd := newCmd()
		require.NoError(t, cmd.Flags().Parse([]string{"--format", "odp"}))

		_, err := collectFlags(cmd)
		assert.Error(t, err)
	})
}

func TestConfigDir(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", "."},
		{"-", "."},
		{"deck.txt", "."},
		{filepath.Join("talks", "deck.txt"), "talks"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, configDir(tt.path))
		})
	}
}

func TestLocalConfigNextToInput(t *testing.T) {
	path := writeSample(t)
	local := "[export]\ndefault_format = \"markdown\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "slidegen.toml"), []byte(local), 0600))

	out, _, err := execute(t, "", "export", path, "--output", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "## Intro")
}

func testApp(t *testing.T) *app {
	t.Helper()
	cfg := config.GetDefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.Environment = "development"
	cfg.Generator.Provider = entities.ProviderMock
	return &app{cfg: cfg, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func getJSON(t *testing.T, url string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(url) // #nosec G107 - test server address
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestStartServing(t *testing.T) {
	t.Run("serves the API", func(t *testing.T) {
		stack, err := startServing(context.Background(), testApp(t), serveOptions{})
		require.NoError(t, err)
		defer func() { assert.NoError(t, stack.stop()) }()

		var health struct {
			Status  string `json:"status"`
			HasDeck bool   `json:"hasDeck"`
		}
		assert.Equal(t, http.StatusOK, getJSON(t, stack.url()+"/api/health", &health))
		assert.False(t, health.HasDeck)

		assert.Equal(t, http.StatusNotFound, getJSON(t, stack.url()+"/api/deck", nil))

		var metrics struct {
			HTTPRequests int64            `json:"httpRequests"`
			ExportCache  *json.RawMessage `json:"exportCache"`
		}
		assert.Equal(t, http.StatusOK, getJSON(t, stack.url()+"/api/metrics", &metrics))
		assert.GreaterOrEqual(t, metrics.HTTPRequests, int64(1))
		assert.NotNil(t, metrics.ExportCache, "serve caches export renders")
	})

	t.Run("watch loads the file as the current deck", func(t *testing.T) {
		stack, err := startServing(context.Background(), testApp(t), serveOptions{watchFile: writeSample(t)})
		require.NoError(t, err)
		defer func() { assert.NoError(t, stack.stop()) }()

		require.NotNil(t, stack.reload)
		assert.True(t, stack.reload.IsWatching())

		var deck deckJSON
		require.Equal(t, http.StatusOK, getJSON(t, stack.url()+"/api/deck", &deck))
		require.Len(t, deck.Slides, 2)
		assert.Equal(t, "Intro", deck.Slides[0].Title)
		assert.Equal(t, string(entities.SourceFile), deck.Source)
	})

	t.Run("runs without a generator", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		a := testApp(t)
		a.cfg.Generator.Provider = entities.ProviderAnthropic

		stack, err := startServing(context.Background(), a, serveOptions{})
		require.NoError(t, err)
		defer func() { assert.NoError(t, stack.stop()) }()

		body := strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`)
		resp, err := http.Post(stack.url()+"/api/generate", "application/json", body)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}
