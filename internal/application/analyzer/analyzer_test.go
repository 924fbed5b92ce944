package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	adapterTokenizer "github.com/jbctechsolutions/beancounter/internal/adapters/tokenizer"
	"github.com/jbctechsolutions/beancounter/internal/domain/analysis"
	domainTokenizer "github.com/jbctechsolutions/beancounter/internal/domain/tokenizer"
	"github.com/jbctechsolutions/beancounter/internal/infrastructure/logging"
	"github.com/jbctechsolutions/beancounter/internal/infrastructure/testutil"
)

// offlineAnalyzer counts with the embedded BPE vocabularies.
func offlineAnalyzer() *Analyzer {
	registry := adapterTokenizer.NewRegistry(adapterTokenizer.Options{Offline: true})
	adapter := NewAdapter(registry, WithAdapterLogger(logging.Discard()))
	return New(adapter, WithLogger(logging.Discard()))
}

// fixedAnalyzer counts every non-empty text as n tokens.
func fixedAnalyzer(n int) *Analyzer {
	src := &fakeSource{counter: testutil.StaticCounter(n)}
	return New(NewAdapter(src, WithAdapterLogger(logging.Discard())), WithLogger(logging.Discard()))
}

func TestAnalyze_HelloWorld(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "hello.txt", testutil.SampleHelloWorld)

	got := offlineAnalyzer().Analyze(context.Background(), path, domainTokenizer.Default())

	want := "File: " + path + "\n" +
		"Tokenizer: cl100k_base\n" +
		"Total tokens: 2\n" +
		"Total words: 2\n" +
		"Total characters: 11\n" +
		"Average tokens per word: 1.00\n" +
		"Average characters per token: 5.50\n"
	if got != want {
		t.Errorf("Analyze() =\n%s\nwant\n%s", got, want)
	}
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		setup    func() string
		analyzer *Analyzer
		contains []string
		exact    func(path string) string
	}{
		{
			name:     "empty file",
			setup:    func() string { return testutil.WriteFile(t, dir, "empty.txt", "") },
			analyzer: fixedAnalyzer(99),
			contains: []string{
				"Total tokens: 0\n",
				"Total words: 0\n",
				"Total characters: 0\n",
				"Average tokens per word: 0.00\n",
				"Average characters per token: 0.00\n",
			},
		},
		{
			name:     "whitespace only",
			setup:    func() string { return testutil.WriteFile(t, dir, "blank.txt", " \n\t ") },
			analyzer: fixedAnalyzer(3),
			contains: []string{
				"Total tokens: 3\n",
				"Total words: 0\n",
				"Total characters: 4\n",
				"Average tokens per word: 0.00\n",
				"Average characters per token: 1.33\n",
			},
		},
		{
			name:     "windows line endings",
			setup:    func() string { return testutil.WriteFile(t, dir, "crlf.txt", "hello\r\nworld\r\n") },
			analyzer: fixedAnalyzer(2),
			contains: []string{"Total words: 2\n", "Total characters: 12\n"},
		},
		{
			name:     "old mac line endings",
			setup:    func() string { return testutil.WriteFile(t, dir, "cr.txt", "a\rb\r\r") },
			analyzer: fixedAnalyzer(2),
			contains: []string{"Total words: 2\n", "Total characters: 5\n"},
		},
		{
			name:     "missing file",
			setup:    func() string { return filepath.Join(dir, "nope.txt") },
			analyzer: fixedAnalyzer(1),
			exact:    analysis.NotFoundReport,
		},
		{
			name: "invalid utf-8",
			setup: func() string {
				p := filepath.Join(dir, "binary.bin")
				if err := os.WriteFile(p, []byte{0xff, 0xfe, 'a'}, 0644); err != nil {
					t.Fatal(err)
				}
				return p
			},
			analyzer: fixedAnalyzer(1),
			contains: []string{"An error occurred: ", "not valid UTF-8"},
		},
		{
			name:     "directory",
			setup:    func() string { return dir },
			analyzer: fixedAnalyzer(1),
			contains: []string{"An error occurred: "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup()
			got := tt.analyzer.Analyze(context.Background(), path, domainTokenizer.Default())

			if tt.exact != nil && got != tt.exact(path) {
				t.Errorf("Analyze() = %q, want %q", got, tt.exact(path))
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Analyze() = %q, missing %q", got, want)
				}
			}
			if !strings.HasSuffix(got, "\n") {
				t.Errorf("section %q is not newline-terminated", got)
			}
		})
	}
}

func TestAnalyze_FallbackKeepsSelectedTokenizer(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "notes.txt", "héllo")
	src := &fakeSource{counter: testutil.FailingCounter()}
	a := New(NewAdapter(src, WithAdapterLogger(logging.Discard())), WithLogger(logging.Discard()))

	spec, _ := domainTokenizer.ByNumber(7)
	got := a.Analyze(context.Background(), path, spec)

	for _, want := range []string{"Tokenizer: meta-llama/Llama-2-7b-hf\n", "Total tokens: 5\n", "Total characters: 5\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("Analyze() = %q, missing %q", got, want)
		}
	}
}

func TestAnalyze_UnsupportedVocabularyFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "hello.txt", testutil.SampleHelloWorld)

	documents := map[string]string{
		"unigram model":          `{"model": {"type": "Unigram", "vocab": [["hello", -1.0]]}}`,
		"precompiled normalizer": `{"normalizer": {"type": "Precompiled"}, "model": {"type": "WordLevel", "vocab": {"hello": 0}}}`,
		"bpe without vocab":      `{"model": {"type": "BPE", "merges": []}}`,
	}

	spec, _ := domainTokenizer.ByIdentifier("bigscience/bloom")

	for name, document := range documents {
		t.Run(name, func(t *testing.T) {
			vocabulary := testutil.WriteFile(t, t.TempDir(), "tokenizer.json", document)
			registry := adapterTokenizer.NewRegistry(adapterTokenizer.Options{
				VocabularyFiles: map[string]string{spec.Identifier: vocabulary},
			})
			logger, logs := captureLogger()
			a := New(NewAdapter(registry, WithAdapterLogger(logger)), WithLogger(logging.Discard()))

			got := a.Analyze(context.Background(), path, spec)

			testutil.AssertContains(t, got,
				"Tokenizer: bigscience/bloom\n",
				"Total tokens: 11\n",
				"Total characters: 11\n",
				"Average characters per token: 1.00\n",
			)
			testutil.AssertContains(t, logs.String(), "level=WARN", "stage=load")
		})
	}
}

func TestAnalyzeAll(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteFile(t, dir, "a.txt", "alpha beta")
	missing := filepath.Join(dir, "missing.txt")
	b := testutil.WriteFile(t, dir, "b.txt", "gamma")

	an := fixedAnalyzer(2)
	spec := domainTokenizer.Default()
	got := an.AnalyzeAll(context.Background(), []string{a, missing, b}, spec)

	want := an.Analyze(context.Background(), a, spec) +
		analysis.Separator +
		analysis.NotFoundReport(missing) +
		analysis.Separator +
		an.Analyze(context.Background(), b, spec)
	if got != want {
		t.Errorf("AnalyzeAll() =\n%q\nwant\n%q", got, want)
	}

	if n := strings.Count(got, strings.Repeat("-", analysis.SeparatorWidth)); n != 2 {
		t.Errorf("separator count = %d, want 2", n)
	}
	if strings.Index(got, "a.txt") > strings.Index(got, "b.txt") {
		t.Error("sections are out of input order")
	}
}

func TestAnalyzeAll_SingleFileHasNoSeparator(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "only.txt", "x")
	got := fixedAnalyzer(1).AnalyzeAll(context.Background(), []string{path}, domainTokenizer.Default())
	if strings.Contains(got, analysis.Separator) {
		t.Errorf("single section should not contain a separator: %q", got)
	}
}

func TestSaveReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	report := "File: a.txt\nTokenizer: gpt2\n\n" + strings.Repeat("-", 50) + "\n\nError: File 'b' not found.\n"

	// Pre-existing content is replaced.
	testutil.WriteFile(t, dir, "report.txt", strings.Repeat("stale ", 100))

	testutil.AssertNoError(t, SaveReport(path, report))

	data, err := os.ReadFile(path)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, string(data), report)

	info, err := os.Stat(path)
	testutil.AssertNoError(t, err)
	if info.Mode().Perm() != ReportFileMode {
		t.Errorf("mode = %v, want %v", info.Mode().Perm(), ReportFileMode)
	}
}

func TestSaveReport_Errors(t *testing.T) {
	testutil.AssertError(t, SaveReport("", "x"))
	testutil.AssertError(t, SaveReport(filepath.Join(t.TempDir(), "no", "such", "dir.txt"), "x"))
}
