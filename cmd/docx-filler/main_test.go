package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/a3tai/mcp-docx-filler/internal/config"
	"github.com/a3tai/mcp-docx-filler/internal/convert"
	"github.com/a3tai/mcp-docx-filler/internal/docx/docxtest"
	"github.com/a3tai/mcp-docx-filler/internal/filler"
	"github.com/a3tai/mcp-docx-filler/internal/templates"
)

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	defer func() { version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit }()
	version, buildTime, gitCommit = "1.2.3", "2024-05-01_10:30:00", "abc123"

	var buf bytes.Buffer
	printVersion(&buf)

	for _, expected := range []string{
		"MCP DOCX Filler",
		"Version: 1.2.3",
		"Build Time: 2024-05-01_10:30:00",
		"Git Commit: abc123",
		"Built with:",
	} {
		if !strings.Contains(buf.String(), expected) {
			t.Errorf("printVersion() output missing %q\nActual output:\n%s", expected, buf.String())
		}
	}
}

func TestSetupLogging(t *testing.T) {
	origOutput, origFlags := log.Writer(), log.Flags()
	defer func() {
		log.SetOutput(origOutput)
		log.SetFlags(origFlags)
	}()

	tests := []struct {
		name       string
		cfg        *config.Config
		wantOutput io.Writer
		wantFlags  int
	}{
		{"stdio quiet", &config.Config{Mode: config.ModeStdio, LogLevel: "info"}, io.Discard, log.LstdFlags},
		{"stdio debug", &config.Config{Mode: config.ModeStdio, LogLevel: "debug"}, os.Stderr, log.LstdFlags},
		{"batch quiet", &config.Config{Mode: config.ModeAuto, LogLevel: "info"}, io.Discard, log.LstdFlags},
		{"server", &config.Config{Mode: config.ModeServer, LogLevel: "info"}, nil, log.LstdFlags | log.Lshortfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log.SetOutput(os.Stderr)
			log.SetFlags(log.LstdFlags)
			setupLogging(tt.cfg)
			if tt.wantOutput != nil {
				assert.Equal(t, tt.wantOutput, log.Writer())
			}
			assert.Equal(t, tt.wantFlags, log.Flags())
		})
	}
}

type fixture struct {
	dir string
	svc *filler.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg, err := templates.NewBuilder().Add(templates.TemplateSpec{
		ID:       "DIARY",
		Name:     "Дневник практики",
		Detect:   templates.DetectSpec{Required: []string{"дневник практики"}, Threshold: 5},
		Settings: map[string]string{templates.KeyFilenameMask: "{{ФИО}}_дневник.docx"},
		Mapping:  []templates.MappingRule{{Field: "ФИО", Strategy: templates.StrategyByNumber, Number: 1}},
	}).Build()
	require.NoError(t, err)

	conv := convert.New("soffice-not-installed")
	t.Cleanup(func() { _ = conv.Close() })

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "forms"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "forms", "diary.docx"),
		docxtest.Build(docxtest.P("ДНЕВНИК ПРАКТИКИ"), docxtest.P("ФИО: ____________")), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "forms", "old.doc"), []byte("legacy"), 0o600))

	return &fixture{dir: dir, svc: filler.NewService(reg, conv, 0)}
}

func (f *fixture) workbook(t *testing.T, withMapping bool) string {
	t.Helper()
	x := excelize.NewFile()
	defer func() { _ = x.Close() }()
	require.NoError(t, x.SetSheetName("Sheet1", "data"))
	require.NoError(t, x.SetSheetRow("data", "A1", &[]any{"ФИО"}))
	require.NoError(t, x.SetSheetRow("data", "A2", &[]any{"Иванов И.И."}))
	require.NoError(t, x.SetSheetRow("data", "A3", &[]any{"Петров П.П."}))
	if withMapping {
		_, err := x.NewSheet("mapping")
		require.NoError(t, err)
		require.NoError(t, x.SetSheetRow("mapping", "A1", &[]any{
			"Field", "Method", "Number", "Anchor", "Label", "Segment", "TableIndex",
			"Row", "Col", "Target", "Occur", "Default", "Transform",
		}))
		require.NoError(t, x.SetSheetRow("mapping", "A2", &[]any{
			"ФИО", "anchor_after_colon", "", "ФИО", "", "", "", "", "", "", "1", "", "upper",
		}))
	}
	path := filepath.Join(f.dir, "master.xlsx")
	require.NoError(t, x.SaveAs(path))
	return path
}

func (f *fixture) config(mode string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Mode = mode
	cfg.Input = filepath.Join(f.dir, "forms")
	cfg.OutDir = filepath.Join(f.dir, "out")
	return cfg
}

func TestRunBatch_Detect(t *testing.T) {
	f := newFixture(t)
	var out bytes.Buffer
	require.NoError(t, runBatch(context.Background(), f.config(config.ModeDetect), f.svc, &out))

	assert.Contains(t, out.String(), "[DETECT] 'diary.docx' -> DIARY (Дневник практики), score=5")
	assert.Contains(t, out.String(), "[CONVERT-ERROR] old.doc:")
}

func TestRunBatch_Suggest(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(config.ModeSuggest)
	cfg.Input, cfg.Doc = "", filepath.Join(f.dir, "forms", "diary.docx")

	var out bytes.Buffer
	require.NoError(t, runBatch(context.Background(), cfg, f.svc, &out))
	assert.Contains(t, out.String(), "[SUGGEST] diary.docx")
	assert.Contains(t, out.String(), "ДНЕВНИК ПРАКТИКИ")
}

func TestRunBatch_AutoDryRun(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(config.ModeAuto)
	cfg.Excel = f.workbook(t, false)
	cfg.DryRun = true
	cfg.Row = 2

	var out bytes.Buffer
	require.NoError(t, runBatch(context.Background(), cfg, f.svc, &out))
	assert.Contains(t, out.String(), "[DIARY] preview #2 'Петров П.П._дневник.docx':")
	assert.Contains(t, out.String(), "'Петров П.П.'")
	assert.NoDirExists(t, cfg.OutDir)
}

func TestRunBatch_FillWithWorkbook(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(config.ModeFill)
	cfg.Input, cfg.Doc = "", filepath.Join(f.dir, "forms", "diary.docx")
	cfg.Excel = f.workbook(t, true)

	var out bytes.Buffer
	require.NoError(t, runBatch(context.Background(), cfg, f.svc, &out))
	assert.Contains(t, out.String(), "2 item(s), 0 failed")
	assert.FileExists(t, filepath.Join(cfg.OutDir, "Иванов И.И..docx"))
	assert.FileExists(t, filepath.Join(cfg.OutDir, "Петров П.П..docx"))
}

func TestRunBatch_Errors(t *testing.T) {
	f := newFixture(t)

	cfg := f.config(config.ModeAuto)
	cfg.Excel = filepath.Join(f.dir, "missing.xlsx")
	assert.ErrorContains(t, runBatch(context.Background(), cfg, f.svc, io.Discard), "failed to load")

	cfg = f.config(config.ModeFill)
	cfg.Excel = f.workbook(t, false)
	assert.ErrorContains(t, runBatch(context.Background(), cfg, f.svc, io.Discard), "mapping")

	cfg = f.config(config.ModeAuto)
	cfg.Excel = f.workbook(t, false)
	cfg.Row = 9
	assert.ErrorContains(t, runBatch(context.Background(), cfg, f.svc, io.Discard), "out of range")

	cfg = f.config(config.ModeDetect)
	cfg.Input = ""
	assert.Error(t, runBatch(context.Background(), cfg, f.svc, io.Discard))

	cfg = f.config(config.ModeStdio)
	assert.ErrorContains(t, runBatch(context.Background(), cfg, f.svc, io.Discard), "not a batch mode")
}

func TestRunBatch_NoDocuments(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(config.ModeDetect)
	cfg.Input = t.TempDir()

	var out bytes.Buffer
	require.NoError(t, runBatch(context.Background(), cfg, f.svc, &out))
	assert.Equal(t, "no .docx or .doc files found\n", out.String())
}
