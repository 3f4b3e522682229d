// Package convert turns legacy .doc files into .docx with a headless
// LibreOffice.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultBinary is the LibreOffice executable looked up on PATH.
const DefaultBinary = "soffice"

// ErrUnsupported is returned for files that are neither .docx nor .doc.
var ErrUnsupported = errors.New("unsupported document format")

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Converter converts .doc files into a private work directory. It is safe
// for concurrent use.
type Converter struct {
	binary string
	run    Runner

	mu      sync.Mutex
	workDir string
}

// New returns a converter calling binary, or DefaultBinary when empty.
func New(binary string) *Converter {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Converter{binary: binary, run: execRunner}
}

// WithRunner replaces the command runner.
func (c *Converter) WithRunner(run Runner) *Converter {
	c.run = run
	return c
}

// ToDocx returns a .docx path for path. A .docx is returned unchanged; a
// .doc is converted and the path of the converted copy is returned.
func (c *Converter) ToDocx(ctx context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return path, nil
	case ".doc":
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
	}

	outDir, err := c.outDir()
	if err != nil {
		return "", err
	}
	out, err := c.run(ctx, c.binary, "--headless", "--convert-to", "docx", "--outdir", outDir, path)
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return "", fmt.Errorf("%s: %w", c.binary, err)
		}
		return "", fmt.Errorf("%s: %w: %s", c.binary, err, msg)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".docx"
	converted := filepath.Join(outDir, name)
	if _, err := os.Stat(converted); err != nil {
		return "", fmt.Errorf("%s produced no %s: %s", c.binary, name, strings.TrimSpace(string(out)))
	}
	return converted, nil
}

// Close removes every converted copy.
func (c *Converter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.workDir == "" {
		return nil
	}
	err := os.RemoveAll(c.workDir)
	c.workDir = ""
	return err
}

// outDir returns a fresh directory per call so concurrent conversions of
// same-named files do not collide.
func (c *Converter) outDir() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.workDir == "" {
		dir, err := os.MkdirTemp("", "docx-filler-convert-")
		if err != nil {
			return "", fmt.Errorf("create conversion dir: %w", err)
		}
		c.workDir = dir
	}
	dir, err := os.MkdirTemp(c.workDir, "doc-")
	if err != nil {
		return "", fmt.Errorf("create conversion dir: %w", err)
	}
	return dir, nil
}
