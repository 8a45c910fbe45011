// =============================================================================
// Donation Receipts - Compiler Adapter
// =============================================================================
//
// Receipts are LaTeX sources. This module hands a written .tex file to an
// external typesetter and reports where the PDF should be.
//
// The typesetter's exit status is not trusted: pdflatex in nonstopmode
// frequently exits non-zero for harmless warnings and zero for broken
// output. The presence of the PDF is the only success signal; any PDF from
// an earlier run is removed before the typesetter starts.
//
// There is no timeout. A hanging typesetter stalls the batch until the
// command's context is cancelled (Ctrl-C).
//
// =============================================================================

package compiler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNoArtifact is returned when the typesetter produced no output file.
var ErrNoArtifact = errors.New("no compiled document produced")

// Compiler turns a source file into a finished document.
type Compiler interface {
	Compile(ctx context.Context, sourcePath string) (artifactPath string, err error)
}

// Func adapts a function to the Compiler interface.
type Func func(ctx context.Context, sourcePath string) (string, error)

// Compile implements Compiler.
func (f Func) Compile(ctx context.Context, sourcePath string) (string, error) {
	return f(ctx, sourcePath)
}

// ArtifactPath returns the PDF path next to sourcePath.
func ArtifactPath(sourcePath string) string {
	return strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath)) + ".pdf"
}

// =============================================================================
// PDFLATEX
// =============================================================================

// DefaultArgs are passed to pdflatex before the output directory and source.
var DefaultArgs = []string{"-interaction=nonstopmode", "-halt-on-error"}

// PDFLaTeX runs pdflatex (or a compatible command) once per document.
type PDFLaTeX struct {
	// Command is the executable. Default: "pdflatex"
	Command string

	// Args precede "-output-directory <dir> <source>". Default: DefaultArgs
	Args []string
}

// NewPDFLaTeX returns a PDFLaTeX for command, falling back to defaults.
func NewPDFLaTeX(command string, args []string) *PDFLaTeX {
	if command == "" {
		command = "pdflatex"
	}
	if len(args) == 0 {
		args = DefaultArgs
	}
	return &PDFLaTeX{Command: command, Args: args}
}

// Available reports whether the command can be found on PATH.
func (p *PDFLaTeX) Available() error {
	if _, err := exec.LookPath(p.Command); err != nil {
		return fmt.Errorf("typesetter %q not found: %w", p.Command, err)
	}
	return nil
}

// Compile implements Compiler. Output of the typesetter is discarded.
func (p *PDFLaTeX) Compile(ctx context.Context, sourcePath string) (string, error) {
	args := append([]string{}, p.Args...)
	args = append(args, "-output-directory", filepath.Dir(sourcePath), sourcePath)

	// A PDF left over from an earlier run must not count as output of this one.
	artifact := ArtifactPath(sourcePath)
	if err := os.Remove(artifact); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to remove stale %s: %w", artifact, err)
	}

	cmd := exec.CommandContext(ctx, p.Command, args...)
	runErr := cmd.Run()

	if _, err := os.Stat(artifact); err != nil {
		if runErr != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrNoArtifact, artifact, runErr)
		}
		return "", fmt.Errorf("%w: %s", ErrNoArtifact, artifact)
	}

	return artifact, nil
}
