// =============================================================================
// Donation Receipts - Converter
// =============================================================================
//
// This module drives the receipt pipeline for the donor groups of one ledger.
//
// CONVERSION PIPELINE (per donor group, strictly sequential):
//   1. Build the document text (single or consolidated)
//   2. Pick a file name that is unique within the run
//   3. Write <name>.tex into the output directory
//   4. Compile it once
//   5. Remove .tex, .aux and .log unless intermediate files are kept
//
// ERROR HANDLING:
//   A failure in one group is recorded in its Result and the next group is
//   processed. A missing PDF after compiling is reported but is not a
//   failure of the group; the typesetter's verdict is not inspected.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/donation-receipts/internal/compiler"
	"github.com/ginjaninja78/donation-receipts/internal/receipt"
	"github.com/ginjaninja78/donation-receipts/internal/types"
	"github.com/ginjaninja78/donation-receipts/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing one donor group.
type Result struct {
	// Key is the donor identity key.
	Key string

	// Document is the built receipt. Zero if building failed.
	Document receipt.Document

	// OutputFile is the path of the compiled PDF, or where it was expected.
	OutputFile string

	// Success is false when the document could not be built or written.
	Success bool

	// Compiled reports whether the PDF exists after compiling.
	Compiled bool

	// Error contains the reason for a failed group.
	Error error

	// ProcessingTime is the time taken for this group.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options configures a Converter.
type Options struct {
	// OutputDir receives the compiled documents.
	OutputDir string

	// KeepIntermediate keeps .tex, .aux and .log files.
	KeepIntermediate bool

	// DryRun builds every document but writes and compiles nothing.
	DryRun bool

	Logger zerolog.Logger
}

// Converter turns donor groups into compiled receipts.
type Converter struct {
	builder  *receipt.Builder
	compiler compiler.Compiler
	opts     Options
	used     map[string]int
}

// New creates a Converter.
func New(builder *receipt.Builder, c compiler.Compiler, opts Options) *Converter {
	return &Converter{
		builder:  builder,
		compiler: c,
		opts:     opts,
		used:     make(map[string]int),
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run processes every group in order and returns one Result per group.
func (c *Converter) Run(ctx context.Context, groups []types.DonorGroup) []Result {
	results := make([]Result, 0, len(groups))

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Key: group.Key, Error: err})
			continue
		}
		results = append(results, c.process(ctx, group))
	}

	return results
}

// process runs the pipeline for one group.
func (c *Converter) process(ctx context.Context, group types.DonorGroup) Result {
	startTime := time.Now()
	result := Result{Key: group.Key}
	log := c.opts.Logger.With().Str("donor", group.Key).Logger()

	// =========================================================================
	// STEP 1: BUILD DOCUMENT
	// =========================================================================

	doc, err := c.builder.Build(group)
	if err != nil {
		result.Error = fmt.Errorf("failed to build receipt: %w", err)
		log.Error().Err(err).Msg("receipt skipped")
		return result
	}

	result.Document = doc
	name := c.uniqueName(doc.Name)
	if name != doc.Name {
		log.Warn().Str("name", doc.Name).Str("renamed", name).Msg("file name already used in this run")
	}

	sourcePath := filepath.Join(c.opts.OutputDir, name+".tex")
	result.OutputFile = compiler.ArtifactPath(sourcePath)

	if c.opts.DryRun {
		result.Success = true
		result.ProcessingTime = time.Since(startTime)
		return result
	}

	// =========================================================================
	// STEP 2: WRITE SOURCE
	// =========================================================================

	if err := os.WriteFile(sourcePath, []byte(doc.Text), 0644); err != nil {
		result.Error = fmt.Errorf("failed to write source: %w", err)
		log.Error().Err(err).Str("path", sourcePath).Msg("receipt skipped")
		return result
	}

	// =========================================================================
	// STEP 3: COMPILE
	// =========================================================================

	artifact, err := c.compiler.Compile(ctx, sourcePath)
	if err != nil {
		log.Warn().Err(err).Str("source", sourcePath).Msg("no PDF produced")
	} else {
		result.OutputFile = artifact
		result.Compiled = true
	}

	// =========================================================================
	// STEP 4: CLEAN UP
	// =========================================================================

	if !c.opts.KeepIntermediate {
		if _, err := utils.RemoveArtifacts(sourcePath, utils.IntermediateExtensions); err != nil {
			log.Warn().Err(err).Msg("failed to remove intermediate files")
		}
	}

	result.Success = true
	result.ProcessingTime = time.Since(startTime)

	log.Debug().
		Str("kind", string(doc.Kind)).
		Str("file", result.OutputFile).
		Dur("took", result.ProcessingTime).
		Msg("receipt generated")

	return result
}

// uniqueName appends _2, _3, ... when a name was already produced in this run.
// A suffixed candidate is skipped if it was itself handed out before.
func (c *Converter) uniqueName(name string) string {
	c.used[name]++
	if c.used[name] == 1 {
		return name
	}

	for n := c.used[name]; ; n++ {
		candidate := fmt.Sprintf("%s_%d", name, n)
		if c.used[candidate] == 0 {
			c.used[name] = n
			c.used[candidate]++
			return candidate
		}
	}
}
