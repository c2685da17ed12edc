package imagekit

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wbrown/imagekit/imageutil"
)

// Pipeline runs recipes. It holds no per-run state and may be shared.
type Pipeline struct {
	logger logrus.FieldLogger
	codec  Codec
}

// PipelineOption is a functional option for configuring a Pipeline.
type PipelineOption func(*Pipeline)

// NewPipeline creates a Pipeline with the given options.
// Default values: a logger that discards output, imageutil.FileCodec.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	p := &Pipeline{
		logger: discard,
		codec:  imageutil.FileCodec{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithLogger sets the logger step progress is reported to.
func WithLogger(logger logrus.FieldLogger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithCodec sets the codec used for the input, the output and every
// second operand.
func WithCodec(codec Codec) PipelineOption {
	return func(p *Pipeline) {
		p.codec = codec
	}
}

// StepReport describes one applied step.
type StepReport struct {
	Index    int
	Op       string
	Width    int
	Height   int
	Duration time.Duration
}

// Result summarizes a successful run.
type Result struct {
	Output   string
	Format   imageutil.Format
	Width    int
	Height   int
	Steps    []StepReport
	Duration time.Duration

	// PSNR of the output against the input in dB. NaN when the steps
	// changed the image size; +Inf when nothing changed.
	PSNR float64
}

// Run validates recipe, loads its input, applies every step and saves the
// output. The context is checked between steps. A failing step aborts the
// run before anything is written.
func (p *Pipeline) Run(ctx context.Context, recipe *Recipe) (*Result, error) {
	start := time.Now()
	if err := recipe.Validate(); err != nil {
		return nil, err
	}
	format, _ := recipe.OutputFormat()
	env := Env{Codec: p.codec, BaseDir: recipe.BaseDir}

	log := p.logger.WithFields(logrus.Fields{
		"input":  recipe.Input,
		"output": recipe.Output,
		"steps":  len(recipe.Steps),
	})
	log.Info("Starting recipe")

	input, err := env.Load(recipe.Input)
	if err != nil {
		log.WithError(err).Error("Failed to load input")
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"width":  input.Width(),
		"height": input.Height(),
	}).Debug("Input loaded")

	output, reports, err := p.Apply(ctx, input, recipe.Steps, env)
	if err != nil {
		return nil, err
	}

	psnr := math.NaN()
	if output.SameShape(input) {
		psnr, _ = imageutil.PSNR(output, input)
	}

	outPath := env.Resolve(recipe.Output)
	if err := p.codec.Save(output, outPath, format, recipe.Quality); err != nil {
		log.WithError(err).Error("Failed to save output")
		return nil, err
	}

	result := &Result{
		Output:   outPath,
		Format:   format,
		Width:    output.Width(),
		Height:   output.Height(),
		Steps:    reports,
		Duration: time.Since(start),
		PSNR:     psnr,
	}
	log.WithFields(logrus.Fields{
		"format":   format.String(),
		"width":    result.Width,
		"height":   result.Height,
		"psnr":     psnrField(psnr),
		"duration": result.Duration,
	}).Info("Recipe complete")
	return result, nil
}

// Apply runs steps over img in order without touching the file system
// except through env. It stops at the first failing step or when ctx is
// done, and never returns a partial result.
func (p *Pipeline) Apply(ctx context.Context, img *imageutil.Buffer, steps []Step, env Env) (*imageutil.Buffer, []StepReport, error) {
	reports := make([]StepReport, 0, len(steps))
	current := img

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			p.logger.WithField("index", i).Warn("Recipe cancelled")
			return nil, nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}

		op, ok := Lookup(step.Op)
		if !ok {
			return nil, nil, fmt.Errorf("step %d: %w: %s", i, ErrUnknownOperation, step.Op)
		}

		stepStart := time.Now()
		out, err := op.Apply(ctx, current, step.Params, env)
		if err != nil {
			p.logger.WithFields(logrus.Fields{
				"index": i,
				"op":    op.Name(),
			}).WithError(err).Error("Step failed")
			return nil, nil, fmt.Errorf("step %d (%s): %w", i, op.Name(), err)
		}

		report := StepReport{
			Index:    i,
			Op:       op.Name(),
			Width:    out.Width(),
			Height:   out.Height(),
			Duration: time.Since(stepStart),
		}
		reports = append(reports, report)
		p.logger.WithFields(logrus.Fields{
			"index":    i,
			"op":       report.Op,
			"width":    report.Width,
			"height":   report.Height,
			"duration": report.Duration,
		}).Info("Step applied")

		current = out
	}

	return current, reports, nil
}

// psnrField keeps NaN and Inf out of JSON log output.
func psnrField(psnr float64) any {
	if math.IsNaN(psnr) || math.IsInf(psnr, 0) {
		return fmt.Sprint(psnr)
	}
	return psnr
}
