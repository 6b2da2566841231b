package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/born-ml/tensoralg/internal/config"
	"github.com/born-ml/tensoralg/internal/einsum"
	"github.com/born-ml/tensoralg/internal/embedding"
	"github.com/born-ml/tensoralg/internal/expr"
	"github.com/born-ml/tensoralg/internal/serialization"
	"github.com/born-ml/tensoralg/internal/space"
	"github.com/born-ml/tensoralg/internal/tensor"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newRunCmd(a *app) *cobra.Command {
	var file, output string
	cmd := &cobra.Command{
		Use:   "run -f job.yaml",
		Short: "Evaluate the expressions of a job file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			job, err := config.Load(file)
			if err != nil {
				return err
			}
			if output != "" {
				job.Output = output
			}
			// Flags given on the command line win over the job file.
			cfg := job.Log
			if cmd.Flags().Changed("log-level") {
				cfg.Level = a.log.Level
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Format = a.log.Format
			}
			if err := a.setLogger(cmd, cfg); err != nil {
				return err
			}
			return a.run(cmd, file, job)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "job file (YAML)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write results to this .talg file (overrides the job's output)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) run(cmd *cobra.Command, file string, job *config.Job) error {
	runID := uuid.New().String()
	logger := a.logger.With("run", runID)
	reg := embedding.NewRegistry(embedding.WithLogger(logger), embedding.WithParallel(job.Parallel))

	dt, err := tensor.ParseDataType(job.DType)
	if err != nil {
		return err
	}
	start := time.Now()
	var records []serialization.Record
	switch dt {
	case tensor.Float32:
		records, err = evaluateJob[float32](cmd.Context(), job, reg, logger)
	default:
		records, err = evaluateJob[float64](cmd.Context(), job, reg, logger)
	}
	if err != nil {
		return err
	}
	stats := reg.Stats()
	logger.Info("job done",
		"expressions", len(records),
		"tables", stats.Tables,
		"elapsed", time.Since(start))

	out := cmd.OutOrStdout()
	for _, r := range records {
		fmt.Fprintf(out, "%s\t%s\t%v\n", r.Name, r.Space, r.Values())
	}

	if job.Output == "" {
		return nil
	}
	w, err := serialization.NewWriter(job.Output)
	if err != nil {
		return err
	}
	meta := map[string]string{"run_id": runID, "job": file, "dtype": job.DType}
	if err := w.WriteTensors(records, meta); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	logger.Info("wrote results", "path", job.Output, "tensors", len(records))
	return nil
}

// evaluateJob evaluates every expression of job concurrently. Expressions
// only read input tensors, so they share the inputs and the registry.
func evaluateJob[T tensor.Scalar](ctx context.Context, job *config.Job, reg *embedding.Registry, logger *slog.Logger) ([]serialization.Record, error) {
	refs, err := job.BuildSpaces()
	if err != nil {
		return nil, err
	}
	inputs, err := config.BuildTensors[T](job, refs)
	if err != nil {
		return nil, err
	}

	records := make([]serialization.Record, len(job.Expressions))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(job.Parallel.NumWorkers, 1))
	for i, e := range job.Expressions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			operands := make([]*tensor.Tensor[T], len(e.Operands))
			for k, name := range e.Operands {
				operands[k] = inputs[name]
			}
			out, err := einsum.Evaluate(e.Equation, operands, expr.WithParallel(job.Parallel))
			if err != nil {
				return fmt.Errorf("expression %q: %w", e.Name, err)
			}
			if e.Into != nil {
				out, err = embedInto(out, *e.Into, refs, reg)
				if err != nil {
					return fmt.Errorf("expression %q: %w", e.Name, err)
				}
			}
			logger.Info("evaluated expression",
				"name", e.Name,
				"equation", e.Equation,
				"space", out.Space().String(),
				"components", out.Len(),
				"elapsed", time.Since(start))
			records[i] = serialization.RecordOf(e.Name, out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// embedInto embeds t into the space described by d.
func embedInto[T tensor.Scalar](t *tensor.Tensor[T], d space.Descriptor, refs map[string]*space.Space, reg *embedding.Registry) (*tensor.Tensor[T], error) {
	codomain, err := d.Build(refs)
	if err != nil {
		return nil, err
	}
	e, err := reg.Embedding(t.Space(), codomain)
	if err != nil {
		return nil, err
	}
	out := tensor.Zeros[T](codomain)
	embedding.Apply(e, t.Data(), out.Data())
	return out, nil
}
