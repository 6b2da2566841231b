package main

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/born-ml/tensoralg/internal/embedding"
	"github.com/born-ml/tensoralg/internal/parallel"
	"github.com/born-ml/tensoralg/internal/space"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// pairCase is one domain/codomain pair checked by selftest.
type pairCase struct {
	name       string
	domain     *space.Space
	codomain   *space.Space
	embeddable bool
}

func newSelftestCmd(a *app) *cobra.Command {
	var maxDim, workers int
	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Verify every symmetry-class embedding and its co-embedding",
		Long: `selftest builds the embedding between every supported pair of symmetry
classes for vector spaces of dimension 1 to --max-dim and checks, through the
checked API, that the embedding preserves the full tensor and that the
co-embedding is its transpose. Pairs that are not subspaces must be rejected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := selftest(a.logger, maxDim, workers)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d pairs verified for dimensions 1..%d\n", n, maxDim)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxDim, "max-dim", 4, "largest vector space dimension")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent checks (0 = unlimited)")
	return cmd
}

// selftest verifies every pair for dimensions 1..maxDim and returns the
// number of pairs checked.
func selftest(logger *slog.Logger, maxDim, workers int) (int, error) {
	var cases []pairCase
	for d := 1; d <= maxDim; d++ {
		cs, err := pairCases(d)
		if err != nil {
			return 0, err
		}
		cases = append(cases, cs...)
	}

	reg := embedding.NewRegistry(embedding.WithLogger(logger))
	var checked atomic.Int64
	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	start := time.Now()
	for _, pc := range cases {
		g.Go(func() error {
			if err := checkPair(reg, pc); err != nil {
				return fmt.Errorf("%s (%s -> %s): %w", pc.name, pc.domain, pc.codomain, err)
			}
			checked.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	logger.Info("selftest passed",
		"pairs", checked.Load(),
		"tables", reg.Stats().Tables,
		"elapsed", time.Since(start))
	return int(checked.Load()), nil
}

func checkPair(reg *embedding.Registry, pc pairCase) error {
	e, err := reg.Embedding(pc.domain, pc.codomain)
	if !pc.embeddable {
		if !errors.Is(err, embedding.ErrNotEmbeddable) {
			return fmt.Errorf("want %w, got %v", embedding.ErrNotEmbeddable, err)
		}
		return nil
	}
	if err != nil {
		return err
	}
	// Registry.Embedding verified the registry's co-embedding; the table
	// must agree with the closed form wherever both exist.
	if e.HasClosedForm() {
		return embedding.Verify(e, embedding.BuildTable(e, parallel.Sequential()))
	}
	return nil
}

// pairCases returns the embedding pairs over a vector space of dimension d.
func pairCases(d int) ([]pairCase, error) {
	v, err := space.NewVector("V", space.Real, d)
	if err != nil {
		return nil, err
	}
	w, err := space.NewVector("W", space.Real, d+1)
	if err != nil {
		return nil, err
	}

	var firstErr error
	must := func(s *space.Space, err error) *space.Space {
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return s
	}
	vv := must(space.NewTensorProduct(v, v))
	vvv := must(space.NewTensorProduct(v, v, v))
	vw := must(space.NewTensorProduct(v, w))
	diag := must(space.NewDiagonal2(v, v))
	diagW := must(space.NewDiagonal2(v, w))
	scal := must(space.NewScalar2(v, v))
	sym2 := must(space.NewSymmetricPower(v, 2))
	sym3 := must(space.NewSymmetricPower(v, 3))
	ext2 := must(space.NewExteriorPower(v, 2))
	ext3 := must(space.NewExteriorPower(v, 3))
	if firstErr != nil {
		return nil, firstErr
	}

	prefix := fmt.Sprintf("dim %d: ", d)
	cases := []pairCase{
		{"identity", v, v, true},
		{"diagonal into general", diag, vv, true},
		{"rectangular diagonal into general", diagW, vw, true},
		{"scalar into diagonal", scal, diag, true},
		{"scalar into general", scal, vv, true},
		{"scalar into symmetric", scal, sym2, true},
		{"diagonal into symmetric", diag, sym2, true},
		{"symmetric into general", sym2, vv, true},
		{"exterior into general", ext2, vv, true},
		{"symmetric cube into general", sym3, vvv, true},
		{"exterior cube into general", ext3, vvv, true},
	}
	if d > 1 {
		// In one dimension every 2-tensor is diagonal, so these pairs embed.
		cases = append(cases,
			pairCase{"general into symmetric", vv, sym2, false},
			pairCase{"symmetric into diagonal", sym2, diag, false},
			pairCase{"diagonal into scalar", diag, scal, false},
			pairCase{"exterior into symmetric", ext2, sym2, false},
			pairCase{"symmetric into exterior", sym2, ext2, false},
		)
	}
	for i := range cases {
		cases[i].name = prefix + cases[i].name
	}
	return cases, nil
}
