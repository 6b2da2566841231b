package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/born-ml/tensoralg/internal/multiindex"
	"github.com/born-ml/tensoralg/internal/storage"
	"github.com/spf13/cobra"
)

var errBadOrder = errors.New("order must be 2 for diagonal classes")

func newStorageCmd() *cobra.Command {
	var class string
	var dim, order int
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Print the storage map of a symmetry class",
		Example: `  tensoralg storage --class symmetric --dim 3 --order 2
  tensoralg storage --class antisymmetric --dim 4 --order 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := storage.ParseClass(class)
			if err != nil {
				return err
			}
			sc, err := schemeFor(c, dim, order)
			if err != nil {
				return err
			}
			return printScheme(cmd.OutOrStdout(), sc)
		},
	}
	cmd.Flags().StringVar(&class, "class", "symmetric", "general, diagonal, scalar-diagonal, symmetric or antisymmetric")
	cmd.Flags().IntVar(&dim, "dim", 3, "dimension of the underlying vector space")
	cmd.Flags().IntVar(&order, "order", 2, "tensor order")
	return cmd
}

// schemeFor builds the scheme of class c over order copies of a dim-dimensional space.
func schemeFor(c storage.Class, dim, order int) (storage.Scheme, error) {
	switch c {
	case storage.General:
		dims := slices.Repeat([]int{dim}, max(order, 0))
		return storage.NewGeneral(dims...)
	case storage.Diagonal, storage.ScalarDiagonal:
		if order != 2 {
			return nil, fmt.Errorf("%s: %w, got %d", c, errBadOrder, order)
		}
		if c == storage.Diagonal {
			return storage.NewDiagonal(dim, dim)
		}
		return storage.NewScalarDiagonal(dim, dim)
	case storage.Symmetric:
		return storage.NewSymmetric(dim, order)
	case storage.Antisymmetric:
		return storage.NewAntisymmetric(dim, order)
	default:
		return nil, fmt.Errorf("%w: %s cannot be built from flags", storage.ErrUnknownClass, c)
	}
}

// printScheme writes the stored components with their canonical indices,
// then every full multi-index with its storage index and scale factor.
func printScheme(w io.Writer, sc storage.Scheme) error {
	fmt.Fprintf(w, "class %s, dims %v: %d stored of %d components\n\n",
		sc.Class(), []int(sc.Dims()), sc.Size(), sc.Dims().NumElements())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STORAGE\tCANONICAL")
	m := make([]int, len(sc.Dims()))
	for s := 0; s < sc.Size(); s++ {
		sc.ToMultiIndex(s, m)
		fmt.Fprintf(tw, "%d\t%v\n", s, m)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "INDEX\tSTORAGE\tSCALE")
	for mi := range multiindex.Start(sc.Dims()).Seq() {
		m := mi.Values()
		if sc.IsProceduralZero(m) {
			fmt.Fprintf(tw, "%v\t-\t0\n", m)
			continue
		}
		fmt.Fprintf(tw, "%v\t%d\t%+d\n", m, sc.ToStorage(m), sc.ScaleFactor(m))
	}
	return tw.Flush()
}
