package main

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/born-ml/tensoralg/internal/serialization"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var skipChecksum, values bool
	cmd := &cobra.Command{
		Use:   "inspect file.talg",
		Short: "Show the header and tensors of a .talg file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := serialization.OpenWithOptions(args[0], serialization.ReaderOptions{
				SkipChecksumValidation: skipChecksum,
				ValidationLevel:        serialization.ValidationStrict,
			})
			if err != nil {
				return err
			}

			h := r.Header()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "format version: %d\n", h.FormatVersion)
			fmt.Fprintf(out, "written by:     tensoralg %s\n", h.Version)
			fmt.Fprintf(out, "created:        %s\n", h.CreatedAt.Format("2006-01-02 15:04:05 MST"))
			fmt.Fprintf(out, "checksum:       %x\n", r.Checksum())
			for _, k := range slices.Sorted(maps.Keys(h.Metadata)) {
				fmt.Fprintf(out, "meta %s: %s\n", k, h.Metadata[k])
			}
			fmt.Fprintln(out)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tDTYPE\tSPACE\tCOMPONENTS\tBYTES")
			for _, rec := range r.Records() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", rec.Name, rec.DType, rec.Space, rec.Len(), len(rec.Data))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if values {
				for _, rec := range r.Records() {
					fmt.Fprintf(out, "%s = %v\n", rec.Name, rec.Values())
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipChecksum, "skip-checksum", false, "do not verify the data checksum")
	cmd.Flags().BoolVar(&values, "values", false, "print stored components")
	return cmd
}
