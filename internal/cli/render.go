package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"flow-ai/chatcore/internal/render"
)

func newRenderCmd() *cobra.Command {
	var (
		variant  string
		sanitize bool
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Format assistant text as HTML",
		Long: `Format text with the message or search-results pipeline and print the HTML.

Reads the file when one is given, standard input otherwise.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := render.Variant(variant)
			if v != render.VariantMessage && v != render.VariantSearch {
				return fmt.Errorf("invalid variant %q (use message or search)", variant)
			}

			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open input: %w", err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}
			text, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			var opts []render.Option
			if sanitize {
				opts = append(opts, render.WithSanitizer(render.NewSanitizer()))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), render.NewFormatter(opts...).Format(string(text), v))
			return err
		},
	}

	cmd.Flags().StringVar(&variant, "variant", string(render.VariantMessage), "Pipeline to apply: message or search")
	cmd.Flags().BoolVar(&sanitize, "sanitize", false, "Strip markup outside the formatter's allow list")
	return cmd
}
