package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/GerkinDev/jsonstream/internal/version"
)

func newVersionCommand() *cobra.Command {
	var asJSON, short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show which jsonstream build is running",
		Long: `Show the jsonstream release, the commit it was built from and the
toolchain and platform of the binary.

With --json the same fields are written as an indented document produced by
jsonstream's own serializer. With --short only the release is printed, which
suits scripts that compare versions.`,
		Example: `  jsonstream version
  jsonstream version --short
  jsonstream version --json`,
		Args: cobra.NoArgs,
		// skips config loading
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printVersion(cmd.OutOrStdout(), version.GetInfo(), asJSON, short)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "write the build fields as a JSON document")
	cmd.Flags().BoolVar(&short, "short", false, "write the release only")
	cmd.MarkFlagsMutuallyExclusive("json", "short")

	return cmd
}

func printVersion(w io.Writer, info version.Info, asJSON, short bool) error {
	line := info.String()
	switch {
	case short:
		line = info.Version
	case asJSON:
		doc, err := info.JSON()
		if err != nil {
			return fmt.Errorf("rendering version: %w", err)
		}
		line = doc
	}

	_, err := fmt.Fprintln(w, line)

	return err
}
