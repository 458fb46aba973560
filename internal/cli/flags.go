package cli

import (
	"github.com/spf13/cobra"

	"github.com/GerkinDev/jsonstream/internal/config"
)

type encodeOptions struct {
	output string
	digest bool
}

// registerEncodeFlags adds the flags shared by encode and watch. Settings that
// also live in the config file are read back through config.Load.
func registerEncodeFlags(cmd *cobra.Command, opts *encodeOptions) {
	d := config.Default()

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	f.BoolVar(&opts.digest, "digest", false, "print the xxHash64 digest of the JSON text to stderr")
	f.Int("chunk-size", d.ChunkSize, "bytes pulled from the stream per write")
	f.String("compression", d.Compression, "output compression: none, zstd, s2, lz4")
	f.Bool("escape-html", d.EscapeHTML, `escape '<', '>' and '&' in strings`)
}
