// jsonstream streams YAML or JSON documents as compact JSON.
package main

import (
	"os"

	"github.com/GerkinDev/jsonstream/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
