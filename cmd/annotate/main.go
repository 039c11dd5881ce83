// Command annotate is the command-line client for the annotation engine.
//
// Examples:
//
//	annotate build --term AI --term C++ article.txt
//	cat article.txt | annotate build --terms-file terms.txt --format text
//	annotate build --remote localhost:9100 --term AI article.txt
//	annotate lookup AI --definitions configs/definitions.yaml
//	annotate definitions import configs/definitions.yaml --config configs/development.yaml
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
