package main

import (
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/logger"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "annotate",
		Short: "Build annotated documents and resolve term definitions",
		Long: `annotate builds the render tree for article text, annotating the first
occurrence of every vocabulary term in each section, and resolves the
definition shown when a reader activates an annotation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetupWriter(cmd.ErrOrStderr(), opts.logLevel, "text")
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newLookupCmd())
	root.AddCommand(newDefinitionsCmd())
	return root
}
