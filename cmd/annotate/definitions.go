package main

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/definition"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/postgres"
	"github.com/spf13/cobra"
)

func newDefinitionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "definitions",
		Short: "Manage the stored definition table",
	}
	cmd.AddCommand(newDefinitionsImportCmd())
	return cmd
}

func newDefinitionsImportCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Load a YAML definitions table into PostgreSQL",
		Long: `Validate a YAML definitions table and upsert every entry into the
term_definitions table used by the postgres definition source.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := definition.LoadStatic(args[0])
			if err != nil {
				return err
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			db, err := postgres.New(cfg.Postgres)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			if err := definition.NewPostgres(db.DB).Upsert(cmd.Context(), table.All()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d definitions\n", table.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "configs/development.yaml", "path to config file")
	return cmd
}
