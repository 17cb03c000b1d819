package main

import (
	"fmt"
	"os"

	service "github.com/nfredmond/project-manager/service"
	"github.com/spf13/cobra"
)

var (
	seedFile  string
	seedReset bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a YAML fixture into a tenant",
	Long: `Create a tenant with projects, Caltrans phases, grants, meetings and
records requests from a YAML fixture. Dates may be absolute (2025-06-30) or
relative to today (+7d, -3d).`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "db/seed/demo.yaml", "fixture to load")
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "replace data if the tenant already exists")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	f, err := os.Open(seedFile)
	if err != nil {
		return fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	fixture, err := service.LoadSeedFixture(f)
	if err != nil {
		return err
	}

	rt, err := openDeps()
	if err != nil {
		return err
	}
	defer rt.close()

	result, err := rt.agencyService().Seed(cmd.Context(), fixture, seedReset)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %s: %d projects, %d phases, %d grants, %d meetings, %d records requests\n",
		result.Tenant.Slug, result.Projects, result.Phases, result.Grants, result.Meetings, result.Records)
	return nil
}
