package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	digestSlug    string
	digestPreview bool
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Send the action center digest for a tenant",
	Long: `Build the action center digest (severity totals and the five most urgent
deadlines) and send it to the configured Slack and email channels. With
--preview the digest is printed and nothing is sent.`,
	RunE: runDigest,
}

func init() {
	digestCmd.Flags().StringVar(&digestSlug, "slug", "", "tenant slug (defaults to DEFAULT_TENANT_SLUG)")
	digestCmd.Flags().BoolVar(&digestPreview, "preview", false, "print the digest without sending it")
}

func runDigest(cmd *cobra.Command, _ []string) error {
	rt, err := openDeps()
	if err != nil {
		return err
	}
	defer rt.close()

	slug := digestSlug
	if slug == "" {
		slug = rt.cfg.DefaultTenantSlug
	}
	result, err := rt.agencyService().SendDigest(cmd.Context(), slug, digestPreview)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.Preview)
	if result.Sent {
		fmt.Fprintf(out, "\nsent digest for %s (%d items)\n", result.Tenant, result.Items)
	}
	return nil
}
