package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/ui/theme"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate items until a domain holds at least the target count",
	Long: `Generate items until a domain holds at least the target count.

Safe to re-run: each run generates only the remaining deficit, and items
inserted before a failure are kept.`,
	RunE: runSeed,
}

func init() {
	addKindFlag(seedCmd)
	seedCmd.Flags().StringP("domain", "d", "", "Domain to seed (required)")
	seedCmd.Flags().IntP("target", "t", 100, "Target item count for the domain")
	_ = seedCmd.MarkFlagRequired("domain")
}

func runSeed(cmd *cobra.Command, args []string) error {
	kind, err := kindFlag(cmd)
	if err != nil {
		return err
	}
	domain, _ := cmd.Flags().GetString("domain")
	target, _ := cmd.Flags().GetInt("target")

	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	svc, err := rt.service(ctx, true)
	if err != nil {
		return err
	}

	res, err := svc.SeedToTarget(ctx, kind, strings.TrimSpace(domain), target)
	if res != nil {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Header(fmt.Sprintf("Seed %s · %s", kind.Name, domain), 48))
		fmt.Fprintf(out, "%-12s %d\n", "Generated", res.Generated)
		fmt.Fprintf(out, "%-12s %d\n", "Total", res.NewTotal)
		fmt.Fprintf(out, "%-12s %d\n", "Target", res.Target)
		if res.NewTotal >= res.Target {
			fmt.Fprintln(out, theme.Correct.Render("target reached"))
		}
	}
	if err != nil {
		return fmt.Errorf("seeding stopped: %w", err)
	}
	return nil
}
