package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/ui/theme"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Show per-tier supply of a domain, or list all domains",
	RunE:  runInventory,
}

func init() {
	addKindFlag(inventoryCmd)
	inventoryCmd.Flags().StringP("domain", "d", "", "Domain to inspect; omit to list every domain")
}

func runInventory(cmd *cobra.Command, args []string) error {
	kind, err := kindFlag(cmd)
	if err != nil {
		return err
	}
	domain, _ := cmd.Flags().GetString("domain")
	domain = strings.TrimSpace(domain)

	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	svc := bank.NewService(rt.store, nil, rt.cfg.BankConfig(), rt.log)
	out := cmd.OutOrStdout()

	if domain == "" {
		domains, err := svc.Domains(ctx, kind)
		if err != nil {
			return err
		}
		if len(domains) == 0 {
			fmt.Fprintf(out, "No %s items yet.\n", kind.Name)
			return nil
		}
		fmt.Fprintln(out, theme.Header(fmt.Sprintf("%s domains", kind.Name), 48))
		var total int
		for _, d := range domains {
			fmt.Fprintf(out, "%-38s %8d\n", truncate(d.Domain, 38), d.Count)
			total += d.Count
		}
		fmt.Fprintln(out, theme.Divider(48))
		fmt.Fprintf(out, "%-38s %8d\n", "TOTAL", total)
		return nil
	}

	inv, err := svc.Inventory(ctx, kind, domain)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, theme.Header(fmt.Sprintf("%s · %s", kind.Name, domain), 32))
	for _, tier := range bank.Tiers {
		// Pad before styling; ANSI codes would throw off the width.
		label := fmt.Sprintf("%-8s", tier)
		fmt.Fprintf(out, "%s %8d\n", strings.Replace(label, string(tier), theme.Tier(tier), 1), inv.Tiers[tier])
	}
	fmt.Fprintln(out, theme.Divider(32))
	fmt.Fprintf(out, "%-8s %8d\n", "Total", inv.Total)
	return nil
}
