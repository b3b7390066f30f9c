package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/qbank/internal/llm"
	"github.com/abhisek/qbank/internal/store"
	"github.com/abhisek/qbank/internal/ui/theme"
	"github.com/spf13/cobra"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request/response events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		events := rt.store.EventRepo()
		out := cmd.OutOrStdout()
		list, err := events.QueryLLMEvents(ctx, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(list) == 0 {
			fmt.Fprintln(out, "No LLM events found.")
			return nil
		}

		fmt.Fprintln(out, theme.Label.Render(fmt.Sprintf("%-5s  %-19s  %-14s  %-28s  %-6s  %-6s  %-7s  %s",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")))
		fmt.Fprintln(out, theme.Divider(100))

		for _, e := range list {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			model := e.Model
			if len(model) > 28 {
				model = model[:28]
			}
			fmt.Fprintf(out, "%-5d  %-19s  %-14s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				model,
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		events := rt.store.EventRepo()
		out := cmd.OutOrStdout()
		e, err := events.GetLLMEvent(ctx, id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		sep := theme.Divider(60)

		fmt.Fprintf(out, "ID:        %d\n", e.ID)
		fmt.Fprintf(out, "Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Provider:  %s\n", e.Provider)
		fmt.Fprintf(out, "Model:     %s\n", e.Model)
		fmt.Fprintf(out, "Purpose:   %s\n", e.Purpose)
		fmt.Fprintf(out, "Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
		fmt.Fprintf(out, "Latency:   %dms\n", e.LatencyMs)
		fmt.Fprintf(out, "Success:   %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Fprintf(out, "Error:     %s\n", e.ErrorMessage)
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, sep)
		fmt.Fprintln(out, theme.Label.Render("REQUEST"))
		fmt.Fprintln(out, sep)
		if e.RequestBody != "" {
			fmt.Fprintln(out, e.RequestBody)
		} else {
			fmt.Fprintln(out, "(not captured)")
		}

		fmt.Fprintln(out, sep)
		fmt.Fprintln(out, theme.Label.Render("RESPONSE"))
		fmt.Fprintln(out, sep)
		if e.ResponseBody != "" {
			fmt.Fprintln(out, e.ResponseBody)
		} else {
			fmt.Fprintln(out, "(not captured)")
		}

		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		events := rt.store.EventRepo()
		out := cmd.OutOrStdout()
		stats, err := events.LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		if len(stats) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}

		// Usage by purpose.
		fmt.Fprintln(out, theme.Header("Usage by Purpose", 72))
		fmt.Fprintf(out, "%-16s  %6s  %10s  %10s  %10s  %8s\n",
			"Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
		fmt.Fprintln(out, theme.Divider(72))

		var totalCalls, totalIn, totalOut int
		for _, st := range stats {
			total := st.InputTokens + st.OutputTokens
			fmt.Fprintf(out, "%-16s  %6d  %10d  %10d  %10d  %8d\n",
				st.Purpose, st.Calls, st.InputTokens, st.OutputTokens, total, st.AvgLatencyMs)
			totalCalls += st.Calls
			totalIn += st.InputTokens
			totalOut += st.OutputTokens
		}

		fmt.Fprintln(out, theme.Divider(72))
		fmt.Fprintf(out, "%-16s  %6d  %10d  %10d  %10d\n",
			"TOTAL", totalCalls, totalIn, totalOut, totalIn+totalOut)

		// Cost by model.
		modelUsage, err := events.LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		if len(modelUsage) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, theme.Header("Estimated Cost (USD)", 72))
			fmt.Fprintf(out, "%-32s  %6s  %10s  %10s  %10s\n",
				"Model", "Calls", "Input", "Output", "Cost")
			fmt.Fprintln(out, theme.Divider(72))

			var totalCost float64
			var unknownModels []string
			for _, mu := range modelUsage {
				cost := llm.LookupCost(mu.Model)
				if cost == nil {
					unknownModels = append(unknownModels, mu.Model)
					fmt.Fprintf(out, "%-32s  %6d  %10d  %10d  %10s\n",
						truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, "?")
					continue
				}
				c := cost.Cost(mu.InputTokens, mu.OutputTokens)
				totalCost += c
				fmt.Fprintf(out, "%-32s  %6d  %10d  %10d  %9s\n",
					truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, formatCost(c))
			}

			fmt.Fprintln(out, theme.Divider(72))
			label := "TOTAL"
			if len(unknownModels) > 0 {
				label = "TOTAL (partial)"
			}
			fmt.Fprintf(out, "%-32s  %6s  %10s  %10s  %9s\n",
				label, "", "", "", formatCost(totalCost))

			if len(unknownModels) > 0 {
				fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unknownModels, ", "))
			}
		}

		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. mcq-gen, interview-gen, coding-gen)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
