package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/ui/theme"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Draw a difficulty-balanced sample, generating items when a tier runs short",
	RunE:  runSample,
}

func init() {
	addKindFlag(sampleCmd)
	sampleCmd.Flags().StringP("domain", "d", "", "Domain to sample from (required)")
	sampleCmd.Flags().IntP("count", "n", 10, "Number of items")
	sampleCmd.Flags().Bool("json", false, "Print the result as JSON")
	_ = sampleCmd.MarkFlagRequired("domain")
}

func runSample(cmd *cobra.Command, args []string) error {
	kind, err := kindFlag(cmd)
	if err != nil {
		return err
	}
	domain, _ := cmd.Flags().GetString("domain")
	count, _ := cmd.Flags().GetInt("count")
	asJSON, _ := cmd.Flags().GetBool("json")

	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	svc, err := rt.service(ctx, false)
	if err != nil {
		return err
	}

	res, err := svc.Sample(ctx, kind, strings.TrimSpace(domain), count)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintln(out, theme.Header(fmt.Sprintf("%s · %s · %d of %d requested", kind.Name, domain, len(res.Items), res.Requested), 72))
	for i, it := range res.Items {
		printItem(out, kind, i+1, it)
	}
	fmt.Fprintln(out, theme.Hint.Render(fmt.Sprintf("%d items available in this domain", res.AvailableCount)))
	if res.GenerationErr != nil {
		fmt.Fprintln(out, theme.Warning.Render("generation stopped early: "+res.GenerationErr.Error()))
	}
	return nil
}

func printItem(w io.Writer, kind bank.Kind, n int, it bank.Item) {
	fmt.Fprintf(w, "\n%s %s  %s\n", theme.Label.Render(fmt.Sprintf("%d.", n)), theme.Tier(it.Difficulty), theme.Hint.Render(it.ID))

	if kind.IsChoice() {
		var body bank.ChoiceBody
		if err := json.Unmarshal(it.Content, &body); err != nil {
			fmt.Fprintf(w, "   (unreadable item: %v)\n", err)
			return
		}
		if body.Topic != "" {
			fmt.Fprintf(w, "   [%s]\n", body.Topic)
		}
		fmt.Fprintf(w, "   %s\n", body.Question)
		for _, opt := range []struct{ label, text string }{
			{"A", body.Options.A}, {"B", body.Options.B}, {"C", body.Options.C}, {"D", body.Options.D},
		} {
			fmt.Fprintf(w, "     %s) %s\n", opt.label, opt.text)
		}
		return
	}

	var body bank.CodingBody
	if err := json.Unmarshal(it.Content, &body); err != nil {
		fmt.Fprintf(w, "   (unreadable item: %v)\n", err)
		return
	}
	fmt.Fprintf(w, "   %s\n", theme.Title.Render(body.Title))
	fmt.Fprintf(w, "   %s\n", body.Statement)
	if body.InputFormat != "" {
		fmt.Fprintf(w, "   Input:  %s\n", body.InputFormat)
	}
	if body.OutputFormat != "" {
		fmt.Fprintf(w, "   Output: %s\n", body.OutputFormat)
	}
	for _, c := range body.Constraints {
		fmt.Fprintf(w, "   - %s\n", c)
	}
	for i, ex := range body.Examples {
		fmt.Fprintf(w, "   Example %d: %q -> %q\n", i+1, ex.Input, ex.Output)
	}
	fmt.Fprintf(w, "   %d hidden test cases\n", len(body.TestInputs))
}
