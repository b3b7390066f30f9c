package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/ui/theme"
)

var gradeCmd = &cobra.Command{
	Use:   "grade <item-id>",
	Short: "Check an answer against a stored item",
	Args:  cobra.ExactArgs(1),
	RunE:  runGrade,
}

func init() {
	addKindFlag(gradeCmd)
	gradeCmd.Flags().StringP("answer", "a", "", "Answer to a choice item: a label (B) or the option text")
	gradeCmd.Flags().StringArrayP("output", "o", nil, "Program output for each test case of a coding item, in order")
}

func runGrade(cmd *cobra.Command, args []string) error {
	kind, err := kindFlag(cmd)
	if err != nil {
		return err
	}
	answer, _ := cmd.Flags().GetString("answer")
	outputs, _ := cmd.Flags().GetStringArray("output")

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

	res, err := svc.Grade(ctx, kind, args[0], bank.Submission{Answer: answer, Outputs: outputs})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.Correct {
		fmt.Fprintln(out, theme.Correct.Render("✓ Correct"))
	} else {
		fmt.Fprintln(out, theme.Incorrect.Render("✗ Wrong"))
	}
	if kind.IsChoice() {
		fmt.Fprintf(out, "Answer: %s\n", res.CorrectAnswer)
	} else {
		fmt.Fprintf(out, "Passed: %d/%d\n", res.Passed, res.Total)
	}
	if res.Explanation != "" {
		fmt.Fprintf(out, "Explanation: %s\n", res.Explanation)
	}
	return nil
}
