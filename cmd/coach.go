package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/priyam/econcoach/internal/exam"
)

var coachCmd = &cobra.Command{
	Use:   "coach <question-id>",
	Short: "Score a partial draft and suggest the next step",
	Long: "Scores an in-progress draft on knowledge, analysis, and evaluation\n" +
		"(0-10 each) and tells you what to work on next. The draft comes from\n" +
		"--draft (a file, or - for stdin).",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		draftPath, _ := cmd.Flags().GetString("draft")
		if draftPath == "" {
			return fmt.Errorf("provide --draft")
		}
		data, err := readInput(draftPath)
		if err != nil {
			return fmt.Errorf("read draft: %w", err)
		}
		draft := strings.TrimSpace(string(data))

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		svc, err := newService(ctx, st)
		if err != nil {
			return err
		}

		catalog, err := st.EffectiveCatalog(ctx)
		if err != nil {
			return err
		}
		q, ok := exam.FindQuestion(catalog, args[0])
		if !ok {
			return fmt.Errorf("unknown question id: %s", args[0])
		}

		result, err := svc.CoachDraft(ctx, q, draft)
		if err != nil {
			return err
		}

		fmt.Printf("Knowledge (AO1):   %d/10\n", result.AO1)
		fmt.Printf("Analysis (AO2):    %d/10\n", result.AO2)
		fmt.Printf("Evaluation (AO3):  %d/10\n", result.AO3)
		fmt.Println()
		fmt.Println(result.Advice)
		return nil
	},
}

func init() {
	coachCmd.Flags().String("draft", "", "Draft file to score (- for stdin)")
}
