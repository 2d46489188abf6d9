package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/priyam/econcoach/internal/exam"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <chapter>",
	Short: "Aggregate mark-scheme insight across a chapter",
	Long: "Distills every mark scheme in a chapter into the recurring knowledge,\n" +
		"analysis, and evaluation points, plus the debates examiners keep coming\n" +
		"back to. The stored analysis replaces any previous one for the chapter.\n" +
		"With --cached, shows the stored analysis without calling the model.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cached, _ := cmd.Flags().GetBool("cached")
		chapter := args[0]

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()

		var analysis *exam.ChapterAnalysis
		if cached {
			analysis, err = st.ChapterAnalysis(ctx, chapter)
			if err != nil {
				return err
			}
			if analysis == nil {
				return fmt.Errorf("no stored analysis for %q; run without --cached to compute one", chapter)
			}
		} else {
			svc, err := newService(ctx, st)
			if err != nil {
				return err
			}

			catalog, err := st.EffectiveCatalog(ctx)
			if err != nil {
				return err
			}
			questions := exam.ByChapter(catalog, chapter)
			if len(questions) == 0 {
				return fmt.Errorf("no questions in chapter: %s", chapter)
			}

			analysis, err = svc.AnalyzeChapter(ctx, chapter, questions)
			if err != nil {
				return err
			}
			if analysis == nil {
				return fmt.Errorf("the model produced an unusable analysis; try again")
			}
		}

		printAnalysis(analysis)
		return nil
	},
}

func printAnalysis(a *exam.ChapterAnalysis) {
	fmt.Printf("%s  (%d questions, generated %s)\n\n",
		a.Chapter, a.QuestionCount, a.GeneratedAt.Local().Format("2006-01-02 15:04"))

	printPoints("Knowledge (AO1)", a.Knowledge)
	printPoints("Analysis (AO2)", a.Analysis)
	printPoints("Evaluation (AO3)", a.Evaluation)

	for _, d := range a.Debates {
		fmt.Printf("Debate: %s\n", d.Topic)
		printPoints("  For", d.Supporting)
		printPoints("  Against", d.Limiting)
		printPoints("  Depends on", d.DependsOn)
	}
}

func printPoints(heading string, points []exam.AnalysisPoint) {
	if len(points) == 0 {
		return
	}
	fmt.Println(heading)
	for _, p := range points {
		if len(p.Sources) > 0 {
			fmt.Printf("  - %s  [%s]\n", p.Point, strings.Join(p.Sources, ", "))
		} else {
			fmt.Printf("  - %s\n", p.Point)
		}
	}
	fmt.Println()
}

func init() {
	analyzeCmd.Flags().Bool("cached", false, "Show the stored analysis without calling the model")
}
