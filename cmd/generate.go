package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/priyam/econcoach/internal/batch"
	"github.com/priyam/econcoach/internal/exam"
)

var generateCmd = &cobra.Command{
	Use:   "generate [question-id]",
	Short: "Generate a model answer for a question",
	Long: "Generates a full-mark model answer for one catalog question and stores\n" +
		"it in the question's work state. With --all, walks the whole catalog\n" +
		"(or one chapter) sequentially, skipping questions that already have an\n" +
		"answer unless --force is given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		chapter, _ := cmd.Flags().GetString("chapter")
		force, _ := cmd.Flags().GetBool("force")

		if !all && len(args) != 1 {
			return fmt.Errorf("provide a question id, or use --all")
		}

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

		if !all {
			q, ok := exam.FindQuestion(catalog, args[0])
			if !ok {
				return fmt.Errorf("unknown question id: %s", args[0])
			}
			answer, err := svc.ModelAnswer(ctx, q)
			if err != nil {
				return err
			}
			fmt.Println(answer)
			return nil
		}

		targets := catalog
		if chapter != "" {
			targets = exam.ByChapter(catalog, chapter)
			if len(targets) == 0 {
				return fmt.Errorf("no questions in chapter: %s", chapter)
			}
		}

		summary := batch.Runner{}.Run(ctx, targets, func(ctx context.Context, q exam.Question) error {
			if !force {
				state, err := st.QuestionState(ctx, q.ID)
				if err != nil {
					return err
				}
				if state.ModelAnswer != "" {
					fmt.Printf("%-24s %s  (already answered)\n", q.ID, q.Ref())
					return nil
				}
			}
			fmt.Printf("%-24s %s\n", q.ID, q.Ref())
			_, err := svc.ModelAnswer(ctx, q)
			return err
		})
		fmt.Println(summary)
		return nil
	},
}

func init() {
	generateCmd.Flags().Bool("all", false, "Generate for every catalog question")
	generateCmd.Flags().String("chapter", "", "With --all, restrict to one chapter")
	generateCmd.Flags().Bool("force", false, "Regenerate even if an answer exists")
}
