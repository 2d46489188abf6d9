package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/priyam/econcoach/internal/exam"
)

var deconstructCmd = &cobra.Command{
	Use:   "deconstruct [question-id | question text...]",
	Short: "Break a question down into command word, scope, and plan",
	Long: "Analyzes what a question is really asking: the command word, the\n" +
		"syllabus concepts in scope, and a suggested structure. Accepts either a\n" +
		"catalog question id or free question text.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		// A single argument matching a catalog id analyzes (and records)
		// that question; anything else is treated as free text.
		questionID := ""
		text := strings.Join(args, " ")
		if len(args) == 1 {
			catalog, err := st.EffectiveCatalog(ctx)
			if err != nil {
				return err
			}
			if q, ok := exam.FindQuestion(catalog, args[0]); ok {
				questionID = q.ID
				text = q.Text
			}
		}

		analysis, err := svc.Deconstruct(ctx, questionID, text)
		if err != nil {
			return err
		}
		fmt.Println(analysis)
		return nil
	},
}
