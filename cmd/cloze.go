package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/priyam/econcoach/internal/exam"
)

var clozeCmd = &cobra.Command{
	Use:   "cloze",
	Short: "Fill-in-the-blank practice built from model answers",
}

var clozeGenCmd = &cobra.Command{
	Use:   "generate <question-id>",
	Short: "Generate a cloze exercise from the question's model answer",
	Args:  cobra.ExactArgs(1),
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

		catalog, err := st.EffectiveCatalog(ctx)
		if err != nil {
			return err
		}
		q, ok := exam.FindQuestion(catalog, args[0])
		if !ok {
			return fmt.Errorf("unknown question id: %s", args[0])
		}

		state, err := st.QuestionState(ctx, q.ID)
		if err != nil {
			return err
		}
		if state.ModelAnswer == "" {
			return fmt.Errorf("no model answer for %s yet; run: econcoach generate %s", q.ID, q.ID)
		}

		ex, err := svc.GenerateCloze(ctx, q, state.ModelAnswer)
		if err != nil {
			return err
		}
		if ex == nil {
			return fmt.Errorf("the model produced an unusable exercise; try again")
		}

		fmt.Println(ex.Text)
		fmt.Println()
		for _, b := range ex.Blanks {
			fmt.Printf("  %s  hint: %s\n", exam.BlankToken(b.ID), b.Hint)
		}
		return nil
	},
}

var clozeGradeCmd = &cobra.Command{
	Use:   "grade <question-id>",
	Short: "Grade answers to the question's cloze exercise",
	Long: "Grades filled-in blanks against the exercise stored for the question.\n" +
		"Answers are given as repeated --answer id=text flags.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetStringArray("answer")
		answers := make(map[int]string, len(raw))
		for _, a := range raw {
			id, text, err := parseAnswer(a)
			if err != nil {
				return err
			}
			answers[id] = text
		}
		if len(answers) == 0 {
			return fmt.Errorf("provide at least one --answer id=text")
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

		state, err := st.QuestionState(ctx, args[0])
		if err != nil {
			return err
		}
		if state.Cloze == nil {
			return fmt.Errorf("no cloze exercise for %s yet; run: econcoach cloze generate %s", args[0], args[0])
		}

		feedback, err := svc.GradeCloze(ctx, args[0], state.Cloze.Blanks, answers)
		if err != nil {
			return err
		}

		ids := make([]int, 0, len(feedback))
		for id := range feedback {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			fb := feedback[id]
			fmt.Printf("%s  %d/5  %s\n", exam.BlankToken(id), fb.Score, fb.Comment)
		}
		return nil
	},
}

func parseAnswer(s string) (int, string, error) {
	idStr, text, ok := strings.Cut(s, "=")
	if !ok {
		return 0, "", fmt.Errorf("invalid --answer %q: expected id=text", s)
	}
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, "", fmt.Errorf("invalid --answer %q: id must be a positive integer", s)
	}
	return id, text, nil
}

func init() {
	clozeGradeCmd.Flags().StringArray("answer", nil, "Answer for one blank, as id=text (repeatable)")

	clozeCmd.AddCommand(clozeGenCmd)
	clozeCmd.AddCommand(clozeGradeCmd)
}
