package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/priyam/econcoach/internal/exam"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Manage the question catalog",
	Long: "Lists and edits the question catalog. The built-in questions cannot be\n" +
		"changed in place: an edit stores a replacement record, a delete stores\n" +
		"the id in a soft-delete set, and restore undoes a delete.",
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		chapter, _ := cmd.Flags().GetString("chapter")
		asJSON, _ := cmd.Flags().GetBool("json")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		catalog, err := st.EffectiveCatalog(cmd.Context())
		if err != nil {
			return err
		}
		if chapter != "" {
			catalog = exam.ByChapter(catalog, chapter)
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(catalog)
		}

		for _, q := range catalog {
			fmt.Printf("%-24s  %-14s  [%2d]  %s\n", q.ID, q.Ref(), q.MaxMarks, q.Chapter)
		}
		return nil
	},
}

var questionsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a question from a JSON file",
	Long: "Reads one question record as JSON from --file (or stdin with -). A\n" +
		"missing id is filled in with a generated one.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			return fmt.Errorf("provide --file (- for stdin)")
		}
		data, err := readInput(path)
		if err != nil {
			return fmt.Errorf("read question: %w", err)
		}

		var q exam.Question
		if err := json.Unmarshal(data, &q); err != nil {
			return fmt.Errorf("decode question: %w", err)
		}
		if q.Text == "" {
			return fmt.Errorf("question text is required")
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.SaveQuestion(cmd.Context(), q); err != nil {
			return err
		}
		fmt.Println(q.ID)
		return nil
	},
}

var questionsEditCmd = &cobra.Command{
	Use:   "edit <question-id>",
	Short: "Replace a question with an edited record from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			return fmt.Errorf("provide --file (- for stdin)")
		}
		data, err := readInput(path)
		if err != nil {
			return fmt.Errorf("read question: %w", err)
		}

		var q exam.Question
		if err := json.Unmarshal(data, &q); err != nil {
			return fmt.Errorf("decode question: %w", err)
		}
		// The id on the command line wins over any id in the file.
		q.ID = args[0]

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		catalog, err := st.EffectiveCatalog(cmd.Context())
		if err != nil {
			return err
		}
		if _, ok := exam.FindQuestion(catalog, q.ID); !ok {
			return fmt.Errorf("unknown question id: %s", q.ID)
		}

		return st.SaveQuestion(cmd.Context(), q)
	},
}

var questionsDeleteCmd = &cobra.Command{
	Use:   "delete <question-id>",
	Short: "Soft-delete a question from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		return st.MarkDeleted(cmd.Context(), args[0])
	},
}

var questionsRestoreCmd = &cobra.Command{
	Use:   "restore <question-id>",
	Short: "Undo a soft-delete",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		return st.Restore(cmd.Context(), args[0])
	},
}

var questionsChaptersCmd = &cobra.Command{
	Use:   "chapters",
	Short: "List chapters present in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		catalog, err := st.EffectiveCatalog(cmd.Context())
		if err != nil {
			return err
		}
		for _, c := range exam.Chapters(catalog) {
			fmt.Println(c)
		}
		return nil
	},
}

func init() {
	questionsListCmd.Flags().String("chapter", "", "Restrict to one chapter")
	questionsListCmd.Flags().Bool("json", false, "Emit the catalog as JSON")
	questionsAddCmd.Flags().String("file", "", "Question JSON file (- for stdin)")
	questionsEditCmd.Flags().String("file", "", "Question JSON file (- for stdin)")

	questionsCmd.AddCommand(questionsListCmd)
	questionsCmd.AddCommand(questionsAddCmd)
	questionsCmd.AddCommand(questionsEditCmd)
	questionsCmd.AddCommand(questionsDeleteCmd)
	questionsCmd.AddCommand(questionsRestoreCmd)
	questionsCmd.AddCommand(questionsChaptersCmd)
}
