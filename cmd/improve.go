package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/priyam/econcoach/internal/exam"
)

var improveCmd = &cobra.Command{
	Use:   "improve <question-id> <snippet...>",
	Short: "Rewrite one sentence or paragraph to examiner standard",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		snippet := strings.Join(args[1:], " ")

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

		result, err := svc.ImproveSnippet(ctx, q, snippet)
		if err != nil {
			return err
		}

		fmt.Println(result.Improved)
		if result.Reason != "" {
			fmt.Println()
			fmt.Println("Why:", result.Reason)
		}
		return nil
	},
}
