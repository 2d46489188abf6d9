package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset [question-id]",
	Short: "Clear stored work",
	Long: "With a question id, clears that question's stored work (model answer,\n" +
		"feedback, exercises). With no arguments, clears all catalog edits,\n" +
		"deletions, work state, and chapter analyses. LLM events are always\n" +
		"kept for audit.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if len(args) == 1 {
			return st.ResetQuestionState(cmd.Context(), args[0])
		}

		if !yes {
			fmt.Print("This clears all edits, work state, and analyses. Continue? [y/N] ")
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if strings.ToLower(strings.TrimSpace(line)) != "y" {
				fmt.Println("Aborted.")
				return nil
			}
		}
		return st.ResetAll(cmd.Context())
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
