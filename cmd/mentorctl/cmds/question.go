package cmds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ide-mentor/mentor-api/internal/catalog"
)

var (
	questionCatalogPath string
	questionID          string
)

// Runs the same lookup the server performs for an uploaded filename.
var questionCmd = &cobra.Command{
	Use:   "question",
	Short: "Look a question up in the catalog by submission identifier",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store := catalog.New(questionCatalogPath)
		record, err := store.Find(cmd.Context(), questionID)
		if err != nil {
			return fmt.Errorf("%w: %s", err, questionID)
		}

		fmt.Printf("id: %s\n\ncontent:\n%s\n\ntest cases:\n%s\n",
			record.ID, record.Content, record.TestCases)
		return nil
	},
}

func init() {
	questionCmd.Flags().
		StringVar(&questionCatalogPath, "catalog", "commands.csv", "Path to the catalog CSV")
	questionCmd.Flags().StringVar(&questionID, "id", "", "Submission identifier to resolve")
	if err := questionCmd.MarkFlagRequired("id"); err != nil {
		panic("internal error registering question flags")
	}
}
