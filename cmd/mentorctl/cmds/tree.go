package cmds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ide-mentor/mentor-api/internal/content"
)

var (
	treePath     string
	treeContents bool
)

// Prints the same outline the model sees for a submission directory.
var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Render a submission directory the way it is shown to the model",
	RunE: func(_ *cobra.Command, _ []string) error {
		fmt.Println(content.WalkTree(treePath, treeContents))
		return nil
	},
}

func init() {
	treeCmd.Flags().StringVar(&treePath, "path", "", "Path to the submission directory")
	treeCmd.Flags().
		BoolVar(&treeContents, "contents", false, "Include the text of recognized source files")
	if err := treeCmd.MarkFlagRequired("path"); err != nil {
		panic("internal error registering tree flags")
	}
}
