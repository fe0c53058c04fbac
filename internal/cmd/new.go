package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flist-dev/flist/internal/project"
)

var newFlags struct {
	maxArchive  int
	quickLaunch string
	force       bool
	clear       bool
}

var newCmd = &cobra.Command{
	Use:   "new [dir]",
	Short: "Create a new flist project",
	Long: `Create a flist project in the given directory (default: the current
directory), writing its flist.toml. The directory is created if it does
not exist. An existing project is only overwritten with --force.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNew,
}

func init() {
	newCmd.Flags().IntVarP(&newFlags.maxArchive, "max-archive", "m", project.DefaultMaxArchive,
		"maximum number of archived entries to keep")
	newCmd.Flags().StringVarP(&newFlags.quickLaunch, "quick-launch", "q", "",
		"preferred file suffixes for quick launch; layers separated by commas, suffixes by pipes (e.g. \"pdf|epub,txt\")")
	newCmd.Flags().BoolVarP(&newFlags.force, "force", "f", false,
		"overwrite an existing project")
	newCmd.Flags().BoolVarP(&newFlags.clear, "clear", "C", false,
		"remove leftover flist files from the directory")
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	root := projectDir(args)

	cfg := project.Config{
		MaxArchive:        newFlags.maxArchive,
		PreferredSuffixes: project.ParseSuffixLayers(newFlags.quickLaunch),
	}
	if err := project.Init(root, cfg, project.InitOptions{
		Force: newFlags.force,
		Clear: newFlags.clear,
	}); err != nil {
		return err
	}

	fmt.Printf("Created flist project in %s\n", root)
	return nil
}
