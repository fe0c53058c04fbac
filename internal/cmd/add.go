package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flist-dev/flist/internal/config"
	"github.com/flist-dev/flist/internal/errors"
	"github.com/flist-dev/flist/internal/project"
	"github.com/flist-dev/flist/internal/remote"
)

var addFlags struct {
	dir      string
	metadata []string
}

var addCmd = &cobra.Command{
	Use:   "add <link> [name]",
	Short: "Add an entry to the project",
	Long: `Add a file, directory, or URL entry to the project. Without a name,
URLs are named by their page title and paths by their basename.

If another process is viewing the project, the entry is forwarded to it
instead of waiting for the lock.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addFlags.dir, "dir", "d", ".", "project directory")
	addCmd.Flags().StringSliceVarP(&addFlags.metadata, "metadata", "m", nil, "metadata tags for the entry")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	logger, err := newLogger(addFlags.dir, cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx := context.Background()
	link := project.ParseLink(args[0])

	name := ""
	if len(args) > 1 {
		name = args[1]
	}
	var fetcher *project.TitleFetcher
	if cfg.Title.Enabled {
		fetcher = project.NewTitleFetcher(cfg.Title.FetchTimeout())
	}
	name = project.EntryName(ctx, name, link, fetcher)

	entry := project.NewEntry(name, link.String(), addFlags.metadata)

	sess, err := project.Open(ctx, addFlags.dir, cfg.Lock.LockOptions(), logger)
	if err == nil {
		defer sess.Close()
		sess.Project.Insert(entry)
		if err := sess.Save(); err != nil {
			return err
		}
		fmt.Printf("Added %q\n", entry.Name)
		return nil
	}

	// The holder may be a running view session; hand the entry to it.
	var locked *errors.LockedError
	if cfg.Remote.Enabled && errors.As(err, &locked) && locked.Listening() {
		req := &remote.InsertRequest{
			Name:     entry.Name,
			Link:     entry.Link.String(),
			Metadata: entry.Metadata,
		}
		sendErr := remote.Send(locked.Addr, req, cfg.Remote.DialTimeout())
		if sendErr == nil {
			fmt.Printf("Added %q via the running view (pid %d)\n", entry.Name, locked.PID)
			return nil
		}
		logger.Warn("forward to lock holder failed", "addr", locked.Addr, "error", sendErr.Error())
	}
	return err
}
