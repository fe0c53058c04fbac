package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/flist-dev/flist/internal/config"
	"github.com/flist-dev/flist/internal/errors"
	"github.com/flist-dev/flist/internal/project"
	"github.com/flist-dev/flist/internal/remote"
	"github.com/flist-dev/flist/internal/tui"
)

var viewCmd = &cobra.Command{
	Use:   "view [dir]",
	Short: "View and edit the project's entries",
	Long: `Open the interactive entry list for the project. The view holds the
project lock for as long as it runs, heartbeating it in the background;
add commands from other processes forward their entries here.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	root := projectDir(args)
	cfg := config.Get()

	logger, err := newLogger(root, cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := project.Open(ctx, root, cfg.Lock.LockOptions(), logger)
	if err != nil {
		var locked *errors.LockedError
		if errors.As(err, &locked) {
			return fmt.Errorf("project is in use by pid %d on %s: %w", locked.PID, locked.Hostname, err)
		}
		return err
	}
	defer sess.Close()

	model := tui.New(sess, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())

	// Accept forwarded inserts while we hold the lock, and publish the
	// listener address so adders can find us.
	if cfg.Remote.Enabled {
		server, err := remote.Listen(func(req *remote.InsertRequest) error {
			entry := project.NewEntry(req.Name, req.Link, req.Metadata)
			if entry.Name == "" {
				entry.Name = entry.Link.InferName()
			}
			program.Send(tui.InsertMsg{Entry: entry})
			return nil
		}, logger)
		if err != nil {
			logger.Warn("listener unavailable; adds will wait for the lock", "error", err.Error())
		} else {
			defer server.Close()
			go server.Serve(ctx)
			if err := sess.Handle().Announce(server.Addr()); err != nil {
				logger.Warn("listener address not published", "addr", server.Addr(), "error", err.Error())
			}
		}
	}

	go sess.Keep(ctx, func() {
		program.Send(tui.StolenMsg{})
	})

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("view failed: %w", err)
	}
	if model.Stolen() {
		return errors.ErrStolen
	}
	return nil
}
