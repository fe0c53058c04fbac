package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/flist-dev/flist/internal/config"
	"github.com/flist-dev/flist/internal/lock"
	"github.com/flist-dev/flist/internal/logging"
	"github.com/flist-dev/flist/internal/project"
)

var statusCmd = &cobra.Command{
	Use:   "status [dir]",
	Short: "Show the project's lock status",
	Long:  `Display who holds the project lock, how fresh their heartbeat is, and the entry counts.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	root := projectDir(args)
	cfg := config.Get()

	pcfg, err := project.LoadConfig(root)
	if err != nil {
		return err
	}

	store := lock.NewFileStore(root, logging.NopLogger())
	rec, err := store.Read()
	if err != nil {
		return fmt.Errorf("read lock record: %w", err)
	}

	if rec == nil {
		fmt.Println("Lock: free")
	} else {
		age := time.Since(rec.HeartbeatAt).Round(time.Millisecond)
		fmt.Printf("Lock: held by pid %d on %s\n", rec.PID, rec.Hostname)
		fmt.Printf("  Acquired:  %s\n", rec.AcquiredAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("  Heartbeat: %s ago", age)
		if age > cfg.Lock.StalenessThreshold() {
			fmt.Print(" (stale, will be reclaimed)")
		}
		fmt.Println()
		if rec.Addr != "" {
			fmt.Printf("  Listener:  %s\n", rec.Addr)
		}
	}

	proj, err := project.Load(root, pcfg, nil)
	if err != nil {
		return err
	}
	fmt.Printf("Entries: %d live, %d archived\n", len(proj.Entries), len(proj.Archive))
	return nil
}
