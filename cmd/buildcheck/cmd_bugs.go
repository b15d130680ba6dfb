package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IshaanBansal2006/p5-sub000/internal/ledger"
	"github.com/IshaanBansal2006/p5-sub000/internal/report"
	"github.com/IshaanBansal2006/p5-sub000/internal/types"
)

var bugsAll bool

var bugsCmd = &cobra.Command{
	Use:   "bugs",
	Short: "List this repository's bug ledger",
	Args:  cobra.NoArgs,
	RunE:  runBugs,
}

func init() {
	bugsCmd.Flags().BoolVar(&bugsAll, "all", false, "include resolved and closed entries")
}

func runBugs(cmd *cobra.Command, args []string) error {
	store, err := ledger.Open(cfg.Server.DatabasePath, logger.Named("ledger"))
	if err != nil {
		return err
	}
	defer store.Close()

	identity := report.RepoIdentity(cmd.Context(), root)
	l, _, err := store.Load(identity.Key())
	if err != nil {
		return err
	}

	printed := 0
	for _, b := range l.Bugs {
		if !bugsAll && !types.IsOpenStatus(b.Status) {
			continue
		}
		loc := ""
		if b.Location != nil {
			loc = " (" + b.Location.String() + ")"
		}
		fmt.Printf("#%d [%s] %s: %s%s", b.ID, b.Priority, b.TaskName, b.Message, loc)
		if b.Occurrences > 1 {
			fmt.Printf(" x%d", b.Occurrences)
		}
		fmt.Println()
		printed++
	}
	for _, t := range l.Tasks {
		if !bugsAll && !types.IsOpenStatus(t.Status) {
			continue
		}
		fmt.Printf("task #%d [%s] %s\n", t.ID, t.Priority, t.Title)
		printed++
	}

	if printed == 0 {
		fmt.Printf("No open bugs or tasks for %s/%s.\n", identity.Owner, identity.Repo)
	}
	return nil
}
