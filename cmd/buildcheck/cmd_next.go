package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IshaanBansal2006/p5-sub000/internal/ledger"
	"github.com/IshaanBansal2006/p5-sub000/internal/next"
	"github.com/IshaanBansal2006/p5-sub000/internal/report"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the highest-priority open bug or task for this repository",
	Args:  cobra.NoArgs,
	RunE:  runNext,
}

func runNext(cmd *cobra.Command, args []string) error {
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

	s := next.Select(l)
	if s.Done {
		fmt.Printf("Nothing open for %s/%s. All caught up.\n", identity.Owner, identity.Repo)
		return nil
	}

	fmt.Printf("Next up for %s/%s:\n", identity.Owner, identity.Repo)
	fmt.Printf("  [%s #%d] %s: %s\n", s.Type, s.ID, s.Priority, s.Title)
	if s.Fix != "" {
		fmt.Printf("  Suggested fix: %s\n", s.Fix)
	}
	return nil
}
