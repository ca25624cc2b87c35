package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vanpelt/sareterm/internal/config"
	"github.com/vanpelt/sareterm/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect persisted command history",
}

func init() {
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyListCmd)
}

func loadHistoryStore() (*history.Store, error) {
	s := history.New(config.Runtime.HistoryCapacity, config.Runtime.HistoryFile)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

var historySearchCmd = &cobra.Command{
	Use:   "search <pattern>",
	Short: "Search history for a substring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadHistoryStore()
		if err != nil {
			return err
		}

		for _, entry := range s.Search(args[0]) {
			fmt.Println(entry.Command)
		}
		return nil
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all history entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadHistoryStore()
		if err != nil {
			return err
		}

		for _, entry := range s.Entries() {
			fmt.Fprintln(os.Stdout, entry.Command)
		}
		return nil
	},
}
