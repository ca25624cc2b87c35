package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vanpelt/sareterm/internal/config"
	"github.com/vanpelt/sareterm/internal/ptysession"
	"github.com/vanpelt/sareterm/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage PTY sessions",
	Long:  "Spawn, list, attach, detach, and terminate PTY sessions.",
}

func init() {
	sessionCmd.AddCommand(sessionSpawnCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionDetachCmd)
	sessionCmd.AddCommand(sessionAttachCmd)
	sessionCmd.AddCommand(sessionTerminateCmd)
}

func newManager() (*session.Store, *ptysession.Manager, error) {
	store := session.NewStore(config.Runtime.SessionStoreDir)
	if err := store.Initialize(); err != nil {
		return nil, nil, err
	}
	return store, ptysession.NewManager(store), nil
}

var sessionSpawnCmd = &cobra.Command{
	Use:   "spawn -- <command> [args...]",
	Short: "Spawn a new PTY session",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")

		_, mgr, err := newManager()
		if err != nil {
			return err
		}

		s, err := mgr.Spawn(ptysession.SpawnOptions{
			Name:    name,
			Command: args,
			Owner:   os.Getenv("USER"),
		})
		if err != nil {
			return err
		}

		fmt.Println(s.ID())
		return nil
	},
}

func init() {
	sessionSpawnCmd.Flags().String("name", "", "human-readable session name")
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := newManager()
		if err != nil {
			return err
		}

		all, err := store.LoadAll()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATE\tUPDATED")
		for _, m := range all {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.State, m.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

func parseSessionID(args []string) (uuid.UUID, error) {
	return uuid.Parse(args[0])
}

var sessionDetachCmd = &cobra.Command{
	Use:   "detach <id>",
	Short: "Detach a live session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSessionID(args)
		if err != nil {
			return err
		}
		_, mgr, err := newManager()
		if err != nil {
			return err
		}
		return mgr.Detach(id)
	},
}

var sessionAttachCmd = &cobra.Command{
	Use:   "attach <id>",
	Short: "Attach to a detached session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSessionID(args)
		if err != nil {
			return err
		}
		_, mgr, err := newManager()
		if err != nil {
			return err
		}
		_, err = mgr.Attach(id)
		return err
	},
}

var sessionTerminateCmd = &cobra.Command{
	Use:   "terminate <id>",
	Short: "Terminate a live session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSessionID(args)
		if err != nil {
			return err
		}
		_, mgr, err := newManager()
		if err != nil {
			return err
		}
		return mgr.Terminate(id)
	},
}
