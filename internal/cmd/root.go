// Package cmd implements the sareterm command-line interface: session
// management and history search on top of internal/ptysession and
// internal/history.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// SetVersionInfo sets the version information reported by `sareterm version`.
func SetVersionInfo(v, c, d, b string) {
	version = v
	commit = c
	date = d
	builtBy = b
}

var rootCmd = &cobra.Command{
	Use:   "sareterm",
	Short: "Session-aware terminal emulator",
	Long: `# sareterm

A terminal emulator with first-class session management: spawn PTY
sessions, detach and reattach them, and search persistent command history.

## Available command groups

- **session** — spawn, list, attach, detach, and terminate PTY sessions
- **history** — search and inspect persisted command history

Run **sareterm session --help** or **sareterm history --help** for details.`,
	Version: version,
}

// Execute runs the root command, exiting the process with status 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(historyCmd)

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderMarkdownHelp(cmd)
	})
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display detailed version information including build date and commit.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sareterm version %s\n", version)
		if commit != "none" && commit != "" {
			fmt.Printf("Git commit: %s\n", commit)
		}
		if date != "unknown" && date != "" {
			fmt.Printf("Built: %s\n", date)
		}
		if builtBy != "unknown" && builtBy != "" {
			fmt.Printf("Built by: %s\n", builtBy)
		}
	},
}

// renderMarkdownHelp renders command help using glamour for terminal markdown
// display, falling back to cobra's default help on any rendering error.
func renderMarkdownHelp(cmd *cobra.Command) {
	var helpContent strings.Builder

	if cmd.Long != "" {
		helpContent.WriteString(cmd.Long)
		helpContent.WriteString("\n\n")
	} else if cmd.Short != "" {
		helpContent.WriteString("# " + cmd.Short)
		helpContent.WriteString("\n\n")
	}

	helpContent.WriteString("## Usage\n\n")
	helpContent.WriteString("```bash\n")
	helpContent.WriteString(cmd.UseLine())
	helpContent.WriteString("\n```\n\n")

	if cmd.HasAvailableSubCommands() {
		helpContent.WriteString("## Available Commands\n\n")
		for _, subCmd := range cmd.Commands() {
			if subCmd.IsAvailableCommand() {
				helpContent.WriteString(fmt.Sprintf("- **%s** - %s\n", subCmd.Name(), subCmd.Short))
			}
		}
		helpContent.WriteString("\n")
	}

	if cmd.HasAvailableFlags() {
		helpContent.WriteString("## Flags\n\n")
		if flagUsages := cmd.Flags().FlagUsages(); flagUsages != "" {
			helpContent.WriteString("```\n")
			helpContent.WriteString(flagUsages)
			helpContent.WriteString("```\n\n")
		}
	}

	if cmd.HasParent() && cmd.InheritedFlags().HasFlags() {
		helpContent.WriteString("## Global Flags\n\n")
		if inheritedUsages := cmd.InheritedFlags().FlagUsages(); inheritedUsages != "" {
			helpContent.WriteString("```\n")
			helpContent.WriteString(inheritedUsages)
			helpContent.WriteString("```\n\n")
		}
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		_ = cmd.Help()
		return
	}

	rendered, err := renderer.Render(helpContent.String())
	if err != nil {
		_ = cmd.Help()
		return
	}

	fmt.Print(rendered)
}
