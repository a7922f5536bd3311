package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Didstopia/arborist/internal/update"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit, and build date of Arborist.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("arborist %s\n", Version)
		fmt.Printf("  commit:   %s\n", Commit)
		fmt.Printf("  built:    %s\n", BuildDate)
		fmt.Printf("  platform: %s\n", update.GetPlatform())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// SetVersionInfo sets the version information (called from main)
func SetVersionInfo(version, commit, buildDate string) {
	if version != "" {
		Version = version
	}
	if commit != "" {
		Commit = commit
	}
	if buildDate != "" {
		BuildDate = buildDate
	}
}
