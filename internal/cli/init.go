package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/charles1614/deepwiki-sub003/internal/config"
	"github.com/charles1614/deepwiki-sub003/internal/scaffold"
	"github.com/charles1614/deepwiki-sub003/internal/tui"
)

var initCmd = &cobra.Command{
	Use:   "init <target_path>",
	Short: "Initialize a deepwiki deployment directory",
	Long: `Initialize a deepwiki deployment into the specified directory.

Creates deepwiki.yaml, a .env.example for secrets, and a README. At an
interactive terminal a guided wizard collects the configuration; in
scripts and CI the files are written with defaults for hand editing.

Target directory must be empty or non-existent.

Examples:
  deepwiki init .          # Initialize in current directory
  deepwiki init ./mywiki   # Initialize in ./mywiki`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

var initNoWizard bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initNoWizard, "no-wizard", false, "Skip the interactive wizard and write defaults")
}

func runInit(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	projectName := filepath.Base(targetPath)
	if projectName == "." || projectName == ".." {
		if cwd, err := os.Getwd(); err == nil {
			projectName = filepath.Base(cwd)
		} else {
			projectName = "wiki"
		}
	}

	scaffolder := scaffold.NewScaffolder(getVerboseFlag(cmd))
	if err := scaffolder.CreateProject(projectName, targetPath); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	// The wizard replaces the templated deepwiki.yaml with collected
	// answers. Defaults remain when skipped or cancelled.
	if !initNoWizard && tui.IsInteractive() {
		result, err := tui.RunSetup()
		if err != nil {
			return err
		}
		if result.Cancelled {
			fmt.Fprintln(os.Stderr, "Wizard cancelled; default configuration kept.")
		} else if err := config.Save(targetPath, &result.Config); err != nil {
			return fmt.Errorf("failed to write %s: %w", config.ConfigFileName, err)
		}
	}

	if tree, err := scaffold.BuildFileTree(targetPath); err == nil {
		fmt.Fprintf(os.Stderr, "\n✓ Project initialized in '%s'\n\nCreated structure:\n%s", targetPath, tree)
	} else {
		fmt.Fprintf(os.Stderr, "\n✓ Project initialized in '%s'\n", targetPath)
	}

	fmt.Fprintln(os.Stderr, "\nNext steps:")
	if targetPath != "." {
		fmt.Fprintf(os.Stderr, "  cd %s\n", targetPath)
	}
	fmt.Fprintln(os.Stderr, "  cp .env.example .env   # then fill in secrets")
	fmt.Fprintln(os.Stderr, "  deepwiki admin create-user --email you@example.com --role admin")
	fmt.Fprintln(os.Stderr, "  deepwiki serve")

	return nil
}
