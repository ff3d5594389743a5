package cli

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/charles1614/deepwiki-sub003/internal/config"
	"github.com/charles1614/deepwiki-sub003/internal/logging"
	"github.com/charles1614/deepwiki-sub003/internal/tui"
	"github.com/charles1614/deepwiki-sub003/internal/wiki"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative account operations",
	Long: `Manage accounts directly against the database, without a running
server. Used to create the first admin before any login is possible.`,
}

var (
	adminConfigDir string
	createEmail    string
	createName     string
	createRole     string
	createPassword string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create an account",
	Long: `Create an account with the given role (viewer, editor, admin).

The password is taken from --password, the DEEPWIKI_USER_PASSWORD
environment variable, or an interactive prompt, in that order.`,
	Args: cobra.NoArgs,
	RunE: runCreateUser,
}

var listUsersCmd = &cobra.Command{
	Use:   "list-users",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE:  runListUsers,
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.PersistentFlags().StringVarP(&adminConfigDir, "config", "C", ".", "Directory containing deepwiki.yaml")

	adminCmd.AddCommand(createUserCmd)
	createUserCmd.Flags().StringVar(&createEmail, "email", "", "Account email (required)")
	createUserCmd.Flags().StringVar(&createName, "name", "", "Display name (defaults to the email local part)")
	createUserCmd.Flags().StringVar(&createRole, "role", "viewer", "Account role: viewer, editor, admin")
	createUserCmd.Flags().StringVar(&createPassword, "password", "", "Account password (prompted when omitted)")
	_ = createUserCmd.MarkFlagRequired("email")

	adminCmd.AddCommand(listUsersCmd)
}

func runCreateUser(cmd *cobra.Command, args []string) error {
	role := deepwiki.Role(strings.ToLower(strings.TrimSpace(createRole)))
	if !role.IsValid() {
		return fmt.Errorf("invalid role %q (want viewer, editor, or admin): %w", createRole, deepwiki.ErrInvalidConfig)
	}

	password, err := resolvePassword()
	if err != nil {
		return err
	}

	name := createName
	if name == "" {
		name = strings.SplitN(createEmail, "@", 2)[0]
	}

	cfg, err := config.Load(adminConfigDir)
	if err != nil {
		return err
	}
	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))
	ctx := cmd.Context()

	store, err := connectStore(ctx, cfg, logger, tui.NewProgress())
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := wiki.NewUsers(store).Create(ctx, createEmail, name, password, role)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s (%s) with role %s\n", user.Email, user.ID, user.Role)
	return nil
}

func runListUsers(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(adminConfigDir)
	if err != nil {
		return err
	}
	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))
	ctx := cmd.Context()

	store, err := connectStore(ctx, cfg, logger, tui.NewProgress())
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := wiki.NewUsers(store).List(ctx)
	if err != nil {
		return err
	}

	for _, u := range users {
		fmt.Printf("%-36s  %-8s  %s\n", u.ID, u.Role, u.Email)
	}
	return nil
}

// resolvePassword checks the flag, then the environment, then prompts.
func resolvePassword() (string, error) {
	if createPassword != "" {
		return createPassword, nil
	}
	if pw := os.Getenv("DEEPWIKI_USER_PASSWORD"); pw != "" {
		return pw, nil
	}
	if !tui.IsInteractive() {
		return "", fmt.Errorf("no password provided: set --password or DEEPWIKI_USER_PASSWORD: %w", deepwiki.ErrInvalidConfig)
	}

	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if string(pw) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(pw), nil
}
