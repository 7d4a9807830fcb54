package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/duesbook/internal/auth"
	"github.com/mmynk/duesbook/internal/ledger"
	"github.com/mmynk/duesbook/internal/models"
	"github.com/mmynk/duesbook/internal/scheduler"
	"github.com/mmynk/duesbook/internal/storage/sqlite"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(addUserCmd)
	rootCmd.AddCommand(rolloverCmd)

	addUserCmd.Flags().Bool("admin", false, "Grant the admin role")

	rolloverCmd.Flags().String("from", "", "Period to close, YYYY-MM (default: the month before the current one)")
	rolloverCmd.Flags().String("to", "", "Period to open, YYYY-MM (default: the month after --from)")
}

// ─── migrate ────────────────────────────────────────────────────────────────

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ValidateStorage(); err != nil {
			return err
		}
		if err := sqlite.RunMigrations(cfg.DBPath); err != nil {
			return err
		}
		slog.Info("Migrations applied", "database", cfg.DBPath)
		return nil
	},
}

// ─── adduser ────────────────────────────────────────────────────────────────

var addUserCmd = &cobra.Command{
	Use:   "adduser EMAIL NAME PASSWORD",
	Short: "Create an account",
	Long:  `Create an account directly in the database. Use --admin for accounts that may delete records or clear the ledger.`,
	Args:  cobra.ExactArgs(3),
	RunE:  runAddUser,
}

func runAddUser(cmd *cobra.Command, args []string) error {
	admin, _ := cmd.Flags().GetBool("admin")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	role := models.RoleUser
	if admin {
		role = models.RoleAdmin
	}

	person, err := auth.NewPasswordAuthenticator(store).RegisterWithRole(cmd.Context(), args[0], args[1], args[2], role)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Created %s %s <%s> (%s)\n", person.Role, person.Name, person.Email, person.ID)
	return nil
}

// ─── rollover ───────────────────────────────────────────────────────────────

var rolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Carry a month's closing balances into the next month",
	Long: `Carry the net balance of every person at the end of --from into --to.
Each pair of months can be rolled over once; run it again after an admin
resets the target month.`,
	Args: cobra.NoArgs,
	RunE: runRollover,
}

func runRollover(cmd *cobra.Command, args []string) error {
	fromFlag, _ := cmd.Flags().GetString("from")
	toFlag, _ := cmd.Flags().GetString("to")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	book := ledger.New(store, ledger.WithLocation(cfg.Location()))

	if fromFlag == "" && toFlag == "" {
		return scheduler.RollPrevious(cmd.Context(), book)
	}

	from, err := parsePeriodFlag("from", fromFlag)
	if err != nil {
		return err
	}
	to, err := parsePeriodFlag("to", toFlag)
	if err != nil {
		return err
	}

	rollover, err := book.Rollover(cmd.Context(), scheduler.SystemActor, from, to)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Rolled %s into %s\n", rollover.From, rollover.To)
	for _, e := range rollover.Entries {
		fmt.Fprintf(os.Stdout, "  %s\t%s\n", e.PersonID, e.Amount.StringFixed(2))
	}
	return nil
}

func parsePeriodFlag(name, value string) (models.Period, error) {
	if value == "" {
		if name == "from" {
			return models.Period{}, fmt.Errorf("--from is required when --to is set")
		}
		return models.Period{}, nil
	}
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return models.Period{}, fmt.Errorf("invalid --%s %q: expected YYYY-MM", name, value)
	}
	return models.PeriodOf(t), nil
}
