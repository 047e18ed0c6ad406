package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/emiliopalmerini/xsvn/internal/adapters/turso"
	"github.com/emiliopalmerini/xsvn/internal/config"
	"github.com/emiliopalmerini/xsvn/internal/logging"
	"github.com/emiliopalmerini/xsvn/internal/ports"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the decision audit log",
	Long:  `Inspect the decisions recorded by the pre-commit hook.`,
}

var auditListCmd = &cobra.Command{
	Use:   "list <config file>",
	Short: "List recent decisions",
	Long: `List recent hook decisions, newest first.

Examples:
  xsvn audit list project.yaml                 # Last 20 decisions
  xsvn audit list project.yaml -n 100          # Last 100 decisions
  xsvn audit list project.yaml --user alice    # Decisions for one committer
  xsvn audit list project.yaml --repo other    # Decisions for another repo_id`,
	Args: cobra.ExactArgs(1),
	RunE: runAuditList,
}

// Flags
var (
	auditLimit int64
	auditUser  string
	auditRepo  string
)

var errAuditDisabled = errors.New("audit log is disabled")

func init() {
	auditCmd.AddCommand(auditListCmd)
	addDecisionFilterFlags(auditListCmd.Flags())
}

func addDecisionFilterFlags(flags *pflag.FlagSet) {
	flags.Int64VarP(&auditLimit, "limit", "n", 20, "Number of decisions to show")
	flags.StringVarP(&auditUser, "user", "u", "", "Filter by committing user")
	flags.StringVar(&auditRepo, "repo", "", "Filter by repository ID (default: repo_id from the config)")
}

func runAuditList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	if !cfg.Audit.Enabled {
		return fmt.Errorf("%w in %s", errAuditDisabled, args[0])
	}

	logger, closeLog, err := logging.New(config.LogConfig{Level: cfg.Log.Level}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	db, err := turso.NewDB(ctx, auditDBConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer db.Close()

	repoID := auditRepo
	if repoID == "" {
		repoID = cfg.RepoID
	}
	logger.Debug("listing decisions", "repo_id", repoID, "user", auditUser, "limit", auditLimit)

	decisions, err := turso.NewDecisionRepository(db.DB).ListRecent(ctx, ports.DecisionFilter{
		RepositoryID: repoID,
		Username:     auditUser,
		Limit:        auditLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list decisions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(decisions) == 0 {
		fmt.Fprintln(out, "No decisions found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tUSER\tTX\tOUTCOME\tEXIT\tITEMS\tREASON")
	fmt.Fprintln(w, "--\t----\t----\t--\t-------\t----\t-----\t------")

	for _, d := range decisions {
		id := d.ID
		if len(id) > 8 {
			id = id[:8]
		}

		user := d.Username
		if user == "" {
			user = "-"
		}

		reason := "-"
		if len(d.Reasons) > 0 {
			reason = firstLine(d.Reasons[0])
			if len(d.Reasons) > 1 {
				reason = fmt.Sprintf("%s (+%d)", reason, len(d.Reasons)-1)
			}
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			id,
			d.DecidedAt.Local().Format("2006-01-02 15:04:05"),
			user,
			d.Transaction,
			d.Outcome,
			d.ExitCode,
			d.ItemCount,
			reason,
		)
	}

	w.Flush()

	fmt.Fprintf(out, "\nShowing %d decision(s)\n", len(decisions))
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	if len(line) > 60 {
		line = line[:57] + "..."
	}
	return line
}
