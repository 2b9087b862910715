package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/openmailtools/zmigrate/internal/account"
	"github.com/openmailtools/zmigrate/internal/artifact"
	"github.com/openmailtools/zmigrate/internal/config"
	"github.com/openmailtools/zmigrate/internal/dateutil"
	"github.com/openmailtools/zmigrate/internal/engine"
	"github.com/openmailtools/zmigrate/internal/logging"
	"github.com/openmailtools/zmigrate/internal/report"
	"github.com/openmailtools/zmigrate/internal/session"
	"github.com/openmailtools/zmigrate/internal/source"
	"github.com/openmailtools/zmigrate/internal/stores"
	"github.com/openmailtools/zmigrate/internal/transfer"
)

var (
	runSourceFile string
	runUseLdap    bool
	runFull       bool
	runIncr       bool
	runLdiff      bool
	runThreads    int
	runStoreIndex int
	runAtTime     string
	runMapping    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the migration for the selected accounts and phases",
	Long: `Loads the account list from a delimited file or the source directory
service, partitions it across the requested number of workers, and drives
every account through the selected migration types. Phases already recorded
in the session ledger are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if runSourceFile == "" && !runUseLdap {
			return fmt.Errorf("an account source is required: use --source <file> or --ldap")
		}
		if runSourceFile != "" && runUseLdap {
			return fmt.Errorf("--source and --ldap are mutually exclusive")
		}
		if !runFull && !runIncr && !runLdiff {
			return fmt.Errorf("at least one migration type is required: use --full, --incr or --ldiff")
		}
		if runThreads < 1 {
			return fmt.Errorf("invalid thread count %d", runThreads)
		}

		log := logging.Setup(cfg.Global.LogFile, cfg.Global.LogLevel)
		runID := uuid.NewString()
		log = log.With("run_id", runID)

		incrDate, err := resolveIncrDate(log)
		if err != nil {
			return err
		}

		// Working tree and session file must exist before the pool starts.
		store, err := artifact.New(cfg.Global.RootFolder)
		if err != nil {
			return err
		}
		ledger := session.New(cfg.SessionPath(), log)
		if err := store.Touch(ledger.Path()); err != nil {
			return err
		}

		accounts, err := loadAccounts(cmd, cfg, store.Root(), log)
		if err != nil {
			return fmt.Errorf("loading accounts: %w", err)
		}
		if len(accounts) == 0 {
			return fmt.Errorf("no accounts loaded")
		}

		targetStore, err := stores.Pick(cfg.Stores, runStoreIndex-1)
		if err != nil {
			return err
		}

		log.Info("starting migration",
			"accounts", len(accounts),
			"workers", runThreads,
			"ldiff", runLdiff, "full", runFull, "incr", runIncr)

		eng := &engine.Engine{
			Transfer:    transfer.New(cfg, store, &transfer.ExecRunner{Log: log}, log),
			Ledger:      ledger,
			TargetStore: targetStore,
			IncrDate:    incrDate,
			Log:         log,
		}
		pool := &engine.Pool{Engine: eng, Workers: runThreads}
		pool.Run(cmd.Context(), accounts, engine.Options{
			Ldiff: runLdiff,
			Full:  runFull,
			Incr:  runIncr,
		})

		log.Info("migration completed")

		p := &report.Printer{W: os.Stdout}
		p.PrintAll(report.Summarize(runID, accounts))
		return nil
	},
}

// resolveIncrDate turns the --at flag into the incremental window start:
// "cron" resolves automatically, anything else must be MM/DD/YYYY, and an
// empty flag leaves the per-account fallback in charge.
func resolveIncrDate(log *slog.Logger) (string, error) {
	if !runIncr || runAtTime == "" {
		return "", nil
	}

	date := runAtTime
	if date == "cron" {
		date = dateutil.AutoIncrDate(time.Now(), dateutil.DefaultDaysBack)
	} else if !dateutil.Valid(date) {
		return "", fmt.Errorf("invalid incremental date %q: use MM/DD/YYYY or 'cron'", date)
	}

	if ok, err := dateutil.ShouldRunIncremental(time.Now(), date); err == nil && !ok {
		log.Warn("incremental date is not in the past, delta window is empty", "date", date)
	}
	return date, nil
}

// loadAccounts builds the account list from the selected source.
func loadAccounts(cmd *cobra.Command, cfg *config.Config, root string, log *slog.Logger) ([]*account.Record, error) {
	var loader source.Loader
	if runUseLdap {
		loader = &source.DirectoryLoader{
			Directory:  cfg.Source.LDAP,
			Filter:     cfg.Source.LDAP.Filter,
			RootFolder: root,
			Log:        log,
		}
	} else {
		m, err := stores.LoadMap(runMapping, fallbackHost(cfg))
		if err != nil {
			return nil, err
		}
		log.Info("loaded store mapping", "file", runMapping, "mappings", m.Len())
		loader = &source.FileLoader{
			Path:       runSourceFile,
			Stores:     m,
			RootFolder: root,
			Log:        log,
		}
	}

	accounts, err := loader.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	log.Info("loaded accounts", "count", len(accounts))
	return accounts, nil
}

func init() {
	runCmd.Flags().StringVarP(&runSourceFile, "source", "s", "", "load accounts from a delimited file")
	runCmd.Flags().BoolVar(&runUseLdap, "ldap", false, "load accounts from the source directory service")
	runCmd.Flags().BoolVarP(&runFull, "full", "f", false, "perform full migration")
	runCmd.Flags().BoolVarP(&runIncr, "incr", "i", false, "perform incremental migration")
	runCmd.Flags().BoolVarP(&runLdiff, "ldiff", "l", false, "perform directory entry export/import")
	runCmd.Flags().IntVarP(&runThreads, "threads", "t", 1, "number of concurrent workers")
	runCmd.Flags().IntVarP(&runStoreIndex, "store", "d", 1, "destination store index (1-based)")
	runCmd.Flags().StringVar(&runAtTime, "at", "", "incremental date (MM/DD/YYYY) or 'cron' for automatic")
	runCmd.Flags().StringVar(&runMapping, "mapping", "mail_hosts.csv", "destination store mapping file")

	rootCmd.AddCommand(runCmd)
}
