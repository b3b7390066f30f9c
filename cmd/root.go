package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/config"
	"github.com/abhisek/qbank/internal/llm"
	"github.com/abhisek/qbank/internal/logger"
	"github.com/abhisek/qbank/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "qbank",
	Short: "Stratified question bank with AI backfill",
	Long: `qbank serves difficulty-balanced samples of multiple-choice, interview and
coding questions per domain, generating and persisting new items with an LLM
whenever a difficulty tier runs short.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("db", "", "Database DSN or SQLite path (overrides QBANK_DB env var)")
	rootCmd.PersistentFlags().String("driver", "", "Database driver: sqlite or postgres (overrides QBANK_DB_DRIVER)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(inventoryCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// runtime is what every command that touches the bank needs.
type runtime struct {
	cfg   *config.Config
	log   *logger.Logger
	store *store.Store
}

// setup loads configuration (file, env, then flags), builds the logger and
// opens the store.
func setup(cmd *cobra.Command) (*runtime, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DB.DSN = v
	}
	if v, _ := cmd.Flags().GetString("driver"); v != "" {
		cfg.DB.Driver = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dsn, err := resolveDSN(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("resolve database: %w", err)
	}
	st, err := store.Open(cmd.Context(), cfg.DB.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &runtime{cfg: cfg, log: log, store: st}, nil
}

func (r *runtime) Close() {
	r.store.Close()
	r.log.Sync()
}

// service builds the bank service. With generate set, a missing or broken
// LLM configuration is an error; otherwise it degrades to a read-only bank.
func (r *runtime) service(ctx context.Context, generate bool) (*bank.Service, error) {
	var gen bank.Generator
	provider, err := llm.NewProvider(ctx, r.cfg.LLMConfig(), r.store.EventRepo(), r.log)
	switch {
	case err == nil:
		gen = bank.NewLLMGenerator(provider, r.cfg.BankConfig(), r.log)
	case generate:
		return nil, fmt.Errorf("LLM provider: %w", err)
	default:
		r.log.Warn("LLM provider not configured, serving existing items only", "error", err)
	}
	return bank.NewService(r.store, gen, r.cfg.BankConfig(), r.log), nil
}

// resolveDSN fills in the default SQLite path and makes sure the parent
// directory of a file database exists.
func resolveDSN(db config.DBConfig) (string, error) {
	driver := strings.ToLower(db.Driver)
	isSQLite := driver == "" || driver == store.DriverSQLite || driver == "sqlite3"
	if !isSQLite {
		return db.DSN, nil
	}
	if db.DSN == "" {
		return store.DefaultDBPath()
	}
	if strings.HasPrefix(db.DSN, "file:") || db.DSN == ":memory:" {
		return db.DSN, nil
	}
	return db.DSN, store.EnsureDir(db.DSN)
}

func kindFlag(cmd *cobra.Command) (bank.Kind, error) {
	name, _ := cmd.Flags().GetString("kind")
	kind, ok := bank.LookupKind(name)
	if !ok {
		var names []string
		for _, k := range bank.Kinds() {
			names = append(names, k.Name)
		}
		return bank.Kind{}, fmt.Errorf("unknown kind %q: must be one of %s", name, strings.Join(names, ", "))
	}
	return kind, nil
}

func addKindFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("kind", "k", bank.KindMCQ.Name, "Item kind: mcq, interview or coding")
}
