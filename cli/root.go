// ABOUTME: Root cobra command, global flags and the per-command runtime
// ABOUTME: The runtime wires config, logging, the local database and the API client into page deps
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harperreed/zala/api"
	"github.com/harperreed/zala/config"
	"github.com/harperreed/zala/db"
	"github.com/harperreed/zala/logging"
	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/pages"
	"github.com/harperreed/zala/state"
)

type globalFlags struct {
	configPath string
	dbPath     string
	verbose    bool
}

// NewRootCommand builds the zala command tree.
func NewRootCommand(version string) *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "zala",
		Short: "Zala lead generation from the terminal",
		Long: `zala finds real-estate leads, turns them into outreach campaigns and
tracks them on kanban boards.

Run 'zala login' first, then 'zala search <location>' or 'zala tui'.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (default: "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&g.dbPath, "db-path", "", "Local database path (default: "+db.DefaultPath()+")")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newSignupCmd(g),
		newLoginCmd(g),
		newLogoutCmd(g),
		newWhoamiCmd(g),
		newSearchCmd(g),
		newHistoryCmd(g),
		newCampaignCmd(g),
		newDraftsCmd(g),
		newBoardCmd(g),
		newVizCmd(g),
		newTUICmd(g),
		newMCPCmd(g),
		newCleanupCmd(g),
		newWebCmd(g),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, version string) int {
	root := NewRootCommand(version)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		return 1
	}
	return 0
}

// runtime is everything a command needs, opened per invocation.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	sqlDB  *sql.DB
	store  *db.Store
	deps   pages.Deps
	out    io.Writer
}

type openOptions struct {
	// logToFile keeps stdout and stderr free for a UI or a protocol.
	logToFile bool
	notifier  pages.Notifier
}

func (g *globalFlags) open(cmd *cobra.Command, opts openOptions) (*runtime, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.dbPath != "" {
		cfg.Database.Path = g.dbPath
	}

	logOpts := logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Verbose: g.verbose}
	if opts.logToFile {
		logOpts.Path = logging.DefaultFilePath()
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.OpenDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := db.NewStore(sqlDB)

	deviceID, err := store.DeviceID(cmd.Context())
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to read device id: %w", err)
	}

	client := api.New(cfg.API.URL,
		api.WithLogger(logger),
		api.WithDeviceID(deviceID),
		api.WithTimeout(cfg.API.Timeout),
	)
	logger.Debug("runtime ready",
		zap.String("api", cfg.API.URL),
		zap.String("env", cfg.API.Env),
		zap.String("db", cfg.Database.Path))

	notify := opts.notifier
	if notify == nil {
		notify = &printNotifier{w: cmd.ErrOrStderr()}
	}
	return &runtime{
		cfg:    cfg,
		logger: logger,
		sqlDB:  sqlDB,
		store:  store,
		out:    cmd.OutOrStdout(),
		deps: pages.Deps{
			API:           client,
			App:           state.NewApp(cfg.UI.SideNavDelay),
			Notify:        notify,
			Logger:        logger,
			Session:       store,
			AutosaveDelay: cfg.UI.AutosaveDelay,
		},
	}, nil
}

func (rt *runtime) Close() {
	rt.deps.App.SideNav.Stop()
	_ = rt.logger.Sync()
	_ = rt.sqlDB.Close()
}

// login restores the saved session and fails when there is none.
func (rt *runtime) login(ctx context.Context) (*models.User, error) {
	user, err := pages.NewAuthController(rt.deps).AutoLogin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: run 'zala login' first", pages.ErrNotLoggedIn)
	}
	return user, nil
}

// withUser opens the runtime, restores the session and runs fn.
func (g *globalFlags) withUser(cmd *cobra.Command, fn func(rt *runtime) error) error {
	rt, err := g.open(cmd, openOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()
	if _, err := rt.login(cmd.Context()); err != nil {
		return err
	}
	return fn(rt)
}

// printNotifier shows controller messages on stderr.
type printNotifier struct {
	w io.Writer
}

func (n *printNotifier) Success(msg string) {
	fmt.Fprintln(n.w, color.GreenString("✓ %s", msg))
}

func (n *printNotifier) Error(msg string) {
	fmt.Fprintln(n.w, color.YellowString("! %s", msg))
}

func parseID(what, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %s", what, s)
	}
	return id, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
