// Package main provides the cloudey CLI entrypoint.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"cloudey/internal/api"
	"cloudey/internal/cache"
	"cloudey/internal/config"
	"cloudey/internal/costs"
	"cloudey/internal/render"
	"cloudey/internal/session"
	"cloudey/internal/telemetry"
	"cloudey/internal/tui"
)

var version = "0.1.0"

type app struct {
	cfg     *config.Config
	client  *api.Client
	store   *cache.Store
	manager *session.Manager
	logger  *slog.Logger
	out     *render.Renderer

	cfgPath  string
	cleanup  func()
	apiURL   string
	userID   int
	provider string
	debug    bool
	plain    bool
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "cloudey",
		Short: "Cloud cost intelligence in your terminal",
		Long: `Cloudey talks to your cost intelligence backend: browse the
dashboard, drill into compartment and service costs, review optimization
recommendations, and ask the AI agent questions about your spend.

Run with no arguments for the interactive interface, or use a subcommand
for one-shot output.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.cleanup != nil {
				a.cleanup()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "config file (default ~/.cloudey/config.toml)")
	flags.StringVar(&a.apiURL, "api-url", "", "backend base URL")
	flags.IntVar(&a.userID, "user", 0, "backend user id")
	flags.StringVar(&a.provider, "provider", "", "AI model provider (openai|anthropic)")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&a.plain, "plain", false, "disable colors and decorations")

	rootCmd.AddCommand(
		a.chatCmd(),
		a.dashboardCmd(),
		a.costsCmd(),
		a.recommendationsCmd(),
		a.syncCmd(),
		a.statsCmd(),
		a.healthCmd(),
		a.sessionsCmd(),
		a.configureCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// init loads configuration, applies flag overrides and wires the client
// stack shared by every command.
func (a *app) init(cmd *cobra.Command) error {
	path := a.cfgPath
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = defaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("api-url") {
		cfg.APIBaseURL = a.apiURL
	}
	if cmd.Flags().Changed("user") {
		cfg.UserID = a.userID
	}
	if cmd.Flags().Changed("provider") {
		cfg.Provider = a.provider
	}
	if a.debug {
		cfg.Debug = true
	}

	if cfg.Provider != config.ProviderOpenAI && cfg.Provider != config.ProviderAnthropic {
		return fmt.Errorf("unknown provider %q, expected openai or anthropic", cfg.Provider)
	}

	home, err := config.Home()
	if err != nil {
		return err
	}
	logger, err := telemetry.InitLogger(home, cfg.Debug)
	if err != nil {
		return err
	}
	tracer, meter, cleanup, err := telemetry.InitTelemetry(context.Background(), home)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	a.cleanup = cleanup

	client := api.NewClient(cfg.APIBaseURL, logger, tracer, meter)

	archive, err := telemetry.InitArchiveDB(filepath.Join(home, "archive.db"))
	if err != nil {
		logger.Warn("transcript archive unavailable", "error", err)
	}

	a.cfg = &cfg
	a.logger = logger
	a.client = client
	a.store = cache.New(5 * time.Minute)
	a.manager = session.NewManager(client, cfg.UserID, cfg.Provider, logger, archive)
	a.out = render.New(!a.plain)
	return nil
}

func (a *app) runTUI() error {
	m := tui.New(tui.Deps{
		Client:   a.client,
		Store:    a.store,
		Sessions: a.manager,
		Config:   a.cfg,
		Logger:   a.logger,
	})
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (a *app) chatCmd() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask the AI agent a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID != "" {
				a.manager.Switch(sessionID)
			} else {
				a.manager.StartNew()
			}
			question := strings.Join(args, " ")

			if err := a.manager.Send(cmd.Context(), question); err != nil {
				return err
			}
			messages := a.manager.Messages()
			last := messages[len(messages)-1]
			if last.Role == session.RoleError {
				return fmt.Errorf("%s", last.Content)
			}
			fmt.Println(last.Content)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "continue an existing conversation")
	return cmd
}

func (a *app) dashboardCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the cost dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.client.Dashboard(cmd.Context(), a.cfg.UserID, force)
			if err != nil {
				return err
			}
			fmt.Print(a.out.Dashboard(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force-refresh", false, "bypass the backend cache")
	return cmd
}

func (a *app) costsCmd() *cobra.Command {
	var force bool
	var csvOut string
	cmd := &cobra.Command{
		Use:   "costs",
		Short: "Show detailed costs by compartment and service",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.client.DetailedCosts(cmd.Context(), a.cfg.UserID, force)
			if err != nil {
				return err
			}
			if csvOut != "" {
				return a.exportCosts(data, csvOut)
			}
			fmt.Print(a.out.Costs(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force-refresh", false, "bypass the backend cache")
	cmd.Flags().StringVar(&csvOut, "csv", "", "write the compartment table to a CSV file instead")
	return cmd
}

func (a *app) recommendationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recommendations",
		Aliases: []string{"recs"},
		Short:   "Show optimization insights and recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.client.Recommendations(cmd.Context(), a.cfg.UserID)
			if err != nil {
				return err
			}
			fmt.Print(a.out.Recommendations(data))
			return nil
		},
	}
	return cmd
}

func (a *app) syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [metrics|resources]",
		Short: "Trigger a backend data refresh",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := "metrics"
			if len(args) == 1 {
				kind = args[0]
			}

			var resp *api.SyncResponse
			var err error
			switch kind {
			case "metrics":
				resp, err = a.client.SyncMetrics(cmd.Context(), a.cfg.UserID)
			case "resources":
				resp, err = a.client.SyncResources(cmd.Context(), a.cfg.UserID)
			default:
				return fmt.Errorf("unknown sync target %q, expected metrics or resources", kind)
			}
			if err != nil {
				return err
			}
			fmt.Print(a.out.Sync(kind, resp))
			return nil
		},
	}
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show discovered resource counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.client.ResourceStats(cmd.Context(), a.cfg.UserID)
			if err != nil {
				return err
			}
			fmt.Printf("resources: %d total, %d active\n",
				stats.TotalResourcesSaved, stats.ActiveResources)
			return nil
		},
	}
}

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.client.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("backend unreachable: %w", err)
			}
			fmt.Print(a.out.Health(h, nil))
			return nil
		},
	}
}

// exportCosts writes the compartment table, hidden identifiers included,
// to a CSV file.
func (a *app) exportCosts(data *api.DetailedCosts, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := costs.CompartmentTable(data).ExportCSV(f); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func (a *app) configureCmd() *cobra.Command {
	var cfg api.OCIConfig
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Upload provider credentials to the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Email == "" || cfg.TenancyOCID == "" || cfg.UserOCID == "" ||
				cfg.Fingerprint == "" || cfg.Region == "" || cfg.PrivateKeyPath == "" {
				return fmt.Errorf("all credential flags are required")
			}
			if err := a.client.UploadOCIConfig(cmd.Context(), cfg); err != nil {
				return err
			}
			fmt.Println("credentials saved, run 'cloudey sync' to load fresh data")
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&cfg.Email, "email", "", "account email")
	flags.StringVar(&cfg.TenancyOCID, "tenancy", "", "tenancy OCID")
	flags.StringVar(&cfg.UserOCID, "user-ocid", "", "user OCID")
	flags.StringVar(&cfg.Fingerprint, "fingerprint", "", "API key fingerprint")
	flags.StringVar(&cfg.Region, "region", "", "home region")
	flags.StringVar(&cfg.PrivateKeyPath, "key-file", "", "path to the private key file")
	return cmd
}

func (a *app) sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List saved conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := a.manager.Sessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("no saved conversations")
				return nil
			}
			for _, s := range sessions {
				fmt.Printf("%-40s %-40s %s\n", s.ID, s.Title, s.UpdatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.manager.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	})
	return cmd
}
