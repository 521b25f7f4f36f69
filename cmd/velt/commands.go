package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Altagen/Velt/pkg/autosave"
	"github.com/Altagen/Velt/pkg/config"
	"github.com/Altagen/Velt/pkg/dialog"
	"github.com/Altagen/Velt/pkg/fileio"
	"github.com/Altagen/Velt/pkg/logging"
	"github.com/Altagen/Velt/pkg/recent"
	"github.com/Altagen/Velt/pkg/render"
	"github.com/Altagen/Velt/pkg/theme"
	"github.com/Altagen/Velt/pkg/workspace"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	// Global flags
	configPath string
	themeName  string
	verbose    bool

	// render flags
	renderTerminal bool
	renderWidth    int
)

// rootCmd opens the editor on the given files
var rootCmd = &cobra.Command{
	Use:   "velt [files...]",
	Short: "Velt - terminal Markdown editor",
	Long: `Velt is a Markdown and text editor with tabs, a split view and a live
preview pane. Changes are saved automatically after a short pause.`,
	RunE:         runEdit,
	SilenceUsage: true,
}

// renderCmd renders a Markdown file without opening the editor
var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render Markdown to HTML",
	Long:  "Render a Markdown file (or stdin) to sanitized HTML, or to styled terminal output with --terminal.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRender,
}

// configCmd manages the configuration file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  "Show the effective configuration, print its path, or write a default file.",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(cfg.App(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.Path())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long:  "Create the configuration directory, config.json and the built-in themes if they are missing.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		if err := cfg.Initialize(); err != nil {
			return err
		}
		if err := theme.NewStore(cfg.ThemesDir(), nil).EnsureDefaults(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration ready at %s\n", cfg.Path())
		return nil
	},
}

// themesCmd manages colour themes
var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "Manage colour themes",
}

var themesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available themes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		store := theme.NewStore(cfg.ThemesDir(), nil)
		if err := store.EnsureDefaults(); err != nil {
			return err
		}
		names, err := store.List()
		if err != nil {
			return err
		}

		configured := cfg.App().Theme
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Available themes (%d):\n", len(names))
		for _, name := range names {
			marker := " "
			if name == configured {
				marker = "*"
			}
			fmt.Fprintf(out, " %s %s\n", marker, name)
		}
		if verbose {
			fmt.Fprintf(out, "\nThemes directory: %s\n", store.Dir())
		}
		return nil
	},
}

// recentCmd manages the recent files list
var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Manage recently opened files",
}

var recentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recently opened files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		files := recent.New(cfg, config.MaxRecentFiles, nil).All()
		if len(files) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No recent files.")
			return nil
		}
		for i, path := range files {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s\n", i+1, path)
		}
		return nil
	},
}

var recentClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget recently opened files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		recent.New(cfg, config.MaxRecentFiles, nil).Clear()
		fmt.Fprintln(cmd.OutOrStdout(), "Recent files cleared.")
		return nil
	},
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Velt %s\n", version)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default $VELT_CONFIG_HOME/config.json)")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "", "Theme name, overrides the configured theme")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	renderCmd.Flags().BoolVarP(&renderTerminal, "terminal", "t", false, "Render styled terminal output instead of HTML")
	renderCmd.Flags().IntVarP(&renderWidth, "width", "w", 80, "Word wrap column for --terminal")

	// Add subcommands
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(themesCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(versionCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)

	themesCmd.AddCommand(themesListCmd)

	recentCmd.AddCommand(recentListCmd)
	recentCmd.AddCommand(recentClearCmd)
}

// runEdit wires the workspace and starts the TUI
func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	// The default file is written on first run so it can be watched
	if err := cfg.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	} else if err := cfg.LoadFile(cfg.Path()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	// The TUI owns the terminal, so logs go to a file next to the config
	logFile, err := logging.OpenFile(filepath.Join(filepath.Dir(cfg.Path()), "velt.log"))
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := newLogger(cfg, logFile)

	app := cfg.App()

	themes := theme.NewStore(cfg.ThemesDir(), logger)
	if err := themes.EnsureDefaults(); err != nil {
		logger.Warn("Failed to write default themes", "error", err)
	}
	current := themes.LoadCurrent(app.Theme)
	if themeName != "" {
		t, err := themes.Load(themeName)
		if err != nil {
			return fmt.Errorf("failed to load theme: %w", err)
		}
		current = t
	}

	store := fileio.NewStore(logger)
	ws := workspace.New(workspace.Options{
		Persister: store,
		Reader:    store,
		Dialogs:   dialog.New(store, logger),
		Renderer:  render.NewHTML(),
		Recent:    recent.New(cfg, config.MaxRecentFiles, logger),
		AutoSave: autosave.Options{
			Delay:   app.AutoSaveInterval(),
			Enabled: app.AutoSave,
		},
		Logger: logger,
	})

	for _, path := range args {
		if _, err := ws.OpenPath(ctx, path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	if len(ws.Snapshot().Documents) == 0 {
		ws.NewDocument()
	}

	logger.Info("Starting editor", "files", len(args), "config", cfg.Path())
	return runTUI(ctx, ws, cfg, themes, current, logger)
}

// runRender prints a rendered Markdown file
func runRender(cmd *cobra.Command, args []string) error {
	var source string
	if len(args) == 1 {
		f, err := fileio.NewStore(nil).Read(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		source = f.Content
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		content, _, err := fileio.Decode(data)
		if err != nil {
			return err
		}
		source = content
	}

	var (
		out string
		err error
	)
	if renderTerminal {
		style := "dark"
		if cfg, cerr := loadConfig(nil); cerr == nil {
			if t, terr := theme.NewStore(cfg.ThemesDir(), nil).Load(cfg.App().Theme); terr == nil && !t.IsDark() {
				style = "light"
			}
		}
		term, terr := render.NewTerminal(style, renderWidth)
		if terr != nil {
			return terr
		}
		out, err = term.Render(source)
	} else {
		out, err = render.NewHTML().Render(source)
	}
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// loadConfig loads the file named by --config, or the default location
func loadConfig(logger *slog.Logger) (*config.Config, error) {
	cfg, err := config.Load(configPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the file logger. --verbose forces debug level.
func newLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	if !verbose {
		return logging.LoggerFromConfig(cfg, out)
	}
	return logging.NewLogger(logging.LoggerConfig{
		Level:  logging.LogLevelDebug,
		Format: cfg.App().Log.Format,
		Output: out,
	})
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
