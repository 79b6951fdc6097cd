package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"manimwatch/internal/app"
	"manimwatch/internal/config"
	"manimwatch/internal/render"
)

type rootFlags struct {
	dir        string
	quality    string
	configFile string
	logFile    string
	debug      bool
}

var flags rootFlags

var rootCmd = &cobra.Command{
	Use:   "manimwatch [dir]",
	Short: "manimwatch – re-render manim scenes on save",
	Long: "manimwatch watches a directory for changes to Python files and re-runs " +
		"the manim renderer with a live preview whenever one is saved.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := resolveOptions(cmd, flags, args)
		if err != nil {
			return err
		}
		return app.Start(opts)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&flags.configFile, "config", "", "config file (default <config dir>/manimwatch/config.yaml)")
	f.StringVar(&flags.logFile, "log-file", "", "log file while the UI runs (default <config dir>/manimwatch/manimwatch.log)")
	f.BoolVar(&flags.debug, "debug", false, "log at debug level")

	rootCmd.Flags().StringVarP(&flags.dir, "dir", "d", "", "directory to watch (default current directory)")
	rootCmd.Flags().StringVarP(&flags.quality, "quality", "q", "", "initial quality: l, m, h, p, k or 480p…4K")
}

// resolveOptions merges the config file with flags; flags win.
func resolveOptions(cmd *cobra.Command, f rootFlags, args []string) (app.Options, error) {
	cfg, err := loadConfig(f.configFile)
	if err != nil {
		return app.Options{}, err
	}

	if cmd.Flags().Changed("quality") {
		q, err := render.ParseQuality(f.quality)
		if err != nil {
			return app.Options{}, err
		}
		cfg.Renderer.Quality = q.Symbol()
	}

	dir := cfg.Watch.Dir
	switch {
	case len(args) == 1 && f.dir != "":
		return app.Options{}, fmt.Errorf("give the directory either as an argument or with --dir, not both")
	case len(args) == 1:
		dir = args[0]
	case f.dir != "":
		dir = f.dir
	}
	if dir != "" {
		st, err := os.Stat(dir)
		if err != nil {
			return app.Options{}, err
		}
		if !st.IsDir() {
			return app.Options{}, fmt.Errorf("%s is not a directory", dir)
		}
	}

	logFile := strings.TrimSpace(f.logFile)
	if logFile == "" {
		if p, err := config.LogPath(); err == nil {
			logFile = p
		}
	}
	return app.Options{Dir: dir, Config: cfg, LogFile: logFile, Debug: f.debug}, nil
}

func loadConfig(path string) (config.Config, error) {
	if strings.TrimSpace(path) == "" {
		p, err := config.Path()
		if err != nil {
			return config.Default(), nil
		}
		path = p
	}
	return config.Load(path)
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
