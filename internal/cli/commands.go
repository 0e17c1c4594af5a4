package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dyike/EquilibriumGo/config"
	"github.com/dyike/EquilibriumGo/internal/display"
	"github.com/dyike/EquilibriumGo/internal/logging"
	"github.com/dyike/EquilibriumGo/internal/utils"
	"github.com/dyike/EquilibriumGo/pkg/app"
	"github.com/dyike/EquilibriumGo/pkg/equilibrium"
	"github.com/dyike/EquilibriumGo/pkg/models"
)

const version = "v1.0.0"

// session holds what the persistent pre-run resolves for a command.
type session struct {
	configPath string
	debug      bool
	logLevel   string
	prompter   Prompter

	// overrides apply command-line flags on top of file and environment.
	overrides []func(*config.Config)
	manager   *config.Manager
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(NewSurveyPrompter())
}

func newRootCmd(prompter Prompter) *cobra.Command {
	s := &session{prompter: prompter}
	var output outputOptions

	rootCmd := &cobra.Command{
		Use:   "equilibriumgo",
		Short: "EquilibriumGo - supply and demand equilibrium finder",
		Long: `EquilibriumGo fits a linear supply curve and a power-law demand curve to
observed price/quantity points and finds the market equilibrium price and quantity.

Without a subcommand it starts an interactive session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return s.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: start interactive mode
			rt, err := s.startRuntime(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer rt.Close()
			return NewInteractiveSession(rt, s.prompter, cmd.OutOrStdout(), output).Start()
		},
	}
	output.addFlags(rootCmd.Flags())

	rootCmd.AddCommand(newAnalyzeCmd(s))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(s))

	// Global flags
	rootCmd.PersistentFlags().StringVar(&s.configPath, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&s.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&s.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	return rootCmd
}

func (s *session) init(cmd *cobra.Command) error {
	config.LoadDotEnv()

	flags := cmd.Flags()
	if flags.Changed("debug") {
		s.overrides = append(s.overrides, func(c *config.Config) { c.Debug = s.debug })
	}
	if flags.Changed("log-level") {
		s.overrides = append(s.overrides, func(c *config.Config) { c.LogLevel = s.logLevel })
	}

	mgr, err := config.NewManager(
		config.WithConfigPath(s.configPath),
		config.WithLogger(logrus.WithField("component", "config")),
	)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	s.manager = mgr

	cfg := s.effective(mgr.Get())
	if _, err := logging.Setup(cfg.LogLevel, cfg.Debug, cmd.ErrOrStderr()); err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	return nil
}

// effective layers environment variables and flags over a file config.
func (s *session) effective(cfg config.Config) config.Config {
	cfg.ApplyEnv()
	for _, apply := range s.overrides {
		apply(&cfg)
	}
	return cfg
}

// startRuntime builds the engine and keeps it current with the config file.
// Reloads after the first build are announced on w.
func (s *session) startRuntime(w io.Writer) (*app.Runtime, error) {
	return app.NewRuntime(s.manager,
		app.WithLogger(logrus.WithField("component", "runtime")),
		app.WithBuilder(func(cfg config.Config) (*app.Engine, error) {
			return app.BuildEngine(s.effective(cfg))
		}),
		app.WithNotifier(func(topic, payload string) {
			announceReload(w, topic, payload)
		}),
	)
}

func announceReload(w io.Writer, topic, payload string) {
	switch topic {
	case app.TopicReloaded:
		var ev app.ReloadEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return
		}
		DisplayInfo(w, fmt.Sprintf("Configuration reloaded (method %s, step %v)", ev.Method, ev.Step))
	case app.TopicReloadFailed:
		DisplayWarning(w, "edited configuration could not be applied, keeping the previous one")
	}
}

// newAnalyzeCmd creates the analyze command
func newAnalyzeCmd(s *session) *cobra.Command {
	var (
		supplyText, demandText string
		supplyFile, demandFile string
		queries                []float64
		method                 string
		step                   float64
		output                 outputOptions
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Fit both curves and find the equilibrium without prompting",
		Long: `Fit the supply and demand curves to the given points and print the equilibrium.
Example: equilibriumgo analyze --supply "1,1;2,2;3,3" --demand "1,10;2,5;4,2.5" --query 2`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("method") {
				if _, err := equilibrium.ParseMethod(method); err != nil {
					return err
				}
				s.overrides = append(s.overrides, func(c *config.Config) { c.SolverMethod = method })
			}
			if cmd.Flags().Changed("step") {
				s.overrides = append(s.overrides, func(c *config.Config) { c.SearchStep = step })
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			supply, err := loadPoints("supply", supplyText, supplyFile)
			if err != nil {
				return err
			}
			demand, err := loadPoints("demand", demandText, demandFile)
			if err != nil {
				return err
			}

			rt, err := s.startRuntime(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer rt.Close()
			return runAnalyzeCommand(cmd.OutOrStdout(), rt.Engine(), supply, demand, queries, output)
		},
	}

	// Analyze command flags
	cmd.Flags().StringVar(&supplyText, "supply", "", `Supply points as "price,quantity;price,quantity;..."`)
	cmd.Flags().StringVar(&demandText, "demand", "", `Demand points as "price,quantity;price,quantity;..."`)
	cmd.Flags().StringVar(&supplyFile, "supply-file", "", "CSV file of supply price,quantity rows")
	cmd.Flags().StringVar(&demandFile, "demand-file", "", "CSV file of demand price,quantity rows")
	cmd.Flags().Float64SliceVar(&queries, "query", nil, "Price to evaluate both curves at (repeatable)")
	cmd.Flags().StringVar(&method, "method", "", "Equilibrium search method (grid or bisect)")
	cmd.Flags().Float64Var(&step, "step", 0, "Grid search price step")
	output.addFlags(cmd.Flags())

	cmd.MarkFlagsMutuallyExclusive("supply", "supply-file")
	cmd.MarkFlagsMutuallyExclusive("demand", "demand-file")
	cmd.MarkFlagsOneRequired("supply", "supply-file")
	cmd.MarkFlagsOneRequired("demand", "demand-file")

	return cmd
}

func loadPoints(label, text, file string) (models.Points, error) {
	var (
		points models.Points
		err    error
	)
	if file != "" {
		points, err = utils.ReadPointsCSV(file)
	} else {
		points, err = models.ParsePoints(text)
	}
	if err != nil {
		return nil, fmt.Errorf("%s points: %w", label, err)
	}
	return points, nil
}

// runAnalyzeCommand executes one analysis and writes the requested outputs.
// A missing equilibrium is reported after the outputs are written.
func runAnalyzeCommand(w io.Writer, engine *app.Engine, supply, demand models.Points, queries []float64, output outputOptions) error {
	analysis, err := engine.Analyze(supply, demand)
	if analysis == nil {
		return err
	}
	if err != nil && !errors.Is(err, equilibrium.ErrNoEquilibrium) {
		return err
	}
	searchErr := err

	d := display.NewResultsDisplay(w)
	d.DisplayAnalysisResults(analysis)

	quotes := make([]app.Quote, 0, len(queries))
	for _, price := range queries {
		quote, err := analysis.Query(price)
		if err != nil {
			DisplayError(w, err)
			continue
		}
		quotes = append(quotes, quote)
		d.DisplayQuote(quote)
	}

	if err := renderChart(w, engine, analysis, output); err != nil {
		return err
	}
	if err := exportResults(w, engine, analysis, quotes, output); err != nil {
		return err
	}
	return searchErr
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "EquilibriumGo %s\n", version)
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(s *session) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Inspect the EquilibriumGo configuration file and its effective values",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := s.effective(s.manager.Get())
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := s.effective(s.manager.Get())
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration is invalid: %w", err)
			}
			DisplaySuccess(cmd.OutOrStdout(), "Configuration is valid")
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set KEY=VALUE...",
		Short: "Change settings in the configuration file",
		Long: `Change one or more settings, for example:
  equilibriumgo config set solver_method=bisect search_step=0.001
A running interactive session picks the change up for its next analysis.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.manager.Set(args...); err != nil {
				return err
			}
			DisplaySuccess(cmd.OutOrStdout(), fmt.Sprintf("Updated %s", s.manager.Path()))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.manager.Reset(); err != nil {
				return err
			}
			DisplaySuccess(cmd.OutOrStdout(), "Configuration reset to defaults")
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), s.manager.Path())
		},
	})

	return configCmd
}
