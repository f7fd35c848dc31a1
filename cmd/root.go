package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/plyght/wax/pkg/bottle"
	"github.com/plyght/wax/pkg/installer"
	"github.com/plyght/wax/pkg/logging"
	"github.com/plyght/wax/pkg/metadata"
	"github.com/plyght/wax/pkg/state"
	"github.com/plyght/wax/pkg/tap"
	"github.com/plyght/wax/pkg/waxerr"
)

var (
	rootCmd *cobra.Command

	flagUser    bool
	flagGlobal  bool
	flagDryRun  bool
	flagVerbose bool

	metaClient   *metadata.Client
	formulaStore *state.Store
	caskStore    *state.Store
	tapRegistry  *tap.Registry
	orch         *installer.Orchestrator
)

func init() {
	cobra.EnableCommandSorting = false

	rootCmd = &cobra.Command{
		Use:           "wax <command> [args...]",
		Short:         "A fast, Homebrew-compatible package manager core",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
	}

	rootCmd.PersistentFlags().BoolVar(&flagUser, "user", false, "install into the user-local prefix")
	rootCmd.PersistentFlags().BoolVar(&flagGlobal, "global", false, "install into the global prefix")
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "plan only, make no filesystem or network changes")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "log at debug level to stderr")

	rootCmd.AddCommand(
		newUpdateCmd(),
		newSearchCmd(),
		newInfoCmd(),
		newListCmd(),
		newOutdatedCmd(),
		newInstallCmd(),
		newUninstallCmd(),
		newUpgradeCmd(),
		newLockCmd(),
		newSyncCmd(),
		newTapCmd(),
	)
}

// setup wires the global collaborators once flags are parsed, grounded on
// the teacher's rootCmd.PersistentPreRunE environment bootstrap.
func setup() error {
	level := zapcore.InfoLevel
	if flagVerbose {
		level = zapcore.DebugLevel
	}

	logDir, err := metadata.LogDir()
	if err != nil {
		return err
	}
	if err := logging.Init(logDir, level); err != nil {
		return err
	}

	metaClient, err = metadata.NewClient()
	if err != nil {
		return err
	}

	dataDir, err := state.DataDir()
	if err != nil {
		return err
	}
	formulaStore = state.NewFormulaStore(dataDir)
	caskStore = state.NewCaskStore(dataDir)
	tapRegistry = tap.NewRegistry(dataDir)

	orch = &installer.Orchestrator{
		Meta:         metaClient,
		FormulaStore: formulaStore,
		TmpDir:       os.TempDir(),
		Progress:     bottle.NewBarProgress(),
	}
	return nil
}

func installOptions() installer.Options {
	return installer.Options{User: flagUser, Global: flagGlobal, DryRun: flagDryRun}
}

// Execute runs the wax CLI, returning the process exit code (spec.md §6
// "Exit codes: 0 success, 1 general error, 2 usage error"). Wax core errors
// are rendered via waxerr.Render; cobra's own argument/flag errors print as
// given and count as usage errors.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if waxerr.TypeOf(err) == nil {
			fmt.Fprintln(os.Stderr, color.RedString(err.Error()))
			return 2
		}
		fmt.Fprintln(os.Stderr, color.RedString(waxerr.Render(err)))
		return 1
	}
	return 0
}
