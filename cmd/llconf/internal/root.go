package internal

import (
	"errors"
	"fmt"
	"os"

	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"

	"github.com/goplus/llconf/internal/config"
)

var (
	debug      bool
	configPath string
	workDir    string
)

var rootCmd = &cobra.Command{
	Use:   "llconf",
	Short: "llconf probes the host for optional build dependencies",
	Long: `llconf checks which optional native libraries and tools are available,
records the flags and build steps they unlock, and packages the results.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			log.SetOutputLevel(log.Ldebug)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Print diagnostic tracing")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.FileName, "Configuration file")
	rootCmd.PersistentFlags().StringVar(&workDir, "dir", "", "Work directory (overrides the configuration file)")
}

// exitError ends the process with code without printing anything more.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		log.Fatal(err)
	}
}

// loadConfig reads the configuration file, applying the --dir override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	if workDir != "" {
		cfg.WorkDir = workDir
	}
	return cfg, nil
}
