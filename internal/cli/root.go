package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/deviceadmin/internal/app"
	"github.com/harrylevesque/deviceadmin/internal/config"
	"github.com/harrylevesque/deviceadmin/internal/utils"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// errNotAdmin makes `status` exit non-zero without printing an error.
var errNotAdmin = errors.New("not admin")

// env carries the wired app between PersistentPreRunE and the subcommands.
type env struct {
	configPath string
	output     string
	app        *app.App
	loadApp    func(configPath string) (*app.App, error)
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	return run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, loadApp)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, load func(string) (*app.App, error)) int {
	e := &env{loadApp: load}
	rootCmd := newRootCmd(e)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if e.app != nil {
		_ = e.app.Close()
		e.app.Log.Close()
	}
	if err == nil {
		return 0
	}
	if errors.Is(err, errNotAdmin) {
		return 1
	}
	if e.output == outputJSON {
		_ = printJSON(stdout, map[string]interface{}{"error": err.Error(), "code": utils.CodeOf(err)})
	} else {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}

func newRootCmd(e *env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "adminctl",
		Short:         "Inspect and grant device admin access",
		Long:          "adminctl reports this device's identifier and admin status, and grants admin access to it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if e.output != outputText && e.output != outputJSON {
				return fmt.Errorf("invalid --output %q: must be %q or %q", e.output, outputText, outputJSON)
			}
			a, err := e.loadApp(e.configPath)
			if err != nil {
				return err
			}
			e.app = a
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&e.configPath, "config", "", "Path to a config file (yaml, json, toml)")
	rootCmd.PersistentFlags().StringVarP(&e.output, "output", "o", outputText, "Output format: text|json")

	rootCmd.AddCommand(newIDCmd(e))
	rootCmd.AddCommand(newStatusCmd(e))
	rootCmd.AddCommand(newGrantCmd(e))
	rootCmd.AddCommand(newListCmd(e))
	return rootCmd
}

func loadApp(configPath string) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := utils.NewLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg, log)
	if err != nil {
		log.Close()
		return nil, err
	}
	return a, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
