// Package cli implements the jobscript command tree.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/me/jobscript/internal/catalog"
	"github.com/me/jobscript/internal/config"
	"github.com/me/jobscript/internal/logging"
	"github.com/me/jobscript/pkg/jobtmpl"
)

var (
	flagConfig string
	flagDebug  bool

	logger   *slog.Logger
	settings *config.Config
)

// NewRootCmd creates the root cobra command for the jobscript CLI.
func NewRootCmd() *cobra.Command {
	v := config.New()

	root := &cobra.Command{
		Use:   "jobscript",
		Short: "Generate Slurm job scripts from command templates",
		Long: `jobscript resolves a command template against a job resource request and
a set of uploaded files, and prints a ready-to-submit Slurm batch script.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, flagConfig)
			if err != nil {
				return err
			}
			if flagDebug {
				cfg.Log.Level = "debug"
			}
			settings = cfg
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format, cmd.ErrOrStderr())
			return nil
		},
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (YAML, JSON or TOML)")
	pf.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	pf.String("catalog", "", "Template file or directory (or JOBSCRIPT_CATALOG env)")
	pf.String("image", "", "Apptainer image path (or JOBSCRIPT_IMAGE env)")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")
	pf.String("log-format", "", "Log format (text, json)")
	bindFlags(v, root, map[string]string{
		"catalog":    "catalog",
		"image":      "image",
		"log.level":  "log-level",
		"log.format": "log-format",
	})

	root.AddCommand(
		newTemplatesCmd(),
		newCommandCmd(),
		newGenerateCmd(),
		newPreviewCmd(),
		newMainExecCmd(),
		newTransformCmd(),
	)

	return root
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		// Lookup cannot fail for flags registered above.
		_ = v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag))
	}
}

// loadCatalog reads the configured template catalog.
func loadCatalog() (*catalog.Catalog, error) {
	loader, err := catalog.NewLoader(logger)
	if err != nil {
		return nil, err
	}
	return loader.Load(settings.Catalog)
}

// lookupTemplate loads the catalog and returns the template with id.
func lookupTemplate(id string) (*jobtmpl.CommandTemplate, error) {
	c, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	tmpl, ok := c.Get(id)
	if !ok {
		return nil, fmt.Errorf("template %q not found", id)
	}
	return tmpl, nil
}
