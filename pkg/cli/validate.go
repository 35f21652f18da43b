package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/cli/config"
	"github.com/sitelog/sitelog/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var offline bool
	var siteCfg config.Site
	var backendCfg config.Backend

	var flags []cli.Flag
	flags = append(flags, siteCfg.Flags()...)
	flags = append(flags, backendCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "offline",
		Usage:       "Skip the backend reachability check",
		Destination: &offline,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the site config file and optionally check the backend",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			// Step 1: site config file
			if siteCfg.ConfigPath() == "" {
				logger.Info("No site config specified, built-in defaults apply")
			} else {
				s, err := siteCfg.LoadDefaults()
				if err != nil {
					return goerr.Wrap(err, "site config validation failed")
				}
				logger.Info("Site config validation passed",
					"path", siteCfg.ConfigPath(),
					"site_name", s.General.SiteName,
					"project_type", s.General.ProjectType,
				)
			}

			// Step 2: backend
			if offline {
				logger.Info("Offline mode, skipping backend check")
				return nil
			}

			client, err := backendCfg.Configure("sitelog-cli")
			if err != nil {
				return err
			}
			index, err := client.GetReports(ctx)
			if err != nil {
				return goerr.Wrap(err, "backend check failed", goerr.V("api", backendCfg.BaseURL()))
			}

			logger.Info("Backend check passed",
				"api", backendCfg.BaseURL(),
				"report_types", len(index.ReportTypes),
				"saved_reports", len(index.SavedReports),
			)
			return nil
		},
	}
}
