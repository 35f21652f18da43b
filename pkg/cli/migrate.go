package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/cli/config"
	"github.com/sitelog/sitelog/pkg/repository/firestore"
	"github.com/sitelog/sitelog/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var target string
	var dryRun bool
	var status bool
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "target",
			Usage:       "Settings store to migrate (postgres or firestore)",
			Value:       config.BackendPostgres,
			Sources:     cli.EnvVars("SITELOG_MIGRATE_TARGET"),
			Destination: &target,
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Preview Firestore index changes without applying",
			Destination: &dryRun,
		},
		&cli.BoolFlag{
			Name:        "status",
			Usage:       "Print the current PostgreSQL schema version and exit",
			Destination: &status,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Prepare the settings store schema or indexes",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Migrate configuration",
				"target", target,
				"dryRun", dryRun,
				"status", status,
				"repository", repoCfg,
			)

			switch target {
			case config.BackendPostgres:
				return migratePostgres(ctx, &repoCfg, status)
			case config.BackendFirestore:
				return migrateFirestore(ctx, &repoCfg, dryRun)
			default:
				return goerr.Wrap(config.ErrInvalidConfig, "unsupported migrate target", goerr.V("target", target))
			}
		},
	}
}

func migratePostgres(ctx context.Context, repoCfg *config.Repository, status bool) error {
	logger := logging.Default()

	db, err := repoCfg.Postgres(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close postgres", "error", err.Error())
		}
	}()

	if !status {
		logger.Info("Applying migrations")
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	version, err := db.Version(ctx)
	if err != nil {
		return err
	}
	logger.Info("PostgreSQL schema version", "version", version)
	return nil
}

func migrateFirestore(ctx context.Context, repoCfg *config.Repository, dryRun bool) error {
	logger := logging.Default()

	projectID, databaseID, prefix, err := repoCfg.FirestoreTarget()
	if err != nil {
		return err
	}
	indexConfig := firestore.IndexConfig(prefix)

	client, err := fireconf.NewClient(ctx, projectID, databaseID)
	if err != nil {
		return goerr.Wrap(err, "failed to create fireconf client")
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close fireconf client", "error", err.Error())
		}
	}()

	if !dryRun {
		logger.Info("Applying index migrations")
		if err := client.Migrate(ctx, indexConfig); err != nil {
			return goerr.Wrap(err, "failed to apply migrations")
		}
		logger.Info("Migrations applied successfully")
		return nil
	}

	logger.Info("Dry run mode - previewing changes")
	plan, err := client.GetMigrationPlan(ctx, indexConfig)
	if err != nil {
		return goerr.Wrap(err, "failed to create migration plan")
	}
	if len(plan.Steps) == 0 {
		logger.Info("No changes required")
		return nil
	}
	for _, step := range plan.Steps {
		logger.Info("Migration step",
			"collection", step.Collection,
			"operation", step.Operation,
			"description", step.Description,
			"destructive", step.Destructive)
	}
	return nil
}
