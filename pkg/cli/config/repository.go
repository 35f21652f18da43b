package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/domain/interfaces"
	"github.com/sitelog/sitelog/pkg/repository/firestore"
	"github.com/sitelog/sitelog/pkg/repository/memory"
	"github.com/sitelog/sitelog/pkg/repository/postgres"
	"github.com/sitelog/sitelog/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
)

// Repository holds CLI flags for the settings store
type Repository struct {
	backend         string
	projectID       string
	databaseID      string
	credentialsFile string
	collectionPfx   string
	postgresDSN     string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Settings store backend (memory, firestore or postgres)",
			Category:    "Repository",
			Value:       BackendMemory,
			Sources:     cli.EnvVars("SITELOG_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("SITELOG_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("SITELOG_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-credentials-file",
			Usage:       "Service account JSON for Firestore (application default credentials when empty)",
			Category:    "Repository",
			Sources:     cli.EnvVars("SITELOG_FIRESTORE_CREDENTIALS_FILE"),
			Destination: &r.credentialsFile,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix for Firestore collection names",
			Category:    "Repository",
			Sources:     cli.EnvVars("SITELOG_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPfx,
		},
		&cli.StringFlag{
			Name:        "postgres-dsn",
			Usage:       "PostgreSQL connection string (required when using postgres backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("SITELOG_POSTGRES_DSN"),
			Destination: &r.postgresDSN,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("project_id", r.projectID),
		slog.String("database_id", r.databaseID),
		slog.Bool("postgres_dsn", r.postgresDSN != ""),
	)
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// FirestoreTarget returns the project, database and collection prefix the
// firestore backend would use.
func (r *Repository) FirestoreTarget() (projectID, databaseID, prefix string, err error) {
	if r.projectID == "" {
		return "", "", "", goerr.Wrap(ErrMissingRequired, "firestore-project-id is required", goerr.V(FlagKey, "firestore-project-id"))
	}
	return r.projectID, r.databaseID, r.collectionPfx, nil
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingRequired, "firestore-project-id is required when using firestore backend", goerr.V(FlagKey, "firestore-project-id"))
		}
		var opts []firestore.Option
		if r.collectionPfx != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.collectionPfx))
		}
		if r.credentialsFile != "" {
			opts = append(opts, firestore.WithCredentialsFile(r.credentialsFile))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendPostgres:
		repo, err := r.Postgres(ctx)
		if err != nil {
			return nil, err
		}
		logging.Default().Info("Using PostgreSQL repository")
		return repo, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (settings are lost on restart)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid repository backend", goerr.V("backend", r.backend))
	}
}

// Postgres opens the PostgreSQL store directly, for commands that manage its schema.
func (r *Repository) Postgres(ctx context.Context) (*postgres.Postgres, error) {
	if r.postgresDSN == "" {
		return nil, goerr.Wrap(ErrMissingRequired, "postgres-dsn is required when using postgres backend", goerr.V(FlagKey, "postgres-dsn"))
	}
	repo, err := postgres.New(ctx, r.postgresDSN)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize postgres repository")
	}
	return repo, nil
}
