package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/domain/interfaces"
	"google.golang.org/api/option"
)

type Firestore struct {
	client   *firestore.Client
	settings *settingsRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*config)

type config struct {
	collectionPrefix string
	clientOptions    []option.ClientOption
}

// WithCollectionPrefix namespaces every collection, e.g. per test run.
func WithCollectionPrefix(prefix string) Option {
	return func(c *config) {
		c.collectionPrefix = prefix
	}
}

// WithCredentialsFile authenticates with a service account key instead of
// application default credentials.
func WithCredentialsFile(path string) Option {
	return func(c *config) {
		if path != "" {
			c.clientOptions = append(c.clientOptions, option.WithCredentialsFile(path))
		}
	}
}

// New connects to databaseID in projectID. An empty databaseID selects the default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, cfg.clientOptions...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID),
		)
	}

	settings := newSettingsRepository(client)
	settings.collectionPrefix = cfg.collectionPrefix

	return &Firestore{
		client:   client,
		settings: settings,
	}, nil
}

func (f *Firestore) Settings() interfaces.SettingsRepository {
	return f.settings
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
