package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/domain/interfaces"
	"github.com/sitelog/sitelog/pkg/domain/model"
)

type settingsRepository struct {
	db *sql.DB
}

var _ interfaces.SettingsRepository = &settingsRepository{}

func newSettingsRepository(db *sql.DB) *settingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, siteID string) (*model.SiteSettings, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM site_settings WHERE site_id = $1`, siteID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get settings", goerr.V("siteID", siteID))
	}

	var s model.SiteSettings
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, goerr.Wrap(err, "failed to decode settings", goerr.V("siteID", siteID))
	}
	return &s, nil
}

// Put upserts the current settings and records a history row in one transaction.
func (r *settingsRepository) Put(ctx context.Context, settings *model.SiteSettings) (err error) {
	if settings == nil || settings.SiteID == "" {
		return goerr.New("settings must have a site ID")
	}

	payload, err := json.Marshal(settings)
	if err != nil {
		return goerr.Wrap(err, "failed to encode settings")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO site_settings (site_id, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (site_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		settings.SiteID, payload, settings.UpdatedAt,
	); err != nil {
		return goerr.Wrap(err, "failed to upsert settings", goerr.V("siteID", settings.SiteID))
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO site_settings_history (site_id, payload, updated_at) VALUES ($1, $2, $3)`,
		settings.SiteID, payload, settings.UpdatedAt,
	); err != nil {
		return goerr.Wrap(err, "failed to record settings history", goerr.V("siteID", settings.SiteID))
	}

	if err = tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit settings", goerr.V("siteID", settings.SiteID))
	}
	return nil
}

func (r *settingsRepository) Delete(ctx context.Context, siteID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM site_settings WHERE site_id = $1`, siteID); err != nil {
		return goerr.Wrap(err, "failed to delete settings", goerr.V("siteID", siteID))
	}
	return nil
}

func (r *settingsRepository) History(ctx context.Context, siteID string, limit int) ([]*model.SiteSettings, error) {
	query := `SELECT payload FROM site_settings_history WHERE site_id = $1 ORDER BY updated_at DESC, id DESC`
	args := []any{siteID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query settings history", goerr.V("siteID", siteID))
	}
	defer rows.Close()

	result := []*model.SiteSettings{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, goerr.Wrap(err, "failed to scan settings history", goerr.V("siteID", siteID))
		}
		var s model.SiteSettings
		if err := json.Unmarshal(payload, &s); err != nil {
			return nil, goerr.Wrap(err, "failed to decode settings history", goerr.V("siteID", siteID))
		}
		result = append(result, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read settings history", goerr.V("siteID", siteID))
	}
	return result, nil
}
