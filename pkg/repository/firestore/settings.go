package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/domain/interfaces"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	settingsCollection = "site_settings"
	historyCollection  = "site_settings_history"
)

type settingsRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.SettingsRepository = &settingsRepository{}

func newSettingsRepository(client *firestore.Client) *settingsRepository {
	return &settingsRepository{
		client: client,
	}
}

// settingsDocument is the Firestore persistence model
type settingsDocument struct {
	SiteID    string    `firestore:"site_id"`
	UpdatedAt time.Time `firestore:"updated_at"`

	SiteName       string `firestore:"site_name"`
	Address        string `firestore:"address"`
	ProjectManager string `firestore:"project_manager"`
	ProjectType    string `firestore:"project_type"`
	CompletionDate string `firestore:"completion_date"`

	DailyBriefings    bool   `firestore:"daily_briefings"`
	EquipmentChecks   bool   `firestore:"equipment_checks"`
	EmergencyResponse bool   `firestore:"emergency_response"`
	SafetyOfficer     string `firestore:"safety_officer"`
	EmergencyContact  string `firestore:"emergency_contact"`

	SafetyAlerts         bool `firestore:"safety_alerts"`
	InspectionReminders  bool `firestore:"inspection_reminders"`
	EquipmentMaintenance bool `firestore:"equipment_maintenance"`
	WeatherAlerts        bool `firestore:"weather_alerts"`

	AutoBackup    bool `firestore:"auto_backup"`
	DataRetention bool `firestore:"data_retention"`
}

func toSettingsDocument(s *model.SiteSettings) *settingsDocument {
	return &settingsDocument{
		SiteID:               s.SiteID,
		UpdatedAt:            s.UpdatedAt,
		SiteName:             s.General.SiteName,
		Address:              s.General.Address,
		ProjectManager:       s.General.ProjectManager,
		ProjectType:          s.General.ProjectType,
		CompletionDate:       s.General.CompletionDate,
		DailyBriefings:       s.Safety.DailyBriefings,
		EquipmentChecks:      s.Safety.EquipmentChecks,
		EmergencyResponse:    s.Safety.EmergencyResponse,
		SafetyOfficer:        s.Safety.SafetyOfficer,
		EmergencyContact:     s.Safety.EmergencyContact,
		SafetyAlerts:         s.Notifications.SafetyAlerts,
		InspectionReminders:  s.Notifications.InspectionReminders,
		EquipmentMaintenance: s.Notifications.EquipmentMaintenance,
		WeatherAlerts:        s.Notifications.WeatherAlerts,
		AutoBackup:           s.Data.AutoBackup,
		DataRetention:        s.Data.DataRetention,
	}
}

func (d *settingsDocument) toModel() *model.SiteSettings {
	return &model.SiteSettings{
		SiteID: d.SiteID,
		General: model.GeneralSettings{
			SiteName:       d.SiteName,
			Address:        d.Address,
			ProjectManager: d.ProjectManager,
			ProjectType:    d.ProjectType,
			CompletionDate: d.CompletionDate,
		},
		Safety: model.SafetySettings{
			DailyBriefings:    d.DailyBriefings,
			EquipmentChecks:   d.EquipmentChecks,
			EmergencyResponse: d.EmergencyResponse,
			SafetyOfficer:     d.SafetyOfficer,
			EmergencyContact:  d.EmergencyContact,
		},
		Notifications: model.NotificationSettings{
			SafetyAlerts:         d.SafetyAlerts,
			InspectionReminders:  d.InspectionReminders,
			EquipmentMaintenance: d.EquipmentMaintenance,
			WeatherAlerts:        d.WeatherAlerts,
		},
		Data: model.DataSettings{
			AutoBackup:    d.AutoBackup,
			DataRetention: d.DataRetention,
		},
		UpdatedAt: d.UpdatedAt,
	}
}

func (r *settingsRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + settingsCollection)
}

func (r *settingsRepository) history() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + historyCollection)
}

func (r *settingsRepository) Get(ctx context.Context, siteID string) (*model.SiteSettings, error) {
	doc, err := r.collection().Doc(siteID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get settings", goerr.V("siteID", siteID))
	}

	var data settingsDocument
	if err := doc.DataTo(&data); err != nil {
		return nil, goerr.Wrap(err, "failed to decode settings", goerr.V("siteID", siteID))
	}
	return data.toModel(), nil
}

// Put writes the current document and appends a history entry in one transaction.
func (r *settingsRepository) Put(ctx context.Context, settings *model.SiteSettings) error {
	if settings == nil || settings.SiteID == "" {
		return goerr.New("settings must have a site ID")
	}

	doc := toSettingsDocument(settings)
	ref := r.collection().Doc(settings.SiteID)
	revision := r.history().NewDoc()

	if err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(ref, doc); err != nil {
			return err
		}
		return tx.Set(revision, doc)
	}); err != nil {
		return goerr.Wrap(err, "failed to save settings", goerr.V("siteID", settings.SiteID))
	}
	return nil
}

func (r *settingsRepository) Delete(ctx context.Context, siteID string) error {
	if _, err := r.collection().Doc(siteID).Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return goerr.Wrap(err, "failed to delete settings", goerr.V("siteID", siteID))
	}
	return nil
}

func (r *settingsRepository) History(ctx context.Context, siteID string, limit int) ([]*model.SiteSettings, error) {
	// Requires the composite index from IndexConfig.
	q := r.history().
		Where("site_id", "==", siteID).
		OrderBy("updated_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var result []*model.SiteSettings
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate settings history", goerr.V("siteID", siteID))
		}

		var data settingsDocument
		if err := doc.DataTo(&data); err != nil {
			return nil, goerr.Wrap(err, "failed to decode settings history", goerr.V("siteID", siteID), goerr.V("docID", doc.Ref.ID))
		}
		result = append(result, data.toModel())
	}
	if result == nil {
		result = []*model.SiteSettings{}
	}
	return result, nil
}
