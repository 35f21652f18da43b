package interfaces

import (
	"context"

	"github.com/sitelog/sitelog/pkg/domain/model"
)

// Notifier announces logs that need immediate attention.
type Notifier interface {
	NotifySafetyAlert(ctx context.Context, site *model.SiteSettings, log *model.Log) error
}
