package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/domain/interfaces"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/utils/busy"
	"github.com/sitelog/sitelog/pkg/utils/errutil"
)

// LogDetail is the state of the detail view for one log.
type LogDetail struct {
	ID       string
	Phase    Phase
	Error    string
	NotFound bool
	Log      *model.Log
}

type LogDetailUseCase struct {
	logs        interfaces.LogClient
	attachments interfaces.AttachmentClient
	inflight    *busy.Set
}

func NewLogDetailUseCase(logs interfaces.LogClient, attachments interfaces.AttachmentClient, inflight *busy.Set) *LogDetailUseCase {
	return &LogDetailUseCase{
		logs:        logs,
		attachments: attachments,
		inflight:    inflight,
	}
}

// Load fetches the log with id. A 404 yields the not found state; other
// failures yield the failed state with a retry message.
func (uc *LogDetailUseCase) Load(ctx context.Context, id string) *LogDetail {
	detail := &LogDetail{ID: id}

	log, err := uc.logs.GetLog(ctx, id)
	switch {
	case err == nil:
		detail.Phase = PhaseLoaded
		detail.Log = log
	case errors.Is(err, model.ErrNotFound):
		detail.Phase = PhaseFailed
		detail.NotFound = true
		detail.Error = MsgLogNotFound
	default:
		_ = errutil.Handle(ctx, err, "failed to load log details")
		detail.Phase = PhaseFailed
		detail.Error = MsgLoadDetailFailed
	}
	return detail
}

// DeleteLog deletes the log. The caller navigates back to the list on success.
func (uc *LogDetailUseCase) DeleteLog(ctx context.Context, id string, confirmed bool) error {
	return deleteLog(ctx, uc.logs, uc.inflight, id, confirmed)
}

// DeleteAttachment deletes one attachment and re-fetches the log into detail.
func (uc *LogDetailUseCase) DeleteAttachment(ctx context.Context, detail *LogDetail, attachmentID string, confirmed bool) error {
	if !confirmed {
		return goerr.Wrap(ErrNotConfirmed, "attachment delete not confirmed", goerr.V("attachment_id", attachmentID))
	}

	key := "delete-attachment:" + attachmentID
	if !uc.inflight.TryAcquire(key) {
		return inProgress(key)
	}
	defer uc.inflight.Release(key)

	if err := uc.attachments.DeleteAttachment(ctx, attachmentID); err != nil {
		return newAlert(MsgDeleteFileFailed, errutil.Handle(ctx, err, "failed to delete attachment"))
	}

	if detail != nil {
		*detail = *uc.Load(ctx, detail.ID)
	}
	return nil
}

// IsDeletingAttachment reports whether a delete of the attachment is in flight.
func (uc *LogDetailUseCase) IsDeletingAttachment(id string) bool {
	return uc.inflight.Has("delete-attachment:" + id)
}

// Download opens a stored file for streaming to the user. The caller closes the body.
func (uc *LogDetailUseCase) Download(ctx context.Context, filename string) (*model.Download, error) {
	d, err := uc.attachments.OpenUpload(ctx, filename)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open upload", goerr.V(FileKey, filename))
	}
	return d, nil
}
