package usecase

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/domain/interfaces"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/service/backend"
	"github.com/sitelog/sitelog/pkg/utils/busy"
	"github.com/sitelog/sitelog/pkg/utils/errutil"
	"github.com/sitelog/sitelog/pkg/utils/logging"
	"github.com/sitelog/sitelog/pkg/utils/safe"
)

// UploadFile is one file picked or dropped by the user.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// UploadResult reports how far a batch got.
type UploadResult struct {
	Uploaded []*model.Attachment
	// Failed names the file that stopped the batch, if any.
	Failed string
}

type UploadUseCase struct {
	attachments interfaces.AttachmentClient
	inflight    *busy.Set
}

func NewUploadUseCase(attachments interfaces.AttachmentClient, inflight *busy.Set) *UploadUseCase {
	return &UploadUseCase{attachments: attachments, inflight: inflight}
}

func uploadKey(logID string) string {
	return "upload:" + logID
}

// IsUploading reports whether a batch for the log is in flight.
func (uc *UploadUseCase) IsUploading(logID string) bool {
	return uc.inflight.Has(uploadKey(logID))
}

// Upload sends files to the log one at a time, in order. The first failure stops
// the batch; files already sent stay uploaded. Only one batch per log runs at a time.
func (uc *UploadUseCase) Upload(ctx context.Context, logID string, files []UploadFile) (*UploadResult, error) {
	result := &UploadResult{Uploaded: []*model.Attachment{}}
	if len(files) == 0 {
		return result, nil
	}

	key := uploadKey(logID)
	if !uc.inflight.TryAcquire(key) {
		return result, inProgress(key)
	}
	defer uc.inflight.Release(key)

	logger := logging.From(ctx).With("log_id", logID)
	for _, f := range files {
		attachment, err := uc.uploadOne(ctx, logID, f)
		if err != nil {
			result.Failed = f.Name
			msg := MsgUploadFailed + " " + f.Name + ": " + backend.FailureReason(err)
			return result, newAlert(msg, errutil.Handle(ctx, err, "failed to upload attachment"))
		}
		logger.Info("attachment uploaded", "file", f.Name, "size", f.Size)
		result.Uploaded = append(result.Uploaded, attachment)
	}
	return result, nil
}

func (uc *UploadUseCase) uploadOne(ctx context.Context, logID string, f UploadFile) (*model.Attachment, error) {
	r, err := f.Open()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open upload", goerr.V(FileKey, f.Name))
	}
	defer safe.Close(ctx, r)

	attachment, err := uc.attachments.UploadAttachment(ctx, logID, f.Name, f.ContentType, r)
	if err != nil {
		return nil, goerr.Wrap(err, "upload rejected", goerr.V(FileKey, f.Name), goerr.V(LogIDKey, logID))
	}
	return attachment, nil
}
