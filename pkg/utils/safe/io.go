package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/sitelog/sitelog/pkg/utils/logging"
)

// maxDrain bounds how much of an unread response body is discarded before closing.
const maxDrain = 64 << 10

// Close closes closer and logs the failure. A nil closer is ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// CloseBody discards what is left of an HTTP body, up to a bound, and closes it
// so the underlying connection can be reused.
func CloseBody(ctx context.Context, body io.ReadCloser) {
	if body == nil {
		return
	}
	if _, err := io.Copy(io.Discard, io.LimitReader(body, maxDrain)); err != nil {
		logging.From(ctx).Debug("Failed to drain body", slog.Any("error", err))
	}
	Close(ctx, body)
}

// Write writes data to w and logs the failure. A nil writer is ignored.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Error("Failed to write", slog.Any("error", err))
	}
}

// Copy streams src into dst and returns the byte count. Failures are logged.
func Copy(ctx context.Context, dst io.Writer, src io.Reader) int64 {
	n, err := io.Copy(dst, src)
	if err != nil {
		logging.From(ctx).Error("Failed to copy", slog.Any("error", err), slog.Int64("copied", n))
	}
	return n
}
