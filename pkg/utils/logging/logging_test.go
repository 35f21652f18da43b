package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sitelog/sitelog/pkg/utils/logging"
)

func TestFromFallsBackToDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.SetDefault(logger)

	logging.From(context.Background()).Info("hello")
	gt.String(t, buf.String()).Contains(`"msg":"hello"`)
}

func TestWithOverridesDefault(t *testing.T) {
	var defaultBuf, ctxBuf bytes.Buffer
	logging.SetDefault(slog.New(slog.NewJSONHandler(&defaultBuf, nil)))

	ctx := logging.With(context.Background(), slog.New(slog.NewJSONHandler(&ctxBuf, nil)))
	logging.From(ctx).Info("scoped")

	gt.String(t, ctxBuf.String()).Contains("scoped")
	gt.Number(t, defaultBuf.Len()).Equal(0)
}

func TestSetDefaultIgnoresNil(t *testing.T) {
	before := logging.Default()
	logging.SetDefault(nil)
	gt.Value(t, logging.Default()).Equal(before)
}
