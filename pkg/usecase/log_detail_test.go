package usecase_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/usecase"
)

func TestLogDetailLoad(t *testing.T) {
	t.Run("loaded", func(t *testing.T) {
		uc, srv := setupUseCases(t)
		l := srv.SeedLog(model.Log{Title: "Crane inspection", Inspector: "R. Ortiz"})

		d := uc.LogDetail.Load(context.Background(), l.ID)
		gt.Value(t, d.Phase).Equal(usecase.PhaseLoaded)
		gt.Value(t, d.Log).NotNil().Required()
		gt.Value(t, d.Log.Inspector).Equal("R. Ortiz")
		gt.Bool(t, d.NotFound).False()
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		uc, _ := setupUseCases(t)

		d := uc.LogDetail.Load(context.Background(), "missing")
		gt.Value(t, d.Phase).Equal(usecase.PhaseFailed)
		gt.Bool(t, d.NotFound).True()
		gt.Value(t, d.Error).Equal(usecase.MsgLogNotFound)
		gt.Value(t, d.Log).Nil()
	})

	t.Run("server error is a retryable failure", func(t *testing.T) {
		uc, srv := setupUseCases(t)
		l := srv.SeedLog(model.Log{Title: "x"})
		srv.Fail(http.MethodGet, "/api/logs/"+l.ID, http.StatusInternalServerError, "oops")

		d := uc.LogDetail.Load(context.Background(), l.ID)
		gt.Value(t, d.Phase).Equal(usecase.PhaseFailed)
		gt.Bool(t, d.NotFound).False()
		gt.Value(t, d.Error).Equal(usecase.MsgLoadDetailFailed)
	})
}

func TestLogDetailDeleteAttachment(t *testing.T) {
	ctx := context.Background()
	uc, srv := setupUseCases(t)
	l := srv.SeedLog(model.Log{Title: "With files"})

	res, err := uc.Upload.Upload(ctx, l.ID, []usecase.UploadFile{
		textFile("a.txt", "alpha"),
		textFile("b.txt", "bravo"),
	})
	gt.NoError(t, err).Required()
	gt.Array(t, res.Uploaded).Length(2).Required()

	d := uc.LogDetail.Load(ctx, l.ID)
	gt.Value(t, d.Log.AttachmentCount()).Equal(2)

	t.Run("unconfirmed sends nothing", func(t *testing.T) {
		err := uc.LogDetail.DeleteAttachment(ctx, d, res.Uploaded[0].ID, false)
		gt.Error(t, err).Is(usecase.ErrNotConfirmed)
		gt.Value(t, srv.Calls(http.MethodDelete, "/api/attachments/"+res.Uploaded[0].ID)).Equal(0)
	})

	t.Run("confirmed delete refetches the log", func(t *testing.T) {
		gets := srv.Calls(http.MethodGet, "/api/logs/"+l.ID)
		gt.NoError(t, uc.LogDetail.DeleteAttachment(ctx, d, res.Uploaded[0].ID, true)).Required()

		gt.Value(t, srv.Calls(http.MethodGet, "/api/logs/"+l.ID)).Equal(gets + 1)
		gt.Value(t, d.Phase).Equal(usecase.PhaseLoaded)
		gt.Array(t, d.Log.Attachments).Length(1).Required()
		gt.Value(t, d.Log.Attachments[0].OriginalName).Equal("b.txt")
	})

	t.Run("failure alerts and leaves the detail untouched", func(t *testing.T) {
		id := res.Uploaded[1].ID
		srv.Fail(http.MethodDelete, "/api/attachments/"+id, http.StatusInternalServerError, "")

		err := uc.LogDetail.DeleteAttachment(ctx, d, id, true)
		gt.Value(t, usecase.AlertMessage(err, "")).Equal(usecase.MsgDeleteFileFailed)
		gt.Array(t, d.Log.Attachments).Length(1)
	})
}

func TestLogDetailDeleteLog(t *testing.T) {
	uc, srv := setupUseCases(t)
	l := srv.SeedLog(model.Log{Title: "Doomed"})

	gt.Error(t, uc.LogDetail.DeleteLog(context.Background(), l.ID, false)).Is(usecase.ErrNotConfirmed)
	gt.Value(t, srv.LogCount()).Equal(1)

	gt.NoError(t, uc.LogDetail.DeleteLog(context.Background(), l.ID, true))
	gt.Value(t, srv.LogCount()).Equal(0)
}

func TestLogDetailDownload(t *testing.T) {
	ctx := context.Background()
	uc, srv := setupUseCases(t)
	l := srv.SeedLog(model.Log{Title: "Docs"})
	res, err := uc.Upload.Upload(ctx, l.ID, []usecase.UploadFile{textFile("notes.txt", "site notes")})
	gt.NoError(t, err).Required()

	dl, err := uc.LogDetail.Download(ctx, res.Uploaded[0].Filename)
	gt.NoError(t, err).Required()
	defer dl.Body.Close()
	body, err := io.ReadAll(dl.Body)
	gt.NoError(t, err)
	gt.Value(t, string(body)).Equal("site notes")
	gt.Bool(t, strings.HasPrefix(dl.ContentType, "text/plain")).True()

	_, err = uc.LogDetail.Download(ctx, "nope.txt")
	gt.Error(t, err)
}
