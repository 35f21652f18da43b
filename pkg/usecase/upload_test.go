package usecase_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sitelog/sitelog/pkg/domain/model"
	"github.com/sitelog/sitelog/pkg/usecase"
)

func textFile(name, content string) usecase.UploadFile {
	return usecase.UploadFile{
		Name:        name,
		ContentType: "text/plain",
		Size:        int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func TestUploadSequential(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads every file in order", func(t *testing.T) {
		uc, srv := setupUseCases(t)
		l := srv.SeedLog(model.Log{Title: "Photos"})

		res, err := uc.Upload.Upload(ctx, l.ID, []usecase.UploadFile{
			textFile("1.txt", "one"),
			textFile("2.txt", "two"),
			textFile("3.txt", "three"),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, res.Failed).Equal("")
		gt.Array(t, res.Uploaded).Length(3).Required()
		gt.Value(t, res.Uploaded[0].OriginalName).Equal("1.txt")
		gt.Value(t, res.Uploaded[2].OriginalName).Equal("3.txt")

		stored, ok := srv.Log(l.ID)
		gt.Bool(t, ok).True()
		gt.Array(t, stored.Attachments).Length(3)
		data, ok := srv.File(res.Uploaded[1].Filename)
		gt.Bool(t, ok).True()
		gt.Value(t, string(data)).Equal("two")
	})

	t.Run("empty batch sends nothing", func(t *testing.T) {
		uc, srv := setupUseCases(t)
		l := srv.SeedLog(model.Log{Title: "Nothing"})

		res, err := uc.Upload.Upload(ctx, l.ID, nil)
		gt.NoError(t, err)
		gt.Array(t, res.Uploaded).Length(0)
		gt.Value(t, srv.Calls(http.MethodPost, "/api/logs/"+l.ID+"/attachments")).Equal(0)
	})

	t.Run("first failure stops the batch and names the file", func(t *testing.T) {
		uc, srv := setupUseCases(t)
		l := srv.SeedLog(model.Log{Title: "Partial"})

		bad := usecase.UploadFile{
			Name: "broken.pdf",
			Open: func() (io.ReadCloser, error) { return nil, errors.New("disk error") },
		}
		res, err := uc.Upload.Upload(ctx, l.ID, []usecase.UploadFile{
			textFile("ok.txt", "fine"),
			bad,
			textFile("never.txt", "skipped"),
		})
		gt.Error(t, err)
		gt.Value(t, res.Failed).Equal("broken.pdf")
		gt.Array(t, res.Uploaded).Length(1)
		gt.Value(t, srv.Calls(http.MethodPost, "/api/logs/"+l.ID+"/attachments")).Equal(1)
		gt.Bool(t, strings.HasPrefix(usecase.AlertMessage(err, ""), "Failed to upload file broken.pdf: ")).True()
	})

	t.Run("backend message becomes the failure reason", func(t *testing.T) {
		uc, srv := setupUseCases(t)
		l := srv.SeedLog(model.Log{Title: "Too big"})
		srv.Fail(http.MethodPost, "/api/logs/"+l.ID+"/attachments", http.StatusRequestEntityTooLarge, "File too large")

		_, err := uc.Upload.Upload(ctx, l.ID, []usecase.UploadFile{textFile("huge.bin", "x")})
		gt.Value(t, usecase.AlertMessage(err, "")).Equal("Failed to upload file huge.bin: File too large")
	})

	t.Run("empty error body falls back to the status", func(t *testing.T) {
		uc, srv := setupUseCases(t)
		l := srv.SeedLog(model.Log{Title: "Gateway"})
		srv.Fail(http.MethodPost, "/api/logs/"+l.ID+"/attachments", http.StatusBadGateway, "")

		_, err := uc.Upload.Upload(ctx, l.ID, []usecase.UploadFile{textFile("a.txt", "x")})
		gt.Value(t, usecase.AlertMessage(err, "")).Equal("Failed to upload file a.txt: Upload failed with status 502")
	})

	t.Run("second batch for the same log is rejected while one runs", func(t *testing.T) {
		uc, srv := setupUseCases(t)
		l := srv.SeedLog(model.Log{Title: "Busy"})
		path := "/api/logs/" + l.ID + "/attachments"
		arrived, release := srv.Hold(http.MethodPost, path)
		defer release()

		done := make(chan error, 1)
		go func() {
			_, err := uc.Upload.Upload(ctx, l.ID, []usecase.UploadFile{textFile("a.txt", "x")})
			done <- err
		}()
		<-arrived
		gt.Bool(t, uc.Upload.IsUploading(l.ID)).True()

		_, err := uc.Upload.Upload(ctx, l.ID, []usecase.UploadFile{textFile("b.txt", "y")})
		gt.Error(t, err).Is(usecase.ErrActionInProgress)

		release()
		gt.NoError(t, <-done)
		gt.Bool(t, uc.Upload.IsUploading(l.ID)).False()
		gt.Value(t, srv.Calls(http.MethodPost, path)).Equal(1)
	})
}
