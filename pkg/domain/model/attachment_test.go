package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sitelog/sitelog/pkg/domain/model"
)

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{size: 0, want: "0 Bytes"},
		{size: 1, want: "1 Bytes"},
		{size: 1023, want: "1023 Bytes"},
		{size: 1024, want: "1 KB"},
		{size: 1536, want: "1.5 KB"},
		{size: 1234567, want: "1.18 MB"},
		{size: 10 * 1024 * 1024, want: "10 MB"},
		{size: 3 * 1024 * 1024 * 1024, want: "3 GB"},
		{size: 5 * 1024 * 1024 * 1024 * 1024, want: "5120 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			gt.String(t, model.FormatFileSize(tt.size)).Equal(tt.want)
		})
	}
}

func TestAttachmentHelpers(t *testing.T) {
	a := model.Attachment{
		Filename:     "1700000000-site plan.pdf",
		OriginalName: "site plan.pdf",
		MimeType:     "application/pdf",
		Size:         2048,
	}

	gt.Bool(t, a.IsImage()).False()
	gt.String(t, a.DisplayName()).Equal("site plan.pdf")
	gt.String(t, a.SizeLabel()).Equal("2 KB")
	gt.String(t, a.UploadPath()).Equal("/uploads/1700000000-site%20plan.pdf")

	a.OriginalName = ""
	gt.String(t, a.DisplayName()).Equal(a.Filename)

	gt.String(t, model.UploadPath("a/b?.png")).Equal("/uploads/a%2Fb%3F.png")
}
