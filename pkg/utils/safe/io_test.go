package safe_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sitelog/sitelog/pkg/utils/safe"
)

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

type failingCloser struct{}

func (failingCloser) Close() error { return errors.New("boom") }

func TestCloseBodyDrainsAndCloses(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader("left over")}
	safe.CloseBody(context.Background(), body)

	gt.Bool(t, body.closed).True()
	rest, err := io.ReadAll(body.Reader)
	gt.NoError(t, err)
	gt.Number(t, len(rest)).Equal(0)
}

func TestCloseToleratesNilAndErrors(t *testing.T) {
	ctx := context.Background()
	safe.Close(ctx, nil)
	safe.CloseBody(ctx, nil)
	safe.Close(ctx, failingCloser{})
	safe.Write(ctx, nil, []byte("ignored"))
}

func TestCopyReturnsCount(t *testing.T) {
	var dst bytes.Buffer
	n := safe.Copy(context.Background(), &dst, strings.NewReader("abcdef"))
	gt.Number(t, n).Equal(int64(6))
	gt.String(t, dst.String()).Equal("abcdef")
}
