package config_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/sitelog/sitelog/pkg/cli/config"
	"github.com/sitelog/sitelog/pkg/utils/logging"
)

func TestLoggerConfigure(t *testing.T) {
	prev := logging.Default()
	t.Cleanup(func() { logging.SetDefault(prev) })

	testCases := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "console info", level: "info", format: "console"},
		{name: "json debug", level: "DEBUG", format: "json"},
		{name: "bad level", level: "loud", format: "console", wantErr: true},
		{name: "bad format", level: "info", format: "xml", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			output := filepath.Join(t.TempDir(), "app.log")
			closer, err := config.NewLoggerForTest(tc.level, tc.format, output).Configure()
			if tc.wantErr {
				gt.Error(t, err).Is(config.ErrInvalidConfig)
				return
			}
			gt.NoError(t, err).Required()
			closer()
		})
	}
}

func TestBackendConfigure(t *testing.T) {
	c, err := config.NewBackendForTest("http://localhost:3001/", 5*time.Second).Configure("sitelog/test")
	gt.NoError(t, err).Required()
	gt.Value(t, c.BaseURL()).Equal("http://localhost:3001")

	_, err = config.NewBackendForTest("not a url", time.Second).Configure("")
	gt.Error(t, err)

	_, err = config.NewBackendForTest("http://localhost:3001", -time.Second).Configure("")
	gt.Error(t, err).Is(config.ErrInvalidConfig)
}

func TestRepositoryConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest(config.BackendMemory, "", "").Configure(ctx)
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Close())
	})

	t.Run("firestore without project", func(t *testing.T) {
		_, err := config.NewRepositoryForTest(config.BackendFirestore, "", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		_, err := config.NewRepositoryForTest(config.BackendPostgres, "", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("sqlite", "", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestSlackConfigure(t *testing.T) {
	t.Run("disabled when nothing is set", func(t *testing.T) {
		n, err := config.NewSlackForTest("", "").Configure()
		gt.NoError(t, err)
		gt.Value(t, n).Nil()
	})

	t.Run("token without channel", func(t *testing.T) {
		_, err := config.NewSlackForTest("xoxb-test", "").Configure()
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("configured", func(t *testing.T) {
		n, err := config.NewSlackForTest("xoxb-test", "C123").Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, n).NotNil()
	})
}
