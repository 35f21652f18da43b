package firestore_test

import (
	"testing"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/gt"
	"github.com/sitelog/sitelog/pkg/repository/firestore"
)

func TestIndexConfig(t *testing.T) {
	cfg := firestore.IndexConfig("test_")
	gt.Array(t, cfg.Collections).Length(1).Required()
	gt.Value(t, cfg.Collections[0].Name).Equal("test_site_settings_history")

	gt.Array(t, cfg.Collections[0].Indexes).Length(1).Required()
	fields := cfg.Collections[0].Indexes[0].Fields
	gt.Array(t, fields).Length(2).Required()
	gt.Value(t, fields[0].Path).Equal("site_id")
	gt.Value(t, fields[1].Order).Equal(fireconf.OrderDescending)
}
