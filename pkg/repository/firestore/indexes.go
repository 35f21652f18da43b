package firestore

import "github.com/m-mizutani/fireconf"

// IndexConfig returns the composite indexes the settings store needs, for
// collections named with prefix.
func IndexConfig(prefix string) *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: prefix + historyCollection,
				Indexes: []fireconf.Index{
					// History: site_id ASC, updated_at DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "site_id", Order: fireconf.OrderAscending},
							{Path: "updated_at", Order: fireconf.OrderDescending},
						},
					},
				},
			},
		},
	}
}
