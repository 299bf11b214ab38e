package cli

import "github.com/m-mizutani/fireconf"

// GetIndexConfig exposes the Firestore index configuration for testing
func GetIndexConfig(prefix string) *fireconf.Config {
	return getIndexConfig(prefix)
}
