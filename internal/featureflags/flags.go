// Package featureflags reads boolean feature toggles from the environment.
// Flags gate optional behavior that ships ahead of being always-on; the
// backup worker, for example, only runs with FLAG_DATA_BACKUPS=true.
package featureflags

import (
	"os"
	"strings"
)

// Enabled reports whether FLAG_<NAME> is set to a truthy value
// (1/true/yes/on, case-insensitive). Unset or anything else is off.
func Enabled(name string) bool {
	switch strings.ToLower(os.Getenv("FLAG_" + strings.ToUpper(name))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
