// Package migrations embeds the schema of every service. Each service has
// one directory per database driver: <service>/<driver>.
package migrations

import "embed"

//go:embed posts comments
var FS embed.FS

// Dir returns the migrations directory for service on driver.
func Dir(service, driver string) string {
	return service + "/" + driver
}
