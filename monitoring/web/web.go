// Package web includes the static page of the monitoring tool.
package web

import (
	"embed"
	"net/http"
	"os"
	"path"
	"runtime"
	"strings"
)

//go:embed index.html
var staticAssets embed.FS

// GetAssets returns the static page. If SEGA_MONITOR_DEV is set, the page is
// served from the source directory so that it can be edited without
// rebuilding.
func GetAssets() http.FileSystem {
	if isDevelopmentMode() {
		_, assetPath, _, ok := runtime.Caller(0)
		if !ok {
			panic("error getting path")
		}

		return http.Dir(path.Dir(assetPath))
	}

	return http.FS(staticAssets)
}

func isDevelopmentMode() bool {
	evValue, exist := os.LookupEnv("SEGA_MONITOR_DEV")
	if !exist {
		return false
	}

	return strings.ToLower(evValue) == "true" || evValue == "1"
}
