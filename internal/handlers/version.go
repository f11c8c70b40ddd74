package handlers

import (
	"net/http"
	"runtime"
)

// BuildInfo is set at link time by the server binary
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// VersionHandler serves the build information
func VersionHandler(info BuildInfo) http.HandlerFunc {
	if info.GoVersion == "" {
		info.GoVersion = runtime.Version()
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, info)
	}
}
