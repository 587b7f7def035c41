// Package version reports build information of the skillmig binary.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
)

var (
	// Version is set at build time with -ldflags
	Version = "dev"

	// GitCommit is the commit the binary was built from
	GitCommit = "unknown"
)

// Info represents version information
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	GoVersion string `json:"goVersion"`
}

// Get returns the version information
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("skillmig %s (commit %s, %s)", i.Version, i.GitCommit, i.GoVersion)
}

// JSON returns the indented JSON representation of version info
func (i Info) JSON() (string, error) {
	b, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
