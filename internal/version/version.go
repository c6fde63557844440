// Package version exposes the build identity of the running binary.
//
// Version, GitCommit, and BuildDate default to "unknown" and are stamped
// through -ldflags -X at build time (see the Dockerfile). InstanceID and
// Hostname identify this particular process and are resolved once at
// startup, so every log line and trace from one run carries the same pair.
package version

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// Stamped by the linker. A plain go build leaves all three at "unknown".
var (
	Version   = "unknown"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Info is a snapshot of the build metadata and process identity.
type Info struct {
	Version    string
	GitCommit  string
	BuildDate  string
	InstanceID string
	Hostname   string
}

var (
	instanceID = uuid.New().String()
	hostname   = resolveHostname()
)

// GetInfo assembles the stamped build metadata together with the process
// identity. The instance ID is minted once per process, so repeated calls
// always agree.
func GetInfo() Info {
	return Info{
		Version:    Version,
		GitCommit:  GitCommit,
		BuildDate:  BuildDate,
		InstanceID: instanceID,
		Hostname:   hostname,
	}
}

func resolveHostname() string {
	if name, err := os.Hostname(); err == nil {
		return name
	}
	return "unknown"
}

// String renders a one-line description for -version output.
func (i Info) String() string {
	return fmt.Sprintf("customer-service %s (commit %s, built %s)", i.Version, i.GitCommit, i.BuildDate)
}
