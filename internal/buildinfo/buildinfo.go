// Package buildinfo carries version metadata set at link time:
//
//	go build -ldflags "-X github.com/aalvaropc/stockyard/internal/buildinfo.Version=v1.2.3"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return fmt.Sprintf("stockyard %s (commit=%s, date=%s)", Version, Commit, Date)
}
