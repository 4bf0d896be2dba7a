package fetch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tlsa/sgdk-helper/internal/paths"
	"github.com/tlsa/sgdk-helper/internal/registry"
)

// Status of a dependency's local source.
type Status int

const (
	// StatusAbsent means no local copy exists.
	StatusAbsent Status = iota

	// StatusCloned means a local copy exists but may be stale; only
	// the remote can say whether it is current.
	StatusCloned

	// StatusUpToDate means the local copy is known to be current and
	// no fetch work is needed.
	StatusUpToDate
)

func (s Status) String() string {
	switch s {
	case StatusAbsent:
		return "absent"
	case StatusCloned:
		return "cloned"
	case StatusUpToDate:
		return "up to date"
	}
	return "unknown"
}

// StatusProvider reports the local state of a dependency's source.
type StatusProvider interface {
	Status(dep registry.Descriptor) (Status, error)
}

// DirStatus derives a dependency's status from the source tree on disk.
//
// It is deliberately conservative: it never reports StatusUpToDate,
// since currency can only be established against the remote. Git
// sources present on disk go through the update step and archives
// through a conditional download, either of which may then turn out to
// be a no-op.
type DirStatus struct {
	cfg paths.Config
}

// Creates a status provider over the configured source tree.
func NewDirStatus(cfg paths.Config) *DirStatus {
	return &DirStatus{cfg: cfg}
}

// Reports whether the dependency's source has been fetched before.
func (d *DirStatus) Status(dep registry.Descriptor) (Status, error) {
	var probe string
	switch dep.Kind {
	case registry.KindGit:
		// A .git directory marks a completed clone.
		probe = filepath.Join(d.cfg.SourceDir(dep.Name), ".git")
	default:
		probe = filepath.Join(d.cfg.Src, archiveName(dep))
	}

	if _, err := os.Stat(probe); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return StatusAbsent, nil
		}
		return StatusAbsent, fmt.Errorf("%w: probing %s: %w",
			ErrFetch, dep.Name, err)
	}
	return StatusCloned, nil
}
