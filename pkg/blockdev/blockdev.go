// Package blockdev answers the questions lusc asks about partitions: does
// the device exist, which disk and partition number is it, and what is the
// filesystem UUID.  All answers come from blkid, findmnt and the GPT.
package blockdev

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/project-machine/lusc/pkg/utils"
)

var (
	ErrNotFound     = errors.New("partition not found")
	ErrNoUUID       = errors.New("no UUID found")
	ErrBadPartition = errors.New("cannot split partition path")
)

// Filesystem UUIDs come in several shapes (vfat "1234-ABCD", ntfs
// "0123456789ABCDEF", full RFC 4122 for ext4/btrfs/xfs); all are hex and dashes.
var uuidChars = regexp.MustCompile(`^[0-9A-Fa-f]+(-[0-9A-Fa-f]+)*$`)

type Resolver struct {
	runner utils.Runner
}

func NewResolver(r utils.Runner) *Resolver {
	return &Resolver{runner: r}
}

// Devices lists every block device blkid knows about.
func (r *Resolver) Devices() ([]string, error) {
	out, rc, err := r.runner.Run("blkid", "-o", "device")
	if err != nil {
		return nil, errors.Wrapf(err, "Failed listing block devices")
	}
	// blkid exits 2 when it finds nothing at all.
	if rc != 0 && rc != 2 {
		return nil, errors.Errorf("blkid exited with status %d", rc)
	}
	devs := []string{}
	for _, l := range strings.Split(out, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			devs = append(devs, l)
		}
	}
	return devs, nil
}

// Find returns the catalog entry for @dev.  Symlinks such as
// /dev/disk/by-label/ESP are followed, so the returned path may differ
// from @dev.
func (r *Resolver) Find(dev string) (string, error) {
	devs, err := r.Devices()
	if err != nil {
		return "", err
	}
	candidates := []string{dev}
	if real, err := filepath.EvalSymlinks(dev); err == nil && real != dev {
		log.Debugf("%s resolves to %s", dev, real)
		candidates = append(candidates, real)
	}
	for _, c := range candidates {
		for _, d := range devs {
			if d == c {
				return d, nil
			}
		}
	}
	return "", errors.Wrapf(ErrNotFound, "%s", dev)
}

// UUID returns the filesystem UUID of @dev.
func (r *Resolver) UUID(dev string) (string, error) {
	out, rc, err := r.runner.Run("blkid", "-o", "value", "-s", "UUID", dev)
	if err != nil {
		return "", errors.Wrapf(err, "Failed looking up UUID of %s", dev)
	}
	id := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
	if rc != 0 || id == "" {
		return "", errors.Wrapf(ErrNoUUID, "%s (blkid rc=%d)", dev, rc)
	}
	if err := ValidateUUID(id); err != nil {
		return "", errors.Wrapf(err, "%s", dev)
	}
	log.Debugf("UUID of %s is %s", dev, id)
	return id, nil
}

// ValidateUUID rejects anything that could not be a filesystem UUID.  The
// value ends up inside a kernel command line, so this is also what keeps
// it free of spaces and shell syntax.
func ValidateUUID(id string) error {
	if !uuidChars.MatchString(id) {
		return errors.Errorf("invalid UUID %q", id)
	}
	if len(id) == 36 {
		if _, err := uuid.Parse(id); err != nil {
			return errors.Wrapf(err, "invalid UUID %q", id)
		}
	}
	return nil
}

// MountSource returns the device mounted at @mountpoint, or "" when
// nothing is mounted there.
func (r *Resolver) MountSource(mountpoint string) (string, error) {
	out, rc, err := r.runner.Run("findmnt", "-n", "-o", "SOURCE", mountpoint)
	if err != nil {
		return "", errors.Wrapf(err, "Failed looking up mount source of %s", mountpoint)
	}
	if rc != 0 {
		return "", nil
	}
	return strings.TrimSpace(strings.SplitN(out, "\n", 2)[0]), nil
}
