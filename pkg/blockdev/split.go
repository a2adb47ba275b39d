package blockdev

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Devices whose name ends in a digit put a 'p' before the partition
// number: nvme0n1p1, mmcblk0p2, loop0p1.
var pSeparated = regexp.MustCompile(`^(.*[0-9])p([0-9]+)$`)

// Everything else appends the number directly: sda1, vdb12.
var conventional = regexp.MustCompile(`^([^0-9]+)([0-9]+)$`)

// SplitPartition splits a partition path into the disk device and the
// partition number efibootmgr wants, e.g. /dev/nvme0n1p1 -> /dev/nvme0n1, 1
// and /dev/sda1 -> /dev/sda, 1.
func SplitPartition(path string) (string, string, error) {
	var disk, part, sep string
	if m := pSeparated.FindStringSubmatch(path); m != nil {
		disk, part, sep = m[1], m[2], "p"
	} else if m := conventional.FindStringSubmatch(path); m != nil {
		disk, part = m[1], m[2]
	} else {
		return "", "", errors.Wrapf(ErrBadPartition, "%q", path)
	}

	if disk+sep+part != path || strings.TrimLeft(part, "0") == "" {
		return "", "", errors.Wrapf(ErrBadPartition, "%q", path)
	}
	return disk, part, nil
}
