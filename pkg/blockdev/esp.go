package blockdev

import (
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/apex/log"
	efi "github.com/canonical/go-efilib"
	"github.com/pkg/errors"
	"github.com/rekby/gpt"
)

// C12A7328-F81F-11D2-BA4B-00A0C93EC93B, the EFI System Partition type.
var espType = mustGUID("c12a7328-f81f-11d2-ba4b-00a0c93ec93b")

func mustGUID(s string) gpt.PartType {
	g, err := efi.DecodeGUIDString(s)
	if err != nil {
		panic(err)
	}
	return gpt.PartType(g)
}

// SysBlock is where logical block sizes are read from.
var SysBlock = "/sys/block"

func getBlockDevSize(dev string) (uint64, error) {
	p := path.Join(SysBlock, path.Base(dev), "queue/logical_block_size")
	content, err := os.ReadFile(p)
	if err != nil {
		return 0, errors.Wrapf(err, "Failed to read size for '%s'", dev)
	}
	d := strings.TrimSpace(string(content))
	v, err := strconv.Atoi(d)
	if err != nil {
		return 0, errors.Wrapf(err, "getBlockDevSize(%s): failed to convert '%s' to int", dev, d)
	}
	return uint64(v), nil
}

func isESP(p gpt.Partition) bool {
	return !p.IsEmpty() && (p.Type == espType || p.Name() == "esp")
}

// IsESP reads the GPT of @disk and reports whether partition @part (1-based)
// is an EFI System Partition.
func IsESP(disk, part string) (bool, error) {
	num, err := strconv.Atoi(part)
	if err != nil || num < 1 {
		return false, errors.Errorf("bad partition number %q", part)
	}

	sz, err := getBlockDevSize(disk)
	if err != nil {
		return false, err
	}

	fh, err := os.Open(disk)
	if err != nil {
		return false, errors.Wrapf(err, "Failed opening %s", disk)
	}
	defer fh.Close()

	// https://github.com/rekby/gpt/issues/2
	if _, err := fh.Seek(int64(sz), io.SeekStart); err != nil {
		return false, errors.Wrapf(err, "Failed to seek into blockdev %s", disk)
	}

	table, err := gpt.ReadTable(fh, sz)
	if err != nil {
		return false, errors.Wrapf(err, "Failed to read GPT on %s", disk)
	}
	if num > len(table.Partitions) {
		return false, errors.Errorf("%s has no partition %d", disk, num)
	}

	p := table.Partitions[num-1]
	log.Debugf("%s partition %d: type=%x name=%q", disk, num, p.Type, p.Name())
	return isESP(p), nil
}
