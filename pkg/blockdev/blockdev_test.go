package blockdev

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/project-machine/lusc/pkg/utils"
	"github.com/rekby/gpt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPartition(t *testing.T) {
	tests := []struct {
		path, disk, part string
	}{
		{"/dev/nvme0n1p1", "/dev/nvme0n1", "1"},
		{"/dev/nvme1n1p12", "/dev/nvme1n1", "12"},
		{"/dev/mmcblk0p2", "/dev/mmcblk0", "2"},
		{"/dev/sda1", "/dev/sda", "1"},
		{"/dev/vdb3", "/dev/vdb", "3"},
		{"/dev/sdp1", "/dev/sdp", "1"},
	}
	for _, tt := range tests {
		disk, part, err := SplitPartition(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.disk, disk, tt.path)
		assert.Equal(t, tt.part, part, tt.path)
		sep := ""
		if disk+part != tt.path {
			sep = "p"
		}
		assert.Equal(t, tt.path, disk+sep+part)
	}
}

func TestSplitPartitionBad(t *testing.T) {
	for _, p := range []string{"", "/dev/sda", "/dev/nvme0n1", "/dev/sda0", "/dev/disk/by-uuid/1234-ABCD", "/dev/vd1a"} {
		_, _, err := SplitPartition(p)
		assert.True(t, errors.Is(err, ErrBadPartition), "expected failure for %q", p)
	}
}

func catalog() *utils.FakeRunner {
	return utils.NewFakeRunner().
		On(utils.FakeResult{Stdout: "/dev/nvme0n1p1\n/dev/nvme0n1p2\n/dev/sda1\n"}, "blkid", "-o", "device")
}

func TestFind(t *testing.T) {
	r := NewResolver(catalog())

	d, err := r.Find("/dev/nvme0n1p1")
	require.NoError(t, err)
	assert.Equal(t, "/dev/nvme0n1p1", d)

	// exact match only
	_, err = r.Find("/dev/nvme0n1")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = r.Find("/dev/sda")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFindFollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sdb1")
	link := filepath.Join(dir, "by-label-ESP")
	require.NoError(t, os.WriteFile(target, nil, 0644))
	require.NoError(t, os.Symlink(target, link))

	f := utils.NewFakeRunner().On(utils.FakeResult{Stdout: target + "\n"}, "blkid", "-o", "device")
	d, err := NewResolver(f).Find(link)
	require.NoError(t, err)
	assert.Equal(t, target, d)
}

func TestFindBlkidFailure(t *testing.T) {
	f := utils.NewFakeRunner().On(utils.FakeResult{Rc: 4}, "blkid", "-o", "device")
	_, err := NewResolver(f).Find("/dev/sda1")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))

	_, err = NewResolver(utils.NewFakeRunner()).Find("/dev/sda1")
	assert.Error(t, err)
}

func TestUUID(t *testing.T) {
	f := utils.NewFakeRunner().
		On(utils.FakeResult{Stdout: "1234-ABCD\n"}, "blkid", "-o", "value", "-s", "UUID", "/dev/nvme0n1p1").
		On(utils.FakeResult{Stdout: "0a3407de-014b-458b-b5c1-848e92a327a3\n"}, "blkid", "-o", "value", "-s", "UUID", "/dev/nvme0n1p2").
		On(utils.FakeResult{Rc: 2}, "blkid", "-o", "value", "-s", "UUID", "/dev/sda1").
		On(utils.FakeResult{Stdout: "\n"}, "blkid", "-o", "value", "-s", "UUID", "/dev/sda2").
		On(utils.FakeResult{Stdout: "12 34; rm -rf /\n"}, "blkid", "-o", "value", "-s", "UUID", "/dev/sda3")
	r := NewResolver(f)

	id, err := r.UUID("/dev/nvme0n1p1")
	require.NoError(t, err)
	assert.Equal(t, "1234-ABCD", id)

	id, err = r.UUID("/dev/nvme0n1p2")
	require.NoError(t, err)
	assert.Equal(t, "0a3407de-014b-458b-b5c1-848e92a327a3", id)

	_, err = r.UUID("/dev/sda1")
	assert.True(t, errors.Is(err, ErrNoUUID))
	_, err = r.UUID("/dev/sda2")
	assert.True(t, errors.Is(err, ErrNoUUID))
	_, err = r.UUID("/dev/sda3")
	assert.Error(t, err)
}

func TestValidateUUID(t *testing.T) {
	for _, ok := range []string{"1234-ABCD", "0123456789ABCDEF", "0a3407de-014b-458b-b5c1-848e92a327a3"} {
		assert.NoError(t, ValidateUUID(ok), ok)
	}
	for _, bad := range []string{"", "-", "12 34", "1234-", "0a3407de-014b-458b-b5c1-848e92a327a", "zzzzzzzz-014b-458b-b5c1-848e92a327a3", "0a3407de0-14b-458b-b5c1-848e92a327a3"} {
		assert.Error(t, ValidateUUID(bad), bad)
	}
}

func TestMountSource(t *testing.T) {
	f := utils.NewFakeRunner().
		On(utils.FakeResult{Stdout: "/dev/nvme0n1p1\n"}, "findmnt", "-n", "-o", "SOURCE", "/boot").
		On(utils.FakeResult{Rc: 1}, "findmnt", "-n", "-o", "SOURCE", "/efi")
	r := NewResolver(f)

	src, err := r.MountSource("/boot")
	require.NoError(t, err)
	assert.Equal(t, "/dev/nvme0n1p1", src)

	src, err = r.MountSource("/efi")
	require.NoError(t, err)
	assert.Equal(t, "", src)
}

func TestIsESPPartition(t *testing.T) {
	assert.True(t, isESP(gpt.Partition{Type: espType}))
	assert.False(t, isESP(gpt.Partition{}))
}

func TestIsESPBadInput(t *testing.T) {
	_, err := IsESP("/dev/sda", "x")
	assert.Error(t, err)

	old := SysBlock
	SysBlock = t.TempDir()
	defer func() { SysBlock = old }()
	_, err = IsESP("/dev/sda", "1")
	assert.Error(t, err)
}
