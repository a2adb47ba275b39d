package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, "uefi_stub_gen_output.sh", cfg.Script)
	assert.Equal(t, `\initramfs-linux-fallback.img`, cfg.FallbackInitrd)
}

func TestExplicitMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), true)
	assert.Error(t, err)
}

func TestOverrides(t *testing.T) {
	p := filepath.Join(t.TempDir(), "lusc.yaml")
	content := "loader: /vmlinuz-linux-lts\ninitrd: '\\initramfs-linux-lts.img'\nfallback_suffix: ' (Rescue)'\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))

	cfg, err := Load(p, true)
	require.NoError(t, err)
	assert.Equal(t, "/vmlinuz-linux-lts", cfg.Loader)
	assert.Equal(t, `\initramfs-linux-lts.img`, cfg.Initrd)
	assert.Equal(t, " (Rescue)", cfg.FallbackSuffix)
	// untouched
	assert.Equal(t, "/bin/bash", cfg.Shell)
	assert.Equal(t, "rw", cfg.RootFlags)
}

func TestUnknownKey(t *testing.T) {
	p := filepath.Join(t.TempDir(), "lusc.yaml")
	require.NoError(t, os.WriteFile(p, []byte("bogus: 1\n"), 0644))
	_, err := Load(p, true)
	assert.Error(t, err)
}
