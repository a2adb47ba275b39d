package config

import (
	"os"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const DefaultPath = "/etc/lusc.yaml"

// Config holds the paths and names baked into the generated boot entries.
// Every field is optional in the file; Load fills the rest from Defaults.
type Config struct {
	// Script is the generated script, relative to the working directory.
	Script string `yaml:"script"`

	// Shell is the shebang interpreter.
	Shell string `yaml:"shell"`

	Loader string `yaml:"loader"`

	// Initrd and FallbackInitrd use EFI path syntax, relative to the ESP.
	Initrd         string `yaml:"initrd"`
	FallbackInitrd string `yaml:"fallback_initrd"`
	FallbackSuffix string `yaml:"fallback_suffix"`

	// BootMount is where the ESP is expected to be mounted.
	BootMount string `yaml:"boot_mount"`
	RootFlags string `yaml:"root_flags"`
}

func Defaults() Config {
	return Config{
		Script:         "uefi_stub_gen_output.sh",
		Shell:          "/bin/bash",
		Loader:         "/vmlinuz-linux",
		Initrd:         `\initramfs-linux.img`,
		FallbackInitrd: `\initramfs-linux-fallback.img`,
		FallbackSuffix: " (Fallback)",
		BootMount:      "/boot",
		RootFlags:      "rw",
	}
}

// Load reads the yaml config at @path on top of Defaults.  A missing file
// is only an error when @explicit is set.
func Load(path string, explicit bool) (Config, error) {
	cfg := Defaults()
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			log.Debugf("No config at %s, using defaults", path)
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "Failed reading config %s", path)
	}

	var file Config
	if err := yaml.UnmarshalStrict(content, &file); err != nil {
		return cfg, errors.Wrapf(err, "Failed parsing config %s", path)
	}
	cfg.merge(file)
	log.Debugf("Loaded config %s: %+v", path, cfg)
	return cfg, nil
}

func (c *Config) merge(o Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Script, o.Script)
	set(&c.Shell, o.Shell)
	set(&c.Loader, o.Loader)
	set(&c.Initrd, o.Initrd)
	set(&c.FallbackInitrd, o.FallbackInitrd)
	set(&c.FallbackSuffix, o.FallbackSuffix)
	set(&c.BootMount, o.BootMount)
	set(&c.RootFlags, o.RootFlags)
}
