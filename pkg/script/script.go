package script

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/project-machine/lusc/pkg/utils"
)

const (
	Header = "# Generated UEFI boot entries by LUSC"
	Mode   = 0755
)

// Script is the generated registration script.
type Script struct {
	Shell    string
	Commands []string // one command line each, in execution order
}

// Lines returns the script content, one element per line.
func (s Script) Lines() []string {
	lines := []string{"#!" + s.Shell, Header}
	lines = append(lines, s.Commands...)
	return append(lines, "exit 0")
}

// Write creates or truncates @path with the script and makes it
// executable.  A failure to chmod is only logged.
func Write(path string, s Script) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, Mode)
	if err != nil {
		return errors.Wrapf(err, "Unable to create script file %s", path)
	}
	w := bufio.NewWriter(f)
	for _, l := range s.Lines() {
		if _, err := w.WriteString(l + "\n"); err != nil {
			f.Close()
			return errors.Wrapf(err, "Failed writing %s", path)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "Failed writing %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "Failed closing %s", path)
	}

	// O_CREATE honours the umask and leaves an existing file's mode alone.
	if err := os.Chmod(path, Mode); err != nil {
		log.Warnf("Failed to chmod %s: %v", path, err)
	}
	log.Debugf("Wrote %s", path)
	return nil
}

// Execute runs the script at @path once, passing its output to @logf,
// and returns its exit code.  An error means it could not be run at all.
func Execute(r utils.Runner, logf func(string, ...interface{}), path string) (int, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return -1, errors.Wrapf(err, "Failed resolving %s", path)
	}
	return r.Stream(logf, abs)
}
