package utils

import (
	"bytes"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/apex/log"
	"github.com/msoap/byline"
	"github.com/pkg/errors"
)

// Runner is the boundary between lusc and the system utilities it drives
// (blkid, findmnt, and the generated script).
type Runner interface {
	// Run the command @args and wait for it.  Return its stdout, its exit
	// code, and an error if it could not be started.  A non-zero exit code
	// is not an error.
	Run(args ...string) (string, int, error)
	// Stream runs @args passing every line of combined output to @logf.
	Stream(logf func(string, ...interface{}), args ...string) (int, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func NewRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(args ...string) (string, int, error) {
	if len(args) == 0 {
		return "", -1, errors.New("no command given")
	}
	log.Debugf("Running: %s", strings.Join(args, " "))
	cmd := exec.Command(args[0], args[1:]...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	rc := GetCommandErrorRC(err)
	if err != nil && !isExitError(err) {
		return "", rc, errors.Wrapf(err, "Failed running %v", args)
	}
	if rc != 0 {
		log.Debugf("%s: rc=%d stderr: %s", args[0], rc, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), rc, nil
}

func (r *ExecRunner) Stream(logf func(string, ...interface{}), args ...string) (int, error) {
	if len(args) == 0 {
		return -1, errors.New("no command given")
	}
	cmd := exec.Command(args[0], args[1:]...) //nolint:gosec
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return -1, errors.Wrapf(err, "Failed getting stdout pipe for %v", args)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return -1, errors.Wrapf(err, "Failed starting %v", args)
	}
	pid := cmd.Process.Pid
	log.Debugf("|%d-start| %q", pid, args)

	var wg sync.WaitGroup
	var readErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		readErr = byline.NewReader(stdoutPipe).Each(
			func(line []byte) {
				logf("%s", strings.TrimSuffix(string(line), "\n"))
			}).Discard()
	}()

	wg.Wait()
	err = cmd.Wait()
	rc := GetCommandErrorRC(err)
	log.Debugf("|%d-exit | rc=%d", pid, rc)
	if readErr != nil {
		log.Warnf("Failed reading output of %s: %v", args[0], readErr)
	}
	if err != nil && !isExitError(err) {
		return rc, errors.Wrapf(err, "Failed waiting for %v", args)
	}
	return rc, nil
}

func isExitError(err error) bool {
	_, ok := err.(*exec.ExitError)
	return ok
}

func GetCommandErrorRCDefault(err error, rcError int) int {
	if err == nil {
		return 0
	}
	exitError, ok := err.(*exec.ExitError)
	if ok {
		if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
			return status.ExitStatus()
		}
	}
	log.Debugf("Unavailable return code for %s. returning %d", err, rcError)
	return rcError
}

func GetCommandErrorRC(err error) int {
	return GetCommandErrorRCDefault(err, 127)
}
