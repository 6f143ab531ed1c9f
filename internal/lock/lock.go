// Package lock keeps a single interactive session per config directory.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/trainweek/internal/constants"
	"github.com/julianstephens/trainweek/internal/logger"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
)

var ErrAlreadyRunning = errors.New(constants.AppName + " is already running")

// Lock is a held pid lockfile.
type Lock struct {
	path string
	pid  int
}

// Path returns the lockfile location inside dir.
func Path(dir string) string {
	return filepath.Join(dir, constants.LockfileName)
}

// Holder reports the pid recorded in the lockfile and whether that process
// is still a live trainweek instance.
func Holder(dir string) (int, bool, error) {
	content, err := os.ReadFile(Path(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil || pid <= 0 {
		return 0, false, errors.New("lockfile is malformed")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return pid, false, nil
	}
	if !strings.HasPrefix(process.Executable(), constants.AppName) {
		// pid was recycled by an unrelated program
		return pid, false, nil
	}
	return pid, true, nil
}

// Acquire takes the lock in dir, replacing a stale or malformed lockfile.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	self := getpidFunc()

	pid, running, err := Holder(dir)
	switch {
	case err != nil:
		logger.Warn("replacing unreadable lockfile", "path", Path(dir), "error", err)
	case running && pid != self:
		return nil, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	case pid != 0:
		logger.Debug("replacing stale lockfile", "pid", pid)
	}

	path := Path(dir)
	if err := os.WriteFile(path, []byte(strconv.Itoa(self)), 0600); err != nil {
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}
	return &Lock{path: path, pid: self}, nil
}

// Release removes the lockfile if it still names this process.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	content, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if strings.TrimSpace(string(content)) != strconv.Itoa(l.pid) {
		return nil
	}
	return os.Remove(l.path)
}
