package scratch

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"syscall"
)

// dirPrefix is followed by the owning process id and a random suffix.
const dirPrefix = "agevault-"

func ownedPattern() string {
	return fmt.Sprintf("%s%d-*", dirPrefix, os.Getpid())
}

// ownerPID returns the process id recorded in a scratch directory name.
// Names without one report ok == false.
func ownerPID(name string) (pid int, ok bool) {
	rest, found := strings.CutPrefix(name, dirPrefix)
	if !found {
		return 0, false
	}
	field, _, found := strings.Cut(rest, "-")
	if !found {
		return 0, false
	}
	pid, err := strconv.Atoi(field)
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// processAlive reports whether pid names a running process.
func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// FindProcess only succeeds for live processes on windows.
	if runtime.GOOS == "windows" {
		return true
	}
	err = p.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
