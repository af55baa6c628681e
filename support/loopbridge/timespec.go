package loopbridge

import (
	"time"

	"golang.org/x/sys/unix"
)

func durationToTimespec(d time.Duration) unix.Timespec {
	return unix.Timespec{
		Sec:  int64(d / time.Second),
		Nsec: int64(d % time.Second),
	}
}
