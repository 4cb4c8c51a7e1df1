package poll

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan0xE/api/api"
)

// DefaultDeadline is how long a submitted job may run before the client
// gives up. It mirrors the backend's own execution limit, so polling past it
// cannot succeed.
const DefaultDeadline = 5 * time.Minute

// TimeoutError means the deadline passed with no terminal answer from the
// backend. The job's true outcome is unknown; this is not a job failure.
var TimeoutError = errors.New("timed out waiting for an obfuscation result")

// JobFailedError carries the backend's cause for a terminally failed job.
type JobFailedError struct {
	Cause string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("obfuscation failed: %s", e.Cause)
}

// Downloader fetches the current state of a submitted job.
type Downloader interface {
	Download(executionID string) (*api.DownloadStatus, error)
}

// Poller drives a submitted job to a terminal outcome: ready, failed, or
// timed out. The deadline is wall-clock from submission, not from the last
// poll, so slow individual polls still count against the budget. The poll
// interval is fixed; there is no backoff.
type Poller struct {
	downloader Downloader
	interval   time.Duration
	deadline   time.Duration
}

func New(d Downloader, interval time.Duration, deadline time.Duration) (*Poller, error) {
	return &Poller{
		downloader: d,
		interval:   interval,
		deadline:   deadline,
	}, nil
}

// Wait polls until the job reaches a terminal state and returns the
// obfuscated bytes on success. Call it immediately after submission: the
// deadline clock starts here.
//
// The first poll happens before any pause, so an already-finished job
// returns without waiting. A transport error from the downloader is
// surfaced verbatim and is not retried; only the still-processing answer
// keeps the loop going, and only until the deadline.
func (p *Poller) Wait(executionID string) ([]byte, error) {
	start := time.Now()
	for {
		status, e := p.downloader.Download(executionID)
		if e != nil {
			return nil, e
		}

		switch status.State {
		case api.StateReady:
			return status.Bytes, nil
		case api.StateFailed:
			return nil, &JobFailedError{Cause: status.Cause}
		}

		if time.Since(start) > p.deadline {
			return nil, TimeoutError
		}
		logrus.Debugf("job %s still processing, waiting %v", executionID, p.interval)
		time.Sleep(p.interval)
	}
}
