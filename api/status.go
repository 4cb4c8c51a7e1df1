package api

type DownloadState uint

// DownloadState defines the possible answers to a download poll.
const (
	// StateProcessing means the job has no terminal answer yet.
	StateProcessing DownloadState = iota
	// StateReady means the obfuscated binary is available.
	StateReady
	// StateFailed means the job terminally failed server-side.
	StateFailed
)

func (s DownloadState) String() string {
	switch s {
	case StateProcessing:
		return "Processing"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	default:
		panic("unexpected DownloadState")
	}
}

// DownloadStatus is the result of one download poll.
type DownloadStatus struct {
	State DownloadState
	// Bytes holds the obfuscated binary when State is StateReady.
	Bytes []byte
	// Cause holds the server's explanation when State is StateFailed.
	Cause string
}
