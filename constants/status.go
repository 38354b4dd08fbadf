package constants

// FileStatus is the lifecycle state of a file record.
type FileStatus string

// Stable values (store these exact strings in DB).
const (
	StatusPending    FileStatus = "Pending"    // registered, not yet processed
	StatusProcessing FileStatus = "Processing" // in flight in the current batch
	StatusCompleted  FileStatus = "Completed"  // suggestion available
	StatusError      FileStatus = "Error"      // terminal failure for this run; message in suggested name
	StatusRenamed    FileStatus = "Renamed"    // suggestion applied
)

var allStatuses = []FileStatus{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusError,
	StatusRenamed,
}

// ParseFileStatus returns the status matching s exactly.
func ParseFileStatus(s string) (FileStatus, bool) {
	for _, st := range allStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// IsTerminal reports whether a run is done with a file in this status.
func (s FileStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}
