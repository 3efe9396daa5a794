package model

import "encoding/json"

// FileStatus is the answer of /uuid_exists/.
type FileStatus struct {
	UUID    string
	Exists  bool
	Message string
}

// DownloadedFile describes a file fetched from /get_file/.
type DownloadedFile struct {
	UUID     string
	Ext      string
	Filename string // From Content-Disposition, empty when absent
	Size     int64
}

// Feedback is a comment about a processed file, posted to /feedback_form/.
type Feedback struct {
	UUID   string
	Fields map[string]string
}

// StatsDateLayout is the date format /stats/ accepts.
const StatsDateLayout = "2006-01-02"

// Stats is the answer of /stats/ for one day.
type Stats struct {
	Date             string      `json:"-"`
	FilesStored      int         `json:"files_stored"`
	FilesStoredSize  string      `json:"files_stored_size"`
	FreeStorageSpace string      `json:"free_storage_space"`
	Queue            StatsBucket `json:"queue"`
	Stored           StatsBucket `json:"stored"`

	// Usage keeps the remaining per-day counters as sent by the service.
	Usage map[string]json.RawMessage `json:"-"`
}

// StatsBucket counts files in the queue or in storage, per masked sender.
type StatsBucket struct {
	Items int            `json:"items"`
	Who   map[string]int `json:"who"`
}
