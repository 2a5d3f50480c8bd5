package clientcli

import (
	"time"
)

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath  string
	RemotePath string
	Recursive  bool
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath  string `json:"local_path"`
	RemotePath string `json:"remote_path"`
	Size       int64  `json:"size_bytes"`
	Err        error  `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	RemotePath string
	LocalPath  string // empty = derive from remote, "-" = stdout
}

// DownloadResult represents the result of downloading a file.
type DownloadResult struct {
	RemotePath  string `json:"remote_path"`
	LocalPath   string `json:"local_path"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size_bytes"`
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	Paths []string
}

// DeleteResult represents the result of deleting a single entry.
type DeleteResult struct {
	Path    string `json:"path"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// ListOptions configures a list operation.
type ListOptions struct {
	Path      string
	Recursive bool // descend into child collections
}

// ListResult contains the entries of a listing, sorted by path.
type ListResult struct {
	Items []ObjectInfo `json:"items"`
}

// ObjectInfo represents a single file or collection on the server.
type ObjectInfo struct {
	Path        string    `json:"path"`
	IsDir       bool      `json:"is_dir"`
	ContentType string    `json:"content_type,omitempty"`
	ETag        string    `json:"etag,omitempty"`
	Size        int64     `json:"size_bytes"`
	ModTime     time.Time `json:"modified_at"`
}

// MkdirOptions configures a collection creation.
type MkdirOptions struct {
	Path    string
	Parents bool // create missing ancestors, succeed if the collection exists
}

// TransferOptions configures a copy or move.
type TransferOptions struct {
	Source      string
	Destination string
	Overwrite   bool
}

// TransferResult represents the result of a copy or move.
type TransferResult struct {
	Operation   string `json:"operation"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
}
