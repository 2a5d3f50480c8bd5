package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Formatter formats results for output.
type Formatter interface {
	FormatUpload(w io.Writer, results []UploadResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatList(w io.Writer, result *ListResult) error
	FormatMkdir(w io.Writer, path string) error
	FormatTransfer(w io.Writer, result *TransferResult) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatUpload formats upload results as human-readable text.
func (f *HumanFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.LocalPath, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Uploaded: %s (%s)\n", r.RemotePath, formatSize(r.Size))
		}
	}
	return nil
}

// FormatDownload formats download result as human-readable text.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if !f.Quiet {
		if result.LocalPath == "-" {
			_, _ = fmt.Fprintf(w, "Downloaded: %s (%s)\n", result.RemotePath, formatSize(result.Size))
		} else {
			_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", result.RemotePath, result.LocalPath, formatSize(result.Size))
		}
	}
	return nil
}

// FormatDelete formats delete results as human-readable text.
func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.Path, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s\n", r.Path)
		}
	}
	return nil
}

// FormatList formats list results as human-readable text.
func (f *HumanFormatter) FormatList(w io.Writer, result *ListResult) error {
	if len(result.Items) == 0 {
		_, _ = fmt.Fprintln(w, "No entries found")
		return nil
	}

	// Calculate column widths
	maxPathLen := 4 // "PATH"
	for i := range result.Items {
		if n := len(displayPath(&result.Items[i])); n > maxPathLen {
			maxPathLen = n
		}
	}
	if maxPathLen > 60 {
		maxPathLen = 60
	}

	// Print header
	_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n", maxPathLen, "PATH", "SIZE", "MODIFIED")
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n", strings.Repeat("-", maxPathLen), strings.Repeat("-", 10), strings.Repeat("-", 19))

	// Print items
	for i := range result.Items {
		item := &result.Items[i]
		path := displayPath(item)
		if len(path) > maxPathLen {
			path = path[:maxPathLen-3] + "..."
		}
		size := formatSize(item.Size)
		if item.IsDir {
			size = "-"
		}
		_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n",
			maxPathLen,
			path,
			size,
			item.ModTime.Format("2006-01-02 15:04:05"),
		)
	}

	// Print summary
	_, _ = fmt.Fprintf(w, "\n%d entries (%s total)\n", len(result.Items), formatSize(result.TotalSize()))

	return nil
}

// FormatMkdir formats a created collection as human-readable text.
func (f *HumanFormatter) FormatMkdir(w io.Writer, path string) error {
	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "Created: %s/\n", path)
	}
	return nil
}

// FormatTransfer formats a copy or move as human-readable text.
func (f *HumanFormatter) FormatTransfer(w io.Writer, result *TransferResult) error {
	if f.Quiet {
		return nil
	}
	verb := "Copied"
	if result.Operation == "move" {
		verb = "Moved"
	}
	_, _ = fmt.Fprintf(w, "%s: %s -> %s\n", verb, result.Source, result.Destination)
	return nil
}

// displayPath marks collections with a trailing slash.
func displayPath(item *ObjectInfo) string {
	if item.IsDir {
		return item.Path + "/"
	}
	return item.Path
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatUpload formats upload results as JSON.
func (f *JSONFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	// Convert errors to strings for JSON output
	type jsonResult struct {
		LocalPath  string `json:"local_path"`
		RemotePath string `json:"remote_path"`
		Size       int64  `json:"size_bytes,omitempty"`
		Error      string `json:"error,omitempty"`
	}

	output := make([]jsonResult, len(results))
	for i := range results {
		r := &results[i]
		jr := jsonResult{
			LocalPath:  r.LocalPath,
			RemotePath: r.RemotePath,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		} else {
			jr.Size = r.Size
		}
		output[i] = jr
	}

	return writeJSON(w, output)
}

// FormatDownload formats download result as JSON.
func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

// FormatDelete formats delete results as JSON.
func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	// Convert errors to strings for JSON output
	type jsonResult struct {
		Path    string `json:"path"`
		Deleted bool   `json:"deleted"`
		Error   string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i, r := range results {
		jr := jsonResult{
			Path:    r.Path,
			Deleted: r.Deleted,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

// FormatList formats list results as JSON.
func (f *JSONFormatter) FormatList(w io.Writer, result *ListResult) error {
	if result.Items == nil {
		result = &ListResult{Items: []ObjectInfo{}}
	}
	return writeJSON(w, result)
}

// FormatMkdir formats a created collection as JSON.
func (f *JSONFormatter) FormatMkdir(w io.Writer, path string) error {
	output := struct {
		Path    string `json:"path"`
		Created bool   `json:"created"`
	}{
		Path:    path,
		Created: true,
	}
	return writeJSON(w, output)
}

// FormatTransfer formats a copy or move as JSON.
func (f *JSONFormatter) FormatTransfer(w io.Writer, result *TransferResult) error {
	return writeJSON(w, result)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatProfileList prints one row per profile, with the default marked *.
// The password column only appears when showSecrets is set.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := "  NAME\tENDPOINT\tUSERNAME"
	if showSecrets {
		header += "\tPASSWORD"
	}
	_, _ = fmt.Fprintln(tw, header)

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}
		user := p.Username
		if user == "" {
			user = "(anonymous)"
		}

		row := fmt.Sprintf("%s %s\t%s\t%s", marker, p.Name, p.Endpoint, user)
		if showSecrets {
			row += "\t" + p.Password
		}
		_, _ = fmt.Fprintln(tw, row)
	}

	return tw.Flush()
}

// FormatProfileShow prints a profile as aligned key/value lines.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	name := profile.Name
	if isDefault {
		name += " (default)"
	}
	user := profile.Username
	if user == "" {
		user = "(anonymous)"
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Name:\t%s\n", name)
	_, _ = fmt.Fprintf(tw, "Endpoint:\t%s\n", profile.Endpoint)
	_, _ = fmt.Fprintf(tw, "Username:\t%s\n", user)
	_, _ = fmt.Fprintf(tw, "Password:\t%s\n", maskSecret(profile.Password, showSecrets))
	return tw.Flush()
}

// jsonProfile is the JSON rendering shared by the profile commands.
type jsonProfile struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	Username string `json:"username"`
	Password string `json:"password"`
	Default  bool   `json:"default"`
}

func newJSONProfile(p *Profile, isDefault, showSecrets bool) jsonProfile {
	return jsonProfile{
		Name:     p.Name,
		Endpoint: p.Endpoint,
		Username: p.Username,
		Password: maskSecret(p.Password, showSecrets),
		Default:  isDefault,
	}
}

func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	out := make([]jsonProfile, len(profiles))
	for i := range profiles {
		out[i] = newJSONProfile(&profiles[i], profiles[i].Name == defaultName, showSecrets)
	}
	return writeJSON(w, map[string][]jsonProfile{"profiles": out})
}

func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	return writeJSON(w, newJSONProfile(&profile, isDefault, showSecrets))
}

// maskSecret hides a password unless showSecrets is set.
func maskSecret(secret string, showSecrets bool) string {
	switch {
	case showSecrets:
		return secret
	case secret == "":
		return "(not set)"
	default:
		return "********"
	}
}
