// Package backup snapshots the data collections before a refresh and gives
// read access to the snapshots and to the raw CSV downloads of the fetch
// script.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

var (
	// ErrInvalidFilename is returned for names that could escape the
	// backup or raw directory, or that do not look like a known file.
	ErrInvalidFilename = errors.New("invalid filename")
	// ErrNotFound is returned when the requested file does not exist.
	ErrNotFound = errors.New("file not found")
)

// stampLayout is ddmmyyHHMMSS.
const stampLayout = "020106150405"

var stampRe = regexp.MustCompile(`(\d{10})`)

// Manager reads and writes snapshot files.
type Manager struct {
	dataDir   string
	backupDir string
	rawDir    string
	now       func() time.Time
}

// New returns a Manager.  Snapshots are written to backupDir; raw CSV files
// are read from rawDir.
func New(dataDir, backupDir, rawDir string) *Manager {
	return &Manager{dataDir: dataDir, backupDir: backupDir, rawDir: rawDir, now: time.Now}
}

// File describes one backup or raw CSV file.
type File struct {
	Name      string    `json:"name"`
	Timestamp string    `json:"timestamp"`
	IsLatest  bool      `json:"isLatest,omitempty"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"modTime"`

	taken time.Time
}

// ValidateFilename rejects names containing "..", "/" or "\".
func ValidateFilename(name string) error {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return eris.Wrapf(ErrInvalidFilename, "%q", name)
	}
	return nil
}

// DisplayStamp renders the first ten-digit run of name as
// "dd-mm-20yy HH:MM", or "Unknown".
func DisplayStamp(name string) string {
	m := stampRe.FindString(name)
	if m == "" {
		return "Unknown"
	}
	return m[0:2] + "-" + m[2:4] + "-20" + m[4:6] + " " + m[6:8] + ":" + m[8:10]
}

// stampTime parses the ddmmyyHHMM[SS] stamp of name for ordering.
func stampTime(name string) time.Time {
	m := stampRe.FindStringIndex(name)
	if m == nil {
		return time.Time{}
	}
	digits := name[m[0]:]
	if len(digits) >= 12 {
		if t, err := time.Parse(stampLayout, digits[:12]); err == nil {
			return t
		}
	}
	t, _ := time.Parse(stampLayout[:10], digits[:10])
	return t
}

// Snapshot copies each named data file to <base>_<ddmmyyHHMMSS>.json in
// the backup directory and returns the backup names.  Every file must hold
// valid JSON; it is re-indented on the way.
func (m *Manager) Snapshot(names []string) ([]string, error) {
	if err := os.MkdirAll(m.backupDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "backup: create backup dir")
	}
	stamp := m.now().Format(stampLayout)

	out := make([]string, 0, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(m.dataDir, name))
		if err != nil {
			return out, eris.Wrapf(err, "backup: read %s", name)
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, raw, "", "  "); err != nil {
			return out, eris.Wrapf(err, "backup: %s is not valid JSON", name)
		}
		target := strings.TrimSuffix(name, filepath.Ext(name)) + "_" + stamp + ".json"
		if err := os.WriteFile(filepath.Join(m.backupDir, target), pretty.Bytes(), 0o644); err != nil {
			return out, eris.Wrapf(err, "backup: write %s", target)
		}
		out = append(out, target)
	}
	return out, nil
}

// ListBackups lists the JSON snapshots, newest first.  Files without a
// parsable stamp sort last.  A missing backup directory yields an empty
// list.
func (m *Manager) ListBackups() ([]File, error) {
	files, err := m.list(m.backupDir, func(n string) bool { return strings.HasSuffix(n, ".json") })
	if err != nil {
		return nil, err
	}
	for i := range files {
		files[i].Timestamp = DisplayStamp(files[i].Name)
	}
	sortNewestFirst(files)
	return files, nil
}

// BackupData is the content of one snapshot.  Count is the number of
// records when the snapshot holds an array.
type BackupData struct {
	Filename  string          `json:"filename"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Count     int             `json:"count"`
}

// ReadBackup loads one snapshot.
func (m *Manager) ReadBackup(name string) (*BackupData, error) {
	if err := ValidateFilename(name); err != nil {
		return nil, err
	}
	raw, err := readIn(m.backupDir, name)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, eris.Errorf("backup: %s is not valid JSON", name)
	}
	var items []json.RawMessage
	count := 0
	if json.Unmarshal(raw, &items) == nil {
		count = len(items)
	}
	return &BackupData{Filename: name, Timestamp: DisplayStamp(name), Data: raw, Count: count}, nil
}

func (m *Manager) list(dir string, keep func(string) bool) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []File{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "backup: read dir %s", dir)
	}
	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !keep(e.Name()) {
			continue
		}
		f := File{Name: e.Name(), taken: stampTime(e.Name())}
		if info, err := e.Info(); err == nil {
			f.Size = info.Size()
			f.ModTime = info.ModTime().UTC()
		}
		files = append(files, f)
	}
	return files, nil
}

func readIn(dir, name string) ([]byte, error) {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrapf(ErrNotFound, "%s", name)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "backup: read %s", name)
	}
	return raw, nil
}

func sortNewestFirst(files []File) {
	slices.SortStableFunc(files, func(a, b File) int {
		if a.IsLatest != b.IsLatest {
			if a.IsLatest {
				return -1
			}
			return 1
		}
		if c := b.taken.Compare(a.taken); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
}
