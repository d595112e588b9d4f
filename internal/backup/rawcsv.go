package backup

import (
	"bytes"
	"encoding/csv"
	"io"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

const (
	rawPrefix    = "kaggle_raw_"
	rawLatest    = "kaggle_raw_latest.csv"
	latestBanner = "Latest Snapshot"
)

func isRawCSV(name string) bool {
	return strings.HasPrefix(name, rawPrefix) && strings.HasSuffix(name, ".csv")
}

var rawStampRe = regexp.MustCompile(`^kaggle_raw_(\d{10})`)

func rawStamp(name string) string {
	if name == rawLatest {
		return latestBanner
	}
	if m := rawStampRe.FindStringSubmatch(name); m != nil {
		return DisplayStamp(m[1])
	}
	return "Unknown"
}

// ListRawCSV lists the raw downloads: kaggle_raw_latest.csv first, then
// the rest newest first.
func (m *Manager) ListRawCSV() ([]File, error) {
	files, err := m.list(m.rawDir, isRawCSV)
	if err != nil {
		return nil, err
	}
	for i := range files {
		files[i].IsLatest = files[i].Name == rawLatest
		files[i].Timestamp = rawStamp(files[i].Name)
	}
	sortNewestFirst(files)
	return files, nil
}

// CSVData is a raw CSV file keyed by its header row.
type CSVData struct {
	Filename  string              `json:"filename"`
	Timestamp string              `json:"timestamp"`
	Columns   []string            `json:"columns"`
	TotalRows int                 `json:"totalRows"`
	Data      []map[string]string `json:"data"`
}

// ReadRawCSV parses a raw download.  Cells are trimmed, blank lines are
// skipped and short rows leave their missing columns empty.
func (m *Manager) ReadRawCSV(name string) (*CSVData, error) {
	if err := ValidateFilename(name); err != nil {
		return nil, err
	}
	if !isRawCSV(name) {
		return nil, eris.Wrapf(ErrInvalidFilename, "%q is not a raw CSV file", name)
	}
	raw, err := readIn(m.rawDir, name)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	out := &CSVData{Filename: name, Timestamp: rawStamp(name), Columns: []string{}, Data: []map[string]string{}}
	header, err := r.Read()
	if err == io.EOF {
		return out, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "backup: parse %s header", name)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	out.Columns = header

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "backup: parse %s", name)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			} else {
				row[col] = ""
			}
		}
		out.Data = append(out.Data, row)
	}
	out.TotalRows = len(out.Data)
	return out, nil
}
