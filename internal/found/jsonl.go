package found

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// DefaultJSONLFile is the export file name used by earlier versions.
const DefaultJSONLFile = "found_wallets.json"

// JSONL appends one JSON object per line to a file.
type JSONL struct {
	path string
	mu   sync.Mutex
}

// NewJSONL creates an appender for path. The file is created on first write.
func NewJSONL(path string) *JSONL {
	return &JSONL{path: path}
}

// Path returns the output file.
func (j *JSONL) Path() string {
	return j.path
}

// Append writes r as a single line and syncs the file.
func (j *JSONL) Append(_ context.Context, r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open %s: %w", j.path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", j.path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync %s: %w", j.path, err)
	}
	return f.Close()
}

// ReadJSONL loads every record in a JSONL file. A missing file yields no
// records. Blank lines are skipped.
func ReadJSONL(path string) ([]Record, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			return out, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		out = append(out, r)
	}
	return out, sc.Err()
}
