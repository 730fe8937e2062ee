package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// journal is an append-only JSON-lines file, one Link per line.
type journal struct {
	mu   sync.Mutex
	file *os.File
}

func openJournal(p string) (*journal, error) {
	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(p), 0770); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(p, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0660)
	if err != nil {
		return nil, err
	}

	return &journal{file: file}, nil
}

func (j *journal) Append(l Link) error {
	b, err := json.Marshal(l)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	_, err = j.file.Write(append(b, '\n'))
	return err
}

// Load reads every link in the journal. A final line without a newline is
// the remains of an interrupted Append: it is kept when it parses and cut
// off otherwise, so the next Append starts on a fresh line.
func (j *journal) Load(logger *zap.Logger) ([]Link, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	var (
		links  []Link
		offset int64
	)
	reader := bufio.NewReader(j.file)
	for line := 1; ; line++ {
		b, err := reader.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("error reading file: %w", err)
		}
		if len(b) == 0 {
			break
		}

		torn := b[len(b)-1] != '\n'
		data := bytes.TrimSpace(b)

		if len(data) > 0 {
			var l Link
			if uerr := json.Unmarshal(data, &l); uerr != nil {
				if !torn {
					return nil, fmt.Errorf("failed to parse journal line %d: %w", line, uerr)
				}

				logger.Warn("dropping torn journal tail", zap.Int("line", line), zap.Int("bytes", len(b)))
				if terr := j.file.Truncate(offset); terr != nil {
					return nil, fmt.Errorf("truncate journal: %w", terr)
				}
				break
			}
			links = append(links, l)
		}

		offset += int64(len(b))

		if torn {
			if _, werr := j.file.Write([]byte{'\n'}); werr != nil {
				return nil, werr
			}
			break
		}
	}

	return links, nil
}

func (j *journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.file.Close()
}
