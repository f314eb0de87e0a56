package repository

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
)

const auditTimeLayout = "2006-01-02 15:04:05"

// FileAuditRepo implements domain.AuditRepository as an append-only text file.
// Each line starts with "YYYY-MM-DD HH:MM:SS - GRANTED|DENIED" and carries the
// reason and username as trailing key=value pairs:
//
//	2026-10-18 09:14:02 - DENIED reason=VoiceMismatch user="alice"
type FileAuditRepo struct {
	path string
	mu   sync.Mutex
}

// NewFileAuditRepo creates the repository. The parent directory is created if needed.
func NewFileAuditRepo(path string) (*FileAuditRepo, error) {
	if path == "" {
		return nil, errors.New("audit log path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}
	return &FileAuditRepo{path: path}, nil
}

// Record appends one line to the log.
func (r *FileAuditRepo) Record(_ context.Context, rec domain.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatAuditLine(rec) + "\n"); err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// Recent returns up to n of the newest records, oldest first. Lines that do not
// parse are skipped.
func (r *FileAuditRepo) Recent(_ context.Context, n int) ([]domain.AuditRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := []domain.AuditRecord{}
	if n <= 0 {
		return records, nil
	}

	f, err := os.Open(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return records, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		rec, ok := parseAuditLine(sc.Text())
		if !ok {
			continue
		}
		records = append(records, rec)
		if len(records) > n {
			records = records[1:]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	return records, nil
}

// Close implements domain.AuditRepository.
func (r *FileAuditRepo) Close() error { return nil }

func formatAuditLine(rec domain.AuditRecord) string {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s", ts.Format(auditTimeLayout), rec.Outcome)
	if rec.Reason != "" {
		fmt.Fprintf(&b, " reason=%s", rec.Reason)
	}
	if rec.Username != "" {
		fmt.Fprintf(&b, " user=%s", strconv.Quote(rec.Username))
	}
	return b.String()
}

func parseAuditLine(line string) (domain.AuditRecord, bool) {
	if len(line) < len(auditTimeLayout)+3 {
		return domain.AuditRecord{}, false
	}
	ts, err := time.ParseInLocation(auditTimeLayout, line[:len(auditTimeLayout)], time.Local)
	if err != nil {
		return domain.AuditRecord{}, false
	}
	rest, ok := strings.CutPrefix(line[len(auditTimeLayout):], " - ")
	if !ok {
		return domain.AuditRecord{}, false
	}

	outcome, rest, _ := strings.Cut(rest, " ")
	rec := domain.AuditRecord{Timestamp: ts, Outcome: domain.Outcome(outcome)}
	if rec.Outcome != domain.OutcomeGranted && rec.Outcome != domain.OutcomeDenied {
		return domain.AuditRecord{}, false
	}

	if v, ok := strings.CutPrefix(rest, "reason="); ok {
		var reason string
		reason, rest, _ = strings.Cut(v, " ")
		rec.Reason = domain.Reason(reason)
	}
	if v, ok := strings.CutPrefix(rest, "user="); ok {
		if u, err := strconv.Unquote(v); err == nil {
			rec.Username = u
		}
	}
	return rec, true
}
