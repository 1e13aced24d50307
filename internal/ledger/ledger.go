// Package ledger records attendance events in an append-only CSV file and
// enforces at most one record per identity per day.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrEmptyName is returned when an identity name is empty or whitespace.
var ErrEmptyName = errors.New("identity name must not be empty")

// Record is one attendance event. Date is YYYY-MM-DD, Time is HH:MM:SS.
type Record struct {
	Name string `json:"name"`
	Date string `json:"date"`
	Time string `json:"time"`
}

var csvHeader = []string{"Name", "Date", "Time"}

// Ledger appends attendance records to a CSV file. The per-day invariant is
// enforced by scanning the file; the in-session suppression set only avoids
// redundant scans and is not a source of truth.
type Ledger struct {
	path string
	now  func() time.Time

	mu          sync.Mutex
	session     map[string]struct{}
	sessionDate string
}

// New creates a ledger backed by the CSV file at path, writing the header if
// the file does not exist yet.
func New(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating attendance directory: %w", err)
	}

	l := &Ledger{
		path:    path,
		now:     time.Now,
		session: make(map[string]struct{}),
	}
	if err := l.ensureFile(); err != nil {
		return nil, err
	}
	return l, nil
}

// SetClock overrides the ambient clock. Intended for tests.
func (l *Ledger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

func (l *Ledger) ensureFile() error {
	info, err := os.Stat(l.path)
	if err == nil && info.Size() > 0 {
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("checking attendance file: %w", err)
	}

	f, err := os.Create(l.path)
	if err != nil {
		return fmt.Errorf("creating attendance file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing attendance header: %w", err)
	}
	w.Flush()
	return w.Error()
}

// readAll returns every record in the file. A missing file yields an empty
// slice, never an error.
func (l *Ledger) readAll() ([]Record, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening attendance file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading attendance file: %w", err)
	}

	var records []Record
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue // header or malformed row
		}
		records = append(records, Record{Name: row[0], Date: row[1], Time: row[2]})
	}
	return records, nil
}

// Mark records attendance for name today. Reports true if a new record was
// written, false if the identity was already credited for today. The per-day
// check consults durable storage; the suppression set only short-circuits
// repeats within the current scanning session.
func (l *Ledger) Mark(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrEmptyName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	today := now.Format("2006-01-02")

	// The suppression set is only valid for the day it was built; a date
	// change makes every identity markable again.
	if l.sessionDate != today {
		l.session = make(map[string]struct{})
		l.sessionDate = today
	}

	if _, ok := l.session[name]; ok {
		return false, nil
	}

	records, err := l.readAll()
	if err != nil {
		return false, err
	}
	for _, rec := range records {
		if rec.Name == name && rec.Date == today {
			// Stale suppression set after a session reset; re-add so the
			// next attempt skips the file scan.
			l.session[name] = struct{}{}
			return false, nil
		}
	}

	if err := l.append(Record{Name: name, Date: today, Time: now.Format("15:04:05")}); err != nil {
		return false, err
	}
	l.session[name] = struct{}{}
	return true, nil
}

func (l *Ledger) append(rec Record) error {
	if err := l.ensureFile(); err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening attendance file for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{rec.Name, rec.Date, rec.Time}); err != nil {
		return fmt.Errorf("appending attendance record: %w", err)
	}
	w.Flush()
	return w.Error()
}

// Log returns attendance records, newest first. dateFilter keeps only exact
// date matches (YYYY-MM-DD); nameFilter keeps records whose name contains the
// filter, case-insensitively and ignoring diacritics. Empty filters match
// everything. A missing file yields an empty log.
func (l *Ledger) Log(dateFilter, nameFilter string) ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.readAll()
	if err != nil {
		return nil, err
	}

	nameFilter = normalizeName(nameFilter)
	filtered := make([]Record, 0, len(records))
	for _, rec := range records {
		if dateFilter != "" && rec.Date != dateFilter {
			continue
		}
		if nameFilter != "" && !strings.Contains(normalizeName(rec.Name), nameFilter) {
			continue
		}
		filtered = append(filtered, rec)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Date != filtered[j].Date {
			return filtered[i].Date > filtered[j].Date
		}
		return filtered[i].Time > filtered[j].Time
	})
	return filtered, nil
}

// ResetSession clears the in-session suppression set. Called when a new
// scanning session starts; the per-day invariant in the file still holds.
func (l *Ledger) ResetSession() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.session = make(map[string]struct{})
}

// Path returns the location of the CSV file, for export endpoints.
func (l *Ledger) Path() string {
	return l.path
}
