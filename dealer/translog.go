package dealer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Record is one applied action in the transaction log: the action's wire
// text, the hand it belongs to, and the send/receive timestamps of the
// response that produced it.
type Record struct {
	ActionText string
	HandID     uint32
	Send       time.Time
	Recv       time.Time
}

// String formats the record as persisted, one per line:
// "<action> <handId> <sendSec>.<sendMicros> <recvSec>.<recvMicros>".
func (r Record) String() string {
	return fmt.Sprintf("%s %d %s %s", r.ActionText, r.HandID, formatStamp(r.Send), formatStamp(r.Recv))
}

// ParseRecord parses one transaction log line.
func ParseRecord(line string) (Record, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) != 4 {
		return Record{}, fmt.Errorf("malformed transaction record %q", line)
	}
	var rec Record
	rec.ActionText = fields[0]
	if _, err := fmt.Sscanf(fields[1], "%d", &rec.HandID); err != nil {
		return Record{}, fmt.Errorf("bad hand id in transaction record %q", line)
	}
	var err error
	if rec.Send, err = parseStamp(fields[2]); err != nil {
		return Record{}, fmt.Errorf("bad send stamp in transaction record %q", line)
	}
	if rec.Recv, err = parseStamp(fields[3]); err != nil {
		return Record{}, fmt.Errorf("bad receive stamp in transaction record %q", line)
	}
	return rec, nil
}

func formatStamp(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}

func parseStamp(s string) (time.Time, error) {
	var sec int64
	var micros int64
	if _, err := fmt.Sscanf(s, "%d.%d", &sec, &micros); err != nil {
		return time.Time{}, err
	}
	if micros < 0 || micros > 999999 {
		return time.Time{}, fmt.Errorf("microseconds out of range in %q", s)
	}
	return time.Unix(sec, micros*1000), nil
}

// TransactionLog is the durable append-only record of applied actions,
// flushed to disk after every write. Opening in append mode keeps any prior
// content, which the game loop replays at startup to fast-forward an
// interrupted match.
type TransactionLog struct {
	f       *os.File
	pending []Record
}

// OpenTransactionLog opens (creating if needed) the transaction file. With
// appendMode the existing records are retained and exposed via Pending;
// otherwise the file is truncated and the match starts clean.
func OpenTransactionLog(path string, appendMode bool) (*TransactionLog, error) {
	flags := os.O_RDWR | os.O_CREATE
	if !appendMode {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open transaction file: %w", err)
	}

	t := &TransactionLog{f: f}
	if appendMode {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			rec, err := ParseRecord(line)
			if err != nil {
				f.Close()
				return nil, err
			}
			t.pending = append(t.pending, rec)
		}
		if err := scanner.Err(); err != nil {
			f.Close()
			return nil, fmt.Errorf("read transaction file: %w", err)
		}
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			f.Close()
			return nil, err
		}
	}
	return t, nil
}

// Pending returns the records that were already on disk when the log was
// opened, in file order. They are consumed by the recovery replay.
func (t *TransactionLog) Pending() []Record {
	return t.pending
}

// Append writes one record and flushes it to stable storage before
// returning.
func (t *TransactionLog) Append(rec Record) error {
	if _, err := t.f.WriteString(rec.String() + "\n"); err != nil {
		return fmt.Errorf("write transaction file: %w", err)
	}
	if err := t.f.Sync(); err != nil {
		return fmt.Errorf("sync transaction file: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (t *TransactionLog) Close() error {
	return t.f.Close()
}
