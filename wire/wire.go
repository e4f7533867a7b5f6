// Package wire implements the line framing shared by the dealer and the
// client driver: CRLF-terminated messages, comment lines, and the version
// handshake exchanged when a seat connects.
package wire

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Protocol version announced by clients and accepted by the dealer. The
// dealer requires an exact major match and a minor no newer than its own;
// a mismatch is logged and the connection proceeds anyway.
const (
	VersionMajor    = 2
	VersionMinor    = 0
	VersionRevision = 0
)

// MaxLineLen bounds a single protocol line, terminator included.
const MaxLineLen = 4096

// Shared protocol sentinel errors. Used by both the dealer and client
// packages so callers can classify transport failures.
var (
	ErrLineTooLong = errors.New("protocol line too long")
	ErrBadVersion  = errors.New("malformed version line")
)

// IsComment reports whether a line is a comment and must be ignored
// wherever a line is expected.
func IsComment(line string) bool {
	return len(line) > 0 && (line[0] == '#' || line[0] == ';')
}

// ReadLine reads one newline-terminated line, stripping the terminator and
// any trailing carriage return. Lines longer than MaxLineLen are an error,
// as is unterminated input that fills the reader's buffer: a peer that never
// sends a newline cannot grow memory past the buffer size.
func ReadLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadSlice('\n')
	if err != nil {
		if errors.Is(err, bufio.ErrBufferFull) {
			return "", ErrLineTooLong
		}
		return "", err
	}
	if len(line) > MaxLineLen {
		return "", ErrLineTooLong
	}
	return strings.TrimRight(string(line), "\r\n"), nil
}

// WriteLine writes one CRLF-terminated message.
func WriteLine(w io.Writer, line string) error {
	if len(line)+2 > MaxLineLen {
		return ErrLineTooLong
	}
	_, err := io.WriteString(w, line+"\r\n")
	return err
}

// VersionLine formats the handshake line a client sends on connect.
func VersionLine() string {
	return fmt.Sprintf("VERSION:%d.%d.%d", VersionMajor, VersionMinor, VersionRevision)
}

// ParseVersion parses a handshake line into its three components.
func ParseVersion(line string) (major, minor, revision int, err error) {
	n, err := fmt.Sscanf(strings.TrimSpace(line), "VERSION:%d.%d.%d", &major, &minor, &revision)
	if err != nil || n < 3 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrBadVersion, line)
	}
	return major, minor, revision, nil
}

// VersionCompatible reports whether an announced version is one this
// server speaks: the major must match exactly and the minor must not be
// newer than ours.
func VersionCompatible(major, minor int) bool {
	return major == VersionMajor && minor <= VersionMinor
}
