package autostart

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedRecord is returned by ParseRecord for values that are neither
// the current format nor the legacy bare path.
var ErrMalformedRecord = errors.New("malformed autostart record")

const (
	fieldSep = "|"

	// ticksAtUnixEpoch is 1970-01-01 in 100ns units since 0001-01-01 UTC.
	ticksAtUnixEpoch int64 = 621355968000000000
	ticksPerSecond   int64 = 10_000_000
)

// Record is one autostart registration: which binary, which version, and
// when it was written.
type Record struct {
	Path         string
	Version      string
	RegisteredAt time.Time

	// Legacy is set for the old format, which carried only a quoted path.
	Legacy bool
}

// Encode renders the record as `"<path>"|<version>|<ticks>`.
func (r Record) Encode() string {
	return `"` + r.Path + `"` + fieldSep + r.Version + fieldSep + strconv.FormatInt(toTicks(r.RegisteredAt), 10)
}

// ParseRecord decodes a stored value. Both the current three-field format
// and the legacy bare (optionally quoted) path are accepted.
func ParseRecord(raw string) (Record, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Record{}, fmt.Errorf("%w: empty value", ErrMalformedRecord)
	}

	path, rest, err := splitPath(raw)
	if err != nil {
		return Record{}, err
	}
	if path == "" {
		return Record{}, fmt.Errorf("%w: empty path", ErrMalformedRecord)
	}
	if rest == "" {
		return Record{Path: path, Legacy: true}, nil
	}

	fields := strings.Split(strings.TrimPrefix(rest, fieldSep), fieldSep)
	if !strings.HasPrefix(rest, fieldSep) || len(fields) != 2 {
		return Record{}, fmt.Errorf("%w: want path, version and timestamp", ErrMalformedRecord)
	}
	version := strings.TrimSpace(fields[0])
	if version == "" {
		return Record{}, fmt.Errorf("%w: empty version", ErrMalformedRecord)
	}
	ticks, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil || ticks < 0 {
		return Record{}, fmt.Errorf("%w: bad timestamp %q", ErrMalformedRecord, fields[1])
	}

	return Record{Path: path, Version: version, RegisteredAt: fromTicks(ticks)}, nil
}

// splitPath separates the path from the trailing "|version|ticks". A quoted
// path ends at its closing quote, so it may itself contain the separator.
// An unquoted path gives up its last two separators to version and ticks.
func splitPath(raw string) (path, rest string, err error) {
	if strings.HasPrefix(raw, `"`) {
		end := strings.Index(raw[1:], `"`)
		if end < 0 {
			return "", "", fmt.Errorf("%w: unterminated quote", ErrMalformedRecord)
		}
		return strings.TrimSpace(raw[1 : end+1]), strings.TrimSpace(raw[end+2:]), nil
	}

	last := strings.LastIndex(raw, fieldSep)
	if last < 0 {
		return strings.TrimSpace(raw), "", nil
	}
	prev := strings.LastIndex(raw[:last], fieldSep)
	if prev < 0 {
		return "", "", fmt.Errorf("%w: want path, version and timestamp", ErrMalformedRecord)
	}
	return strings.TrimSpace(raw[:prev]), raw[prev:], nil
}

// LaunchPath extracts the executable from a stored value. It returns ""
// when the value cannot be parsed.
func LaunchPath(raw string) string {
	rec, err := ParseRecord(raw)
	if err != nil {
		return ""
	}
	return rec.Path
}

func toTicks(t time.Time) int64 {
	return t.Unix()*ticksPerSecond + int64(t.Nanosecond())/100 + ticksAtUnixEpoch
}

func fromTicks(ticks int64) time.Time {
	d := ticks - ticksAtUnixEpoch
	return time.Unix(d/ticksPerSecond, (d%ticksPerSecond)*100).UTC()
}
