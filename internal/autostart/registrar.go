package autostart

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/scienceol/playawake/internal/logging"
)

// Outcome reports what Reconcile did with the canonical entry.
type Outcome int

const (
	OutcomeAbsent    Outcome = iota // never registered
	OutcomeValid                    // left untouched
	OutcomeMigrated                 // legacy bare path rewritten
	OutcomeRefreshed                // version drift rewritten in place
	OutcomeArchived                 // path moved or gone; archived and removed
	OutcomeRemoved                  // unparseable value deleted
	OutcomeFailed                   // autorun store could not be read or written
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAbsent:
		return "absent"
	case OutcomeValid:
		return "valid"
	case OutcomeMigrated:
		return "migrated"
	case OutcomeRefreshed:
		return "refreshed"
	case OutcomeArchived:
		return "archived"
	case OutcomeRemoved:
		return "removed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown(" + strconv.Itoa(int(o)) + ")"
	}
}

type Options struct {
	// Name is the canonical key. Other keys starting with it are duplicates.
	Name string
	// Executable is the running binary, already absolute.
	Executable string
	Version    string

	Now    func() time.Time
	Exists func(path string) bool
}

// Registrar owns the canonical autostart entry. Encoding and every format
// migration live here; callers only see Register/Unregister/Reconcile.
type Registrar struct {
	autorun Store
	archive Store
	opts    Options
}

func New(autorun, archive Store, opts Options) *Registrar {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Exists == nil {
		opts.Exists = fileExists
	}
	return &Registrar{autorun: autorun, archive: archive, opts: opts}
}

// IsRegistered reports whether a valid canonical record exists: its path
// exists, matches this executable, and carries this version.
func (r *Registrar) IsRegistered() bool {
	raw, err := r.autorun.Get(r.opts.Name)
	if err != nil {
		return false
	}
	rec, err := ParseRecord(raw)
	if err != nil || rec.Legacy {
		return false
	}
	return r.opts.Exists(rec.Path) && samePath(rec.Path, r.opts.Executable) && rec.Version == r.opts.Version
}

// Register writes the canonical record. Repeating it only refreshes the
// timestamp.
func (r *Registrar) Register() error {
	return r.autorun.Set(r.opts.Name, r.current().Encode())
}

// Unregister removes the canonical record. Absent is not an error.
func (r *Registrar) Unregister() error {
	return r.autorun.Delete(r.opts.Name)
}

// Reconcile validates and repairs the autostart state once at launch. It
// never fails; problems are logged and reflected in the Outcome.
func (r *Registrar) Reconcile(ctx context.Context) Outcome {
	log := logging.FromContext(logging.WithComponent(ctx, "autostart"))
	name := r.opts.Name

	r.purgeDuplicates(log)

	raw, err := r.autorun.Get(name)
	if errors.Is(err, ErrNotFound) {
		return OutcomeAbsent
	}
	if err != nil {
		log.Warn().Err(err).Msg("cannot read autostart entry")
		return OutcomeFailed
	}

	rec, err := ParseRecord(raw)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("value", raw).Msg("removing unreadable autostart entry")
		if err := r.autorun.Delete(name); err != nil {
			log.Warn().Err(err).Msg("failed to remove autostart entry")
			return OutcomeFailed
		}
		return OutcomeRemoved

	case rec.Legacy:
		log.Info().Str("path", rec.Path).Msg("migrating legacy autostart entry")
		return r.rewrite(log, OutcomeMigrated)

	case !r.opts.Exists(rec.Path) || !samePath(rec.Path, r.opts.Executable):
		log.Info().
			Str("recorded", rec.Path).
			Str("current", r.opts.Executable).
			Msg("autostart entry points elsewhere, archiving")
		r.archiveValue(log, raw)
		if err := r.autorun.Delete(name); err != nil {
			log.Warn().Err(err).Msg("failed to remove stale autostart entry")
			return OutcomeFailed
		}
		return OutcomeArchived

	case rec.Version != r.opts.Version:
		log.Info().
			Str("from", rec.Version).
			Str("to", r.opts.Version).
			Str("kind", drift(rec.Version, r.opts.Version)).
			Msg("refreshing autostart entry")
		return r.rewrite(log, OutcomeRefreshed)
	}

	log.Debug().Time("registered_at", rec.RegisteredAt).Msg("autostart entry valid")
	return OutcomeValid
}

func (r *Registrar) rewrite(log *zerolog.Logger, ok Outcome) Outcome {
	if err := r.Register(); err != nil {
		log.Warn().Err(err).Msg("failed to rewrite autostart entry")
		return OutcomeFailed
	}
	return ok
}

// archiveValue keeps the superseded value under <name>.<ticks>. A failed
// archive does not keep the stale entry alive.
func (r *Registrar) archiveValue(log *zerolog.Logger, raw string) {
	if r.archive == nil {
		return
	}
	key := r.opts.Name + "." + strconv.FormatInt(toTicks(r.opts.Now()), 10)
	if err := r.archive.Set(key, raw); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to archive autostart entry")
	}
}

// purgeDuplicates removes every autorun entry that shares the canonical
// name as a case-insensitive prefix without being the canonical key. On a
// case-sensitive store "playawake" and "PlayAwake" are two entries.
func (r *Registrar) purgeDuplicates(log *zerolog.Logger) {
	names, err := r.autorun.Names()
	if err != nil {
		log.Warn().Err(err).Msg("cannot list autostart entries")
		return
	}
	prefix := strings.ToLower(r.opts.Name)
	for _, n := range names {
		if r.isCanonical(n) || !strings.HasPrefix(strings.ToLower(n), prefix) {
			continue
		}
		if err := r.autorun.Delete(n); err != nil {
			log.Warn().Err(err).Str("name", n).Msg("failed to remove duplicate autostart entry")
			continue
		}
		log.Info().Str("name", n).Msg("removed duplicate autostart entry")
	}
}

func (r *Registrar) isCanonical(name string) bool {
	if r.autorun.FoldsCase() {
		return strings.EqualFold(name, r.opts.Name)
	}
	return name == r.opts.Name
}

func (r *Registrar) current() Record {
	return Record{Path: r.opts.Executable, Version: r.opts.Version, RegisteredAt: r.opts.Now()}
}

func samePath(a, b string) bool {
	return strings.EqualFold(filepath.Clean(a), filepath.Clean(b))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
