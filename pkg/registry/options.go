package registry

import (
	"errors"
	"log/slog"

	"github.com/joshuapare/regkit/pkg/regpath"
	"github.com/joshuapare/regkit/pkg/store"
	"github.com/joshuapare/regkit/pkg/types"
)

// DebugLevel controls what a Client does with a failure besides returning it.
type DebugLevel int

const (
	// DebugSilent returns failures without logging them.
	DebugSilent DebugLevel = iota
	// DebugLog also logs every failure through Options.Logger.
	DebugLog
	// DebugStrict logs and makes multi-key walks (Key.Populate, Key.Save,
	// Key.Load, Key.Delete, ListSubkeys) stop at the first failure instead
	// of skipping it.
	DebugStrict
)

func (d DebugLevel) String() string {
	switch d {
	case DebugSilent:
		return "silent"
	case DebugLog:
		return "log"
	case DebugStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParseDebugLevel accepts a level name or its number.
func ParseDebugLevel(s string) (DebugLevel, error) {
	switch s {
	case "", "0", "silent":
		return DebugSilent, nil
	case "1", "log":
		return DebugLog, nil
	case "2", "strict":
		return DebugStrict, nil
	}
	return DebugSilent, types.Errorf(types.ErrKindUnsupported, nil, "unknown debug level %q", s)
}

// Options configures a Client.
type Options struct {
	// Logger receives failure diagnostics at DebugLog and above.
	// Default: a logger that discards everything.
	Logger *slog.Logger

	// Debug selects the failure policy.
	// Default: DebugSilent
	Debug DebugLevel

	// NameForm selects how returned paths spell the hive.
	// Default: types.ShortNames ("HKCU:Software")
	NameForm types.NameForm
}

// DefaultOptions returns the options used when New is given nil.
func DefaultOptions() *Options {
	return &Options{
		Logger:   slog.New(slog.DiscardHandler),
		Debug:    DebugSilent,
		NameForm: types.ShortNames,
	}
}

// Client runs registry operations against a store. It carries the failure
// policy and output form, so there is no package-level state: two clients
// with different settings can share one store.
type Client struct {
	store store.Store
	log   *slog.Logger
	debug DebugLevel
	form  types.NameForm
}

// New creates a Client over s.
//
// Example:
//
//	c := registry.New(winstore.New(), &registry.Options{Debug: registry.DebugLog, Logger: slog.Default()})
//	paths, err := c.ListSubkeys(`HKCU:Software\Vendor`, registry.DepthUnbounded)
func New(s store.Store, opts *Options) *Client {
	// Apply defaults
	if opts == nil {
		opts = DefaultOptions()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{store: s, log: log, debug: opts.Debug, form: opts.NameForm}
}

// Store returns the underlying store.
func (c *Client) Store() store.Store { return c.store }

// Debug returns the failure policy.
func (c *Client) Debug() DebugLevel { return c.debug }

// NameForm returns the form used for returned paths.
func (c *Client) NameForm() types.NameForm { return c.form }

// strict reports whether walks must halt on the first failure.
func (c *Client) strict() bool { return c.debug >= DebugStrict }

// fail logs err according to the debug level and returns it unchanged.
func (c *Client) fail(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if c.debug >= DebugLog {
		c.log.Warn("registry operation failed", "op", op, "path", path, "err", err)
	}
	return err
}

// resolve parses an absolute path into the client's name form.
func (c *Client) resolve(path string) (regpath.Canonical, error) {
	return regpath.SplitAbsPath(path, c.form)
}

// wrap attaches op and path to a store error, keeping its kind.
func wrap(err error, op string, at regpath.Canonical) error {
	if err == nil {
		return nil
	}
	kind, ok := types.KindOf(err)
	if !ok {
		kind = types.ErrKindAccess
	}
	return types.Errorf(kind, err, "%s %s", op, at.Abs)
}

// isNotFound reports whether err means the key or value is absent.
func isNotFound(err error) bool {
	return errors.Is(err, types.ErrNotFound)
}
