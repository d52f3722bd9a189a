// Package uuidfreeze puts UUID generation under test control.
//
// Call sites obtain UUIDs through a Control (or the package-level proxies)
// instead of calling the constructors in github.com/google/uuid directly.
// Outside a test nothing changes: every call reaches the real constructor.
// Inside a test, a Mocker bound to a channel substitutes deterministic
// values, records every call with its caller, and restores the previous
// behavior when released.
//
// Seven channels exist, one per UUID version: uuid1, uuid3, uuid4, uuid5,
// uuid6, uuid7 and uuid8. The namespace channels uuid3 and uuid5 are
// deterministic by construction, so they are observed but never
// substituted.
package uuidfreeze

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/uuidfreeze/uuidfreeze/internal/config"
	"github.com/uuidfreeze/uuidfreeze/internal/generate"
	"github.com/uuidfreeze/uuidfreeze/internal/journal"
	"github.com/uuidfreeze/uuidfreeze/internal/origin"
	"github.com/uuidfreeze/uuidfreeze/internal/registry"
)

// Control owns the channel registry for one test process. Controls are
// independent: parallel test processes each build their own and never
// coordinate.
type Control struct {
	reg         *registry.Registry
	jrnl        *journal.Journal
	ownsJournal bool
	logger      *slog.Logger
	policy      generate.Policy
}

type controlOptions struct {
	cfg        config.Config
	cfgLoaded  bool
	cfgFile    string
	ignore     []string
	hasIgnore  bool
	policy     generate.Policy
	hasPolicy  bool
	journal    *journal.Journal
	journalMem bool
	journalPth string
	logger     *slog.Logger
	capture    origin.CaptureFunc
}

// Option configures a Control.
type Option func(*controlOptions)

// WithConfig applies an already-loaded configuration.
func WithConfig(cfg config.Config) Option {
	return func(o *controlOptions) {
		o.cfg = cfg
		o.cfgLoaded = true
	}
}

// WithConfigFile loads configuration from an explicit path instead of the
// default .uuidfreeze.yaml lookup.
func WithConfigFile(path string) Option {
	return func(o *controlOptions) { o.cfgFile = path }
}

// WithIgnoreDefaults sets the session ignore prefixes, overriding any
// configured ones.
func WithIgnoreDefaults(prefixes ...string) Option {
	return func(o *controlOptions) {
		o.ignore = prefixes
		o.hasIgnore = true
	}
}

// WithExhaustionPolicy sets the default policy applied when a Mocker binds
// a value sequence, overriding any configured one.
func WithExhaustionPolicy(p Policy) Option {
	return func(o *controlOptions) {
		o.policy = p
		o.hasPolicy = true
	}
}

// WithJournal enables an in-memory call journal for this Control.
func WithJournal() Option {
	return func(o *controlOptions) { o.journalMem = true }
}

// WithJournalFile enables a file-backed call journal at path.
func WithJournalFile(path string) Option {
	return func(o *controlOptions) { o.journalPth = path }
}

// WithExistingJournal mirrors calls into a journal the caller owns and
// closes.
func WithExistingJournal(j *journal.Journal) Option {
	return func(o *controlOptions) { o.journal = j }
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(o *controlOptions) { o.logger = l }
}

// WithOriginCapture replaces the caller-chain capture function. Tests of
// the ignore machinery inject fabricated chains through this.
func WithOriginCapture(fn origin.CaptureFunc) Option {
	return func(o *controlOptions) { o.capture = fn }
}

// NewControl builds a Control. Without WithConfig or WithConfigFile, a
// .uuidfreeze.yaml in the working directory is honored when present.
func NewControl(opts ...Option) (*Control, error) {
	var o controlOptions
	for _, opt := range opts {
		opt(&o)
	}

	if !o.cfgLoaded {
		path := o.cfgFile
		var err error
		if path == "" {
			o.cfg, err = config.LoadIfPresent(config.DefaultFilename)
		} else {
			o.cfg, err = config.Load(path)
		}
		if err != nil {
			return nil, err
		}
	}

	c := &Control{policy: generate.PolicyCycle}

	if !o.hasPolicy {
		p, err := o.cfg.Policy()
		if err != nil {
			return nil, err
		}
		c.policy = p
	} else {
		if !o.policy.Valid() {
			return nil, fmt.Errorf("unknown exhaustion policy %q", o.policy)
		}
		c.policy = o.policy
	}

	ignorePrefixes := o.cfg.IgnorePrefixes()
	if o.hasIgnore {
		ignorePrefixes = o.ignore
	}

	c.logger = o.logger
	if c.logger == nil {
		c.logger = slog.Default()
	}

	switch {
	case o.journal != nil:
		c.jrnl = o.journal
	case o.journalPth != "":
		j, err := journal.Open(o.journalPth, journal.WithLogger(c.logger))
		if err != nil {
			return nil, err
		}
		c.jrnl = j
		c.ownsJournal = true
	case o.journalMem || o.cfg.Journal == ":memory:":
		j, err := journal.OpenMemory(journal.WithLogger(c.logger))
		if err != nil {
			return nil, err
		}
		c.jrnl = j
		c.ownsJournal = true
	case o.cfg.Journal != "":
		j, err := journal.Open(o.cfg.Journal, journal.WithLogger(c.logger))
		if err != nil {
			return nil, err
		}
		c.jrnl = j
		c.ownsJournal = true
	}

	regOpts := []registry.Option{
		registry.WithLogger(c.logger),
		registry.WithIgnoreDefaults(ignorePrefixes...),
	}
	if o.capture != nil {
		regOpts = append(regOpts, registry.WithCapture(o.capture))
	}
	if c.jrnl != nil {
		regOpts = append(regOpts, registry.WithRecorder(c.jrnl))
	}
	c.reg = registry.New(regOpts...)

	return c, nil
}

// Close releases resources the Control owns. Journals supplied through
// WithExistingJournal stay open.
func (c *Control) Close() error {
	if c.ownsJournal && c.jrnl != nil {
		return c.jrnl.Close()
	}
	return nil
}

// Journal returns the call journal, or nil when journaling is off.
func (c *Control) Journal() *journal.Journal {
	return c.jrnl
}

// IgnoreDefaults returns the session ignore prefixes.
func (c *Control) IgnoreDefaults() []string {
	return c.reg.IgnoreDefaults()
}

// SetIgnoreDefaults replaces the session ignore prefixes. Takes effect on
// the next constructor call; scopes that disabled defaults stay unaffected.
func (c *Control) SetIgnoreDefaults(prefixes []string) {
	c.reg.SetIgnoreDefaults(prefixes)
}

// UUID1 proxies uuid.NewUUID through the uuid1 channel.
func (c *Control) UUID1() (uuid.UUID, error) {
	return c.reg.Intercept(registry.ChannelUUID1, 1)
}

// UUID3 proxies uuid.NewMD5 through the uuid3 channel. The result is always
// the real deterministic value; an enabled spy records the call.
func (c *Control) UUID3(ns uuid.UUID, name string) (uuid.UUID, error) {
	return c.reg.InterceptNamespace(registry.ChannelUUID3, ns, name, 1)
}

// UUID4 proxies uuid.NewRandom through the uuid4 channel.
func (c *Control) UUID4() (uuid.UUID, error) {
	return c.reg.Intercept(registry.ChannelUUID4, 1)
}

// UUID5 proxies uuid.NewSHA1 through the uuid5 channel.
func (c *Control) UUID5(ns uuid.UUID, name string) (uuid.UUID, error) {
	return c.reg.InterceptNamespace(registry.ChannelUUID5, ns, name, 1)
}

// UUID6 proxies uuid.NewV6 through the uuid6 channel.
func (c *Control) UUID6() (uuid.UUID, error) {
	return c.reg.Intercept(registry.ChannelUUID6, 1)
}

// UUID7 proxies uuid.NewV7 through the uuid7 channel.
func (c *Control) UUID7() (uuid.UUID, error) {
	return c.reg.Intercept(registry.ChannelUUID7, 1)
}

// UUID8 proxies a crypto/rand v8 constructor through the uuid8 channel.
func (c *Control) UUID8() (uuid.UUID, error) {
	return c.reg.Intercept(registry.ChannelUUID8, 1)
}

// Reset clears a channel completely: every binding is dropped, generator
// state rewound, call logs cleared. Subsequent calls reach the real
// constructor. Mockers holding released bindings must not be reused.
func (c *Control) Reset(ch Channel) error {
	return c.reg.Reset(ch)
}

// ResetAll clears every channel.
func (c *Control) ResetAll() {
	c.reg.ResetAll()
}

// Mock returns an unbound Mocker for a substitutable channel. Nothing is
// intercepted until a Set* method or Spy binds it. Namespace channels take
// a NamespaceSpy instead.
func (c *Control) Mock(ch Channel) (*Mocker, error) {
	if !ch.Valid() {
		return nil, fmt.Errorf("unknown channel %q", ch)
	}
	if ch.Namespace() {
		return nil, fmt.Errorf("channel %s is observe-only: use NamespaceSpy", ch)
	}
	return &Mocker{ctl: c, ch: ch, policy: c.policy}, nil
}
