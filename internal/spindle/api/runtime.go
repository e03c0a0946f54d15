// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package api implements the spindle runtime: thread lifecycle, mutexes,
// condition variables and the monotonic timer, over one native backend.
//
// A Runtime moves between two states:
//
//	UNINITIALIZED --Init--> INITIALIZED --Terminate--> UNINITIALIZED
//
// While uninitialized, thread and timer operations return neutral values
// (InvalidThread, 0, true for waits) together with ErrNotInitialized.
// Mutexes and condition variables do not depend on the state.
//
// Independent Runtime values share nothing but the backend's platform
// primitives, so tests may create as many as they need.
package api

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kolkov/spindle/internal/log"
	"github.com/kolkov/spindle/internal/spindle/config"
	"github.com/kolkov/spindle/internal/spindle/journal"
	"github.com/kolkov/spindle/internal/spindle/native"
	"github.com/kolkov/spindle/internal/spindle/registry"
	"github.com/kolkov/spindle/internal/spindle/timer"
)

// Runtime is one instance of the threading runtime.
type Runtime struct {
	cfg      config.Config
	backend  native.Backend
	logger   *log.Logger
	observer journal.Observer
	journal  *journal.SQLiteJournal // opened from cfg.Journal, owned

	// lifecycle serializes Init and Terminate.
	lifecycle sync.Mutex

	// state is nil while uninitialized.
	state atomic.Pointer[state]
}

// state exists from Init until Terminate.
type state struct {
	session    string
	mainNative native.NativeID
	reg        *registry.Registry
	timer      *timer.Timer
	logger     *log.Logger
}

// Option customizes a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime's logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver adds a lifecycle observer.
func WithObserver(o journal.Observer) Option {
	return func(r *Runtime) {
		r.observer = journal.NewComposite(r.observer, o)
	}
}

// WithBackend replaces the platform backend.
func WithBackend(b native.Backend) Option {
	return func(r *Runtime) {
		if b != nil {
			r.backend = b
		}
	}
}

// New creates an uninitialized runtime. When cfg.Journal names a database,
// lifecycle events are recorded there until Close.
func New(cfg config.Config, opts ...Option) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runtime{
		cfg:      cfg,
		logger:   log.NewNop(),
		observer: journal.NoopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.backend == nil {
		r.backend = native.New(native.Options{MaxThreads: cfg.MaxThreads})
	}

	if cfg.Journal != "" {
		j, err := journal.OpenSQLite(cfg.Journal)
		if err != nil {
			return nil, err
		}
		r.journal = j
		r.observer = journal.NewComposite(r.observer, j)
	}
	r.observer = journal.NewComposite(journal.NewLogging(r.logger), r.observer)

	return r, nil
}

// Close terminates the runtime if needed and releases the journal.
func (r *Runtime) Close() error {
	r.forceTerminate()
	if r.journal != nil {
		if err := r.journal.Close(); err != nil {
			return fmt.Errorf("api: close journal: %w", err)
		}
	}
	return nil
}

// Backend returns the native backend in use.
func (r *Runtime) Backend() native.Backend {
	return r.backend
}

// Config returns the configuration the runtime was created with.
func (r *Runtime) Config() config.Config {
	return r.cfg
}

// Journal returns the SQLite journal opened from the configuration, or nil.
func (r *Runtime) Journal() *journal.SQLiteJournal {
	return r.journal
}

// Init initializes the runtime and binds the calling goroutine as the main
// thread, ID 0. It is idempotent: an initialized runtime is left untouched.
func (r *Runtime) Init() error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	if r.state.Load() != nil {
		return nil
	}

	lock := r.backend.NewLock()
	if lock == nil {
		return fmt.Errorf("api: init: backend %s returned no lock", r.backend.Name())
	}

	self := r.backend.Self()
	session := uuid.NewString()
	st := &state{
		session:    session,
		mainNative: self,
		reg:        registry.New(lock, self, r.backend.OSThreadID()),
		timer:      timer.New(r.backend),
		logger:     r.logger.WithSession(session),
	}
	r.state.Store(st)
	registerExitHook(r)

	st.logger.Debug("init",
		log.Backend(r.backend.Name()),
		log.Native(uint64(self)),
	)
	r.observer.OnInit(session, r.backend.Name())
	return nil
}

// Initialized reports whether the runtime is initialized.
func (r *Runtime) Initialized() bool {
	return r.state.Load() != nil
}

// Session returns the identifier of the current initialization, or "" when
// uninitialized. Every Init draws a new one.
func (r *Runtime) Session() string {
	if st := r.state.Load(); st != nil {
		return st.session
	}
	return ""
}

// Terminate destroys every thread still registered and returns the runtime
// to the uninitialized state. Live threads at this point are an error in the
// caller; each is destroyed as by Unsafe().DestroyThread and logged.
//
// Terminate must be called from the thread that called Init. From any other
// thread it returns ErrNotMainThread and changes nothing.
func (r *Runtime) Terminate() error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	st := r.state.Load()
	if st == nil {
		return ErrNotInitialized
	}
	if r.backend.Self() != st.mainNative {
		st.logger.Warn("terminate refused off the main thread", log.Native(uint64(r.backend.Self())))
		return ErrNotMainThread
	}
	r.teardown(st)
	return nil
}

// forceTerminate tears the runtime down from any thread.
func (r *Runtime) forceTerminate() {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	if st := r.state.Load(); st != nil {
		r.teardown(st)
	}
}

// teardown is called with r.lifecycle held.
func (r *Runtime) teardown(st *state) {
	killer, canKill := native.KillerOf(r.backend)

	st.reg.Lock()
	leftover := st.reg.Threads()
	for _, rec := range leftover {
		if canKill {
			_ = killer.Kill(rec.Thread)
		}
		st.reg.Destroy(rec)
	}
	st.reg.Unlock()

	r.state.Store(nil)
	unregisterExitHook(r)

	for _, rec := range leftover {
		st.logger.Error("thread still running at terminate; destroyed",
			log.Thread(rec.ID),
			log.Native(uint64(rec.NativeID)),
		)
		r.observer.OnThreadDestroyed(st.session, rec.ID)
	}
	st.logger.Debug("terminate")
	r.observer.OnTerminate(st.session, len(leftover))
}

// Info describes a runtime and its backend.
type Info struct {
	Backend     string
	NativeCond  bool
	EmulateCond bool
	CPUCores    int
	Resolution  float64
	Initialized bool
	Session     string
	LiveThreads int // registered threads, main included; 0 when uninitialized
}

// Info returns a snapshot of the runtime's state.
func (r *Runtime) Info() Info {
	nativeCond := native.HasNativeCond(r.backend)
	info := Info{
		Backend:     r.backend.Name(),
		NativeCond:  nativeCond,
		EmulateCond: r.cfg.EmulateCond || !nativeCond,
		CPUCores:    r.CPUCoreCount(),
		Resolution:  r.backend.Resolution(),
	}
	if st := r.state.Load(); st != nil {
		info.Initialized = true
		info.Session = st.session
		st.reg.Lock()
		info.LiveThreads = st.reg.Len()
		st.reg.Unlock()
	}
	return info
}

// CPUCoreCount returns the number of logical processors available, never
// less than 1. It does not require initialization.
func (r *Runtime) CPUCoreCount() int {
	return max(r.backend.CPUCount(), 1)
}
