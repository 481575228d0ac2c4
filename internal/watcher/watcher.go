// Package watcher announces new post files once their writes have settled.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	command "github.com/goliatone/go-command"

	notifycmd "github.com/darshanbajgain/darshan-blog-temp/internal/commands/notify"
	"github.com/darshanbajgain/darshan-blog-temp/internal/logging"
	"github.com/darshanbajgain/darshan-blog-temp/internal/posts"
	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
)

// Defaults for Config.
const (
	DefaultStabilityThreshold = 2 * time.Second
	DefaultPollInterval       = 100 * time.Millisecond
)

// Notification outcomes passed to an Observer.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// ErrNoDirectory is returned when the watcher has no directory to observe.
var ErrNoDirectory = errors.New("watcher: directory is required")

// Config controls what is watched and how long writes must settle.
type Config struct {
	Dir                string
	Extension          string
	StabilityThreshold time.Duration
	PollInterval       time.Duration
	// ScanExisting treats files present at start as newly created.
	ScanExisting bool
}

// Observer receives the outcome of each announcement attempt.
type Observer interface {
	ObserveNotification(outcome string)
}

// Watcher observes a content directory and announces new posts through a
// notify command. Filenames already recorded in the processed store are
// never announced again.
type Watcher struct {
	cfg       Config
	store     interfaces.ProcessedStore
	commander command.Commander[notifycmd.NotifyPostCommand]
	logger    interfaces.Logger
	observer  Observer
	now       func() time.Time

	debouncer *Debouncer

	mu     sync.Mutex
	active map[string]struct{}
	wg     sync.WaitGroup
}

// Option customises a Watcher.
type Option func(*Watcher)

// WithLogger sets the watcher logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(w *Watcher) {
		w.logger = logging.OrNoOp(logger)
	}
}

// WithClock sets the time source driving the debouncer.
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) {
		if now != nil {
			w.now = now
		}
	}
}

// WithObserver registers an announcement observer such as the metrics collector.
func WithObserver(observer Observer) Option {
	return func(w *Watcher) {
		w.observer = observer
	}
}

// New constructs a Watcher for cfg.
func New(cfg Config, store interfaces.ProcessedStore, commander command.Commander[notifycmd.NotifyPostCommand], opts ...Option) (*Watcher, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, ErrNoDirectory
	}
	if store == nil {
		return nil, errors.New("watcher: processed store is required")
	}
	if commander == nil {
		return nil, errors.New("watcher: notify command is required")
	}
	if cfg.Extension == "" {
		cfg.Extension = posts.DefaultExtension
	}
	if cfg.StabilityThreshold <= 0 {
		cfg.StabilityThreshold = DefaultStabilityThreshold
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	w := &Watcher{
		cfg:       cfg,
		store:     store,
		commander: commander,
		logger:    logging.NoOp(),
		now:       time.Now,
		debouncer: NewDebouncer(cfg.StabilityThreshold),
		active:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run watches the directory until ctx is cancelled. In-flight announcements
// are awaited before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: create: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("watcher: watch %s: %w", w.cfg.Dir, err)
	}
	w.logger.Info("watcher.started", "dir", w.cfg.Dir, "stability", w.cfg.StabilityThreshold)

	if w.cfg.ScanExisting {
		w.scanExisting(ctx)
	}

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			w.logger.Info("watcher.stopped", "dir", w.cfg.Dir)
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				w.wg.Wait()
				return nil
			}
			w.HandleEvent(ctx, event)
		case err, ok := <-fw.Errors:
			if !ok {
				w.wg.Wait()
				return nil
			}
			w.logger.Error("watcher.error", "error", err)
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// HandleEvent applies a filesystem event to the debounce state.
func (w *Watcher) HandleEvent(ctx context.Context, event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Create):
		w.Detect(ctx, event.Name)
	case event.Has(fsnotify.Write):
		w.debouncer.Touch(filepath.Base(event.Name), w.now())
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.debouncer.Cancel(filepath.Base(event.Name))
	}
}

// Detect starts settling path when it is a new, unannounced post file.
func (w *Watcher) Detect(ctx context.Context, path string) {
	name := filepath.Base(path)
	if !w.matches(name) {
		return
	}
	if w.isActive(name) {
		return
	}

	logger := logging.WithPostContext(w.logger, "", name)
	seen, err := w.store.Has(ctx, name)
	if err != nil {
		logger.Error("watcher.store.failed", "error", err)
		return
	}
	if seen {
		logger.Debug("watcher.file.already_processed")
		return
	}

	signature, err := w.signature(name)
	if err != nil {
		logger.Debug("watcher.file.unavailable", "error", err)
		return
	}
	if w.debouncer.Begin(name, signature, w.now()) {
		logger.Info("watcher.file.detected")
	}
}

// Tick polls settling files and announces those whose writes have settled.
func (w *Watcher) Tick(ctx context.Context) {
	now := w.now()
	for _, name := range w.debouncer.Pending() {
		signature, err := w.signature(name)
		if err != nil {
			w.debouncer.Cancel(name)
			logging.WithPostContext(w.logger, "", name).Debug("watcher.file.vanished", "error", err)
			continue
		}
		w.debouncer.Observe(name, signature, now)
	}

	for _, name := range w.debouncer.Ready(now) {
		w.markActive(name)
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer w.clearActive(name)
			w.announce(ctx, name)
		}()
	}
}

// Wait blocks until every announcement started by Tick has finished.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

// State reports the debounce state of filename.
func (w *Watcher) State(filename string) State {
	return w.debouncer.State(filename)
}

func (w *Watcher) announce(ctx context.Context, name string) {
	slug, _ := posts.SlugFromFilename(name, w.cfg.Extension)
	logger := logging.WithPostContext(w.logger, slug, name)

	msg, err := w.buildCommand(name, slug)
	if err != nil {
		logger.Error("watcher.notify.failed", "error", err)
		w.observe(OutcomeFailed)
		return
	}

	if err := w.commander.Execute(ctx, msg); err != nil {
		if notifycmd.IsAlreadyProcessed(err) {
			logger.Debug("watcher.file.already_processed")
			w.observe(OutcomeSkipped)
			return
		}
		logger.Error("watcher.notify.failed", "error", err)
		w.observe(OutcomeFailed)
		return
	}
	logger.Info("watcher.notify.success")
	w.observe(OutcomeSent)
}

func (w *Watcher) buildCommand(name, slug string) (notifycmd.NotifyPostCommand, error) {
	data, err := os.ReadFile(filepath.Join(w.cfg.Dir, name))
	if err != nil {
		return notifycmd.NotifyPostCommand{}, fmt.Errorf("read %s: %w", name, err)
	}
	return notifycmd.CommandFromSource(name, slug, data)
}

func (w *Watcher) scanExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		w.logger.Error("watcher.scan.failed", "error", err)
		return
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			w.Detect(ctx, entry.Name())
		}
	}
}

func (w *Watcher) matches(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	_, ok := posts.SlugFromFilename(name, w.cfg.Extension)
	return ok
}

func (w *Watcher) signature(name string) (Signature, error) {
	info, err := os.Stat(filepath.Join(w.cfg.Dir, name))
	if err != nil {
		return Signature{}, err
	}
	if !info.Mode().IsRegular() {
		return Signature{}, fmt.Errorf("%s is not a regular file", name)
	}
	return Signature{Size: info.Size(), ModTime: info.ModTime()}, nil
}

func (w *Watcher) isActive(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.active[name]
	return ok
}

func (w *Watcher) markActive(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active[name] = struct{}{}
}

func (w *Watcher) clearActive(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.active, name)
}

func (w *Watcher) observe(outcome string) {
	if w.observer != nil {
		w.observer.ObserveNotification(outcome)
	}
}
