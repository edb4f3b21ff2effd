package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"spritegen/internal/artifact"
	"spritegen/internal/classify"
	"spritegen/internal/config"
	"spritegen/internal/fileutil"
	"spritegen/internal/logging"
	"spritegen/internal/packing"
	"spritegen/internal/services"
)

// ErrRunInProgress is returned when another run holds the output lock.
var ErrRunInProgress = errors.New("another spritegen run is writing the same target folders")

// Coordinator runs sprite groups concurrently and emits their artifacts.
type Coordinator struct {
	cfg      *config.Config
	logger   *slog.Logger
	fs       fileutil.FS
	raster   packing.Packer
	vector   packing.Packer
	cache    packing.Store
	lockPath string
	writer   *artifact.Writer
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFS replaces the host filesystem.
func WithFS(fsys fileutil.FS) Option {
	return func(c *Coordinator) {
		if fsys != nil {
			c.fs = fsys
		}
	}
}

// WithPackers replaces the raster and vector packers. A nil packer keeps the
// built-in one.
func WithPackers(raster, vector packing.Packer) Option {
	return func(c *Coordinator) {
		c.raster = raster
		c.vector = vector
	}
}

// WithCache consults store before packing each group.
func WithCache(store packing.Store) Option {
	return func(c *Coordinator) {
		c.cache = store
	}
}

// WithLockPath overrides the run lock location. An empty path disables
// locking.
func WithLockPath(path string) Option {
	return func(c *Coordinator) {
		c.lockPath = path
	}
}

// New constructs a Coordinator for cfg.
func New(cfg *config.Config, opts ...Option) *Coordinator {
	c := &Coordinator{
		cfg:      cfg,
		logger:   logging.NewNop(),
		fs:       fileutil.OS{},
		lockPath: cfg.LockPath(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "batch")

	if c.raster == nil {
		c.raster = packing.NewRasterPacker(c.fs, nil)
	}
	if c.vector == nil {
		c.vector = packing.NewVectorPacker(c.fs, nil)
	}
	if c.cache != nil {
		c.raster = packing.NewCachingPacker(c.raster, classify.Raster.String(), c.fs, c.cache, c.logger)
		c.vector = packing.NewCachingPacker(c.vector, classify.Vector.String(), c.fs, c.cache, c.logger)
	}
	c.writer = artifact.NewWriter(c.fs, cfg)
	return c
}

type settlement struct {
	index int
	sheet *packing.Sheet
	err   error
}

// Run performs one generation pass. Group failures are reported, not
// returned.
func (c *Coordinator) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, c.logger)
	started := time.Now()

	unlock, err := c.acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := c.cleanTargets(logger); err != nil {
		return nil, err
	}

	logger.Info("sprite run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Int("groups", len(c.cfg.Sprites)),
	)

	report := &Report{RunID: runID, Groups: make([]GroupReport, len(c.cfg.Sprites))}
	settlements := make(chan settlement, len(c.cfg.Sprites))
	pending := 0

	for i, sprite := range c.cfg.Sprites {
		group := &report.Groups[i]
		group.Index = i
		group.Name = sprite.Name

		decision := classify.Classify(c.fs, sprite)
		group.Kind = decision.Kind.String()

		switch decision.Kind {
		case classify.Skip:
			group.Status = StatusSkipped
			logger.Debug("sprite group has no matching files",
				logging.String(logging.FieldGroup, sprite.Name),
				logging.String("source_folder", sprite.SourceFolder),
			)
		case classify.Invalid:
			pending++
			settlements <- settlement{index: i, err: decision.Err}
		default:
			pending++
			go c.pack(ctx, i, sprite, decision, settlements)
		}
	}

	registry := NewSizeRegistry()
	for settled := 0; settled < pending; {
		select {
		case <-ctx.Done():
			logging.WarnWithContext(logger, "sprite run cancelled", "run_cancelled",
				logging.Alert("incomplete_output"),
				logging.Int("settled", settled),
				logging.Int("pending", pending),
				logging.String(logging.FieldErrorHint, "rerun generate; target folders are incomplete"),
				logging.String(logging.FieldImpact, "shared sizes stylesheet not written"),
			)
			return nil, ctx.Err()
		case s := <-settlements:
			settled++
			c.settle(ctx, s, report, registry)
		}
	}

	if pending > 0 {
		c.finalize(logger, report, registry)
	}

	logger.Info("sprite run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("generated", report.Count(StatusGenerated)),
		logging.Int("failed", report.Count(StatusFailed)),
		logging.Int("skipped", report.Count(StatusSkipped)),
		logging.Duration("duration", time.Since(started)),
	)
	return report, nil
}

func (c *Coordinator) acquireLock() (func(), error) {
	if c.lockPath == "" {
		return func() {}, nil
	}
	if err := c.fs.MkdirAll(filepath.Dir(c.lockPath)); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(c.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			c.logger.Warn("failed to release run lock", logging.String("lock", c.lockPath), logging.Error(err))
		}
	}, nil
}

func (c *Coordinator) cleanTargets(logger *slog.Logger) error {
	seen := make(map[string]struct{}, 3)
	for _, dir := range c.cfg.TargetFolder.All() {
		if _, dup := seen[dir]; dup {
			continue
		}
		seen[dir] = struct{}{}
		if err := c.fs.RemoveAll(dir); err != nil {
			return fmt.Errorf("clean target folder: %w", err)
		}
		logger.Debug("target folder cleaned", logging.String("path", dir))
	}
	return nil
}

func (c *Coordinator) pack(ctx context.Context, index int, sprite config.Sprite, decision classify.Decision, out chan<- settlement) {
	result := settlement{index: index}
	defer func() {
		if r := recover(); r != nil {
			result.sheet = nil
			result.err = services.Wrap(services.ErrPacking, sprite.Name, "pack", fmt.Sprintf("packer panicked: %v", r), nil)
		}
		out <- result
	}()

	packer := c.raster
	if decision.Kind == classify.Vector {
		packer = c.vector
	}
	groupCtx := services.WithGroup(ctx, sprite.Name)
	sheet, err := packer.Pack(groupCtx, decision.Files, sprite.EffectivePadding(c.cfg.Padding))
	switch {
	case err == nil && sheet == nil:
		result.err = services.Wrap(services.ErrPacking, sprite.Name, "pack", "packer returned no sheet", nil)
	case err == nil:
		result.sheet = sheet
	case errors.Is(err, services.ErrPacking):
		result.err = fmt.Errorf("%s: %w", sprite.Name, err)
	default:
		result.err = services.Wrap(services.ErrPacking, sprite.Name, "pack", "", err)
	}
}

func (c *Coordinator) settle(ctx context.Context, s settlement, report *Report, registry *SizeRegistry) {
	sprite := c.cfg.Sprites[s.index]
	group := &report.Groups[s.index]
	logger := logging.WithContext(services.WithGroup(ctx, sprite.Name), c.logger)

	if s.err != nil {
		c.fail(logger, group, s.err)
		return
	}
	if err := validate(sprite.Name, s.sheet.Icons); err != nil {
		c.fail(logger, group, err)
		return
	}

	for _, icon := range s.sheet.Icons {
		registry.Add(icon.Width)
	}

	err := c.writer.WriteGroup(artifact.Group{
		Index:     s.index,
		Name:      sprite.Name,
		Extension: s.sheet.Extension,
		Icons:     s.sheet.Icons,
		Image:     s.sheet.Image,
	})
	if err != nil {
		c.fail(logger, group, err)
		return
	}

	group.Status = StatusGenerated
	group.Icons = len(s.sheet.Icons)
	group.Cached = s.sheet.Cached
	logger.Info("sprite group generated",
		logging.String(logging.FieldEventType, "group_generated"),
		logging.Int("icons", group.Icons),
		logging.Bool("cached", group.Cached),
	)
}

func (c *Coordinator) fail(logger *slog.Logger, group *GroupReport, err error) {
	group.Status = StatusFailed
	group.Err = err
	logging.ErrorWithContext(logger, "sprite group failed", "group_failed",
		logging.String("error_kind", services.Kind(err)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, services.Hint(err)),
	)
}

func (c *Coordinator) finalize(logger *slog.Logger, report *Report, registry *SizeRegistry) {
	if registry.Len() == 0 {
		logger.Debug("no validated icons; sizes stylesheet skipped")
		return
	}
	sizes := registry.Sorted()
	if err := c.writer.WriteSizes(sizes); err != nil {
		report.SizesErr = err
		logging.ErrorWithContext(logger, "sizes stylesheet failed", "sizes_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
		)
		return
	}
	report.Sizes = sizes
	logger.Debug("sizes stylesheet written", logging.Any("sizes", sizes))
}

// validate requires every icon to be square with a positive size. All
// offending icons are reported in one error.
func validate(group string, icons []packing.Placement) error {
	var problems []string
	for _, icon := range icons {
		if icon.Width != icon.Height || icon.Width <= 0 {
			problems = append(problems, fmt.Sprintf("%s is %dx%d", icon.Name, icon.Width, icon.Height))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return services.Wrap(services.ErrValidation, group, "validate",
		"icons must be square: "+strings.Join(problems, "; "), nil)
}
