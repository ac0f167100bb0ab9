package runs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"blast/pkg/loadgen"
	"blast/pkg/sysmon"
)

// Manager status values.
const (
	StatusIdle    = "idle"
	StatusRunning = "running"
)

const defaultSampleInterval = time.Second

// ErrRunActive is returned by Start while another run is executing.
var ErrRunActive = errors.New("a run is already active")

// Manager executes at most one load run at a time, samples the host's
// resources alongside it, and persists the resulting Record.
type Manager struct {
	storage        *FileStorage
	logger         zerolog.Logger
	sampleInterval time.Duration

	mu     sync.Mutex
	active string
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a manager persisting records to the given storage.
func NewManager(storage *FileStorage, logger zerolog.Logger) *Manager {
	return &Manager{
		storage:        storage,
		logger:         logger,
		sampleInterval: defaultSampleInterval,
	}
}

// Start validates the configuration and begins executing the run
// asynchronously. It fails fast on an invalid configuration, a duplicate
// run id, or an already active run; no request is issued in any of those
// cases.
func (m *Manager) Start(id string, cfg loadgen.Config) error {
	if id == "" {
		return fmt.Errorf("run id must not be empty")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != "" {
		return ErrRunActive
	}
	if m.storage.Exists(id) {
		return fmt.Errorf("run %q already exists", id)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.active = id
	m.cancel = cancel
	m.done = make(chan struct{})

	go m.execute(ctx, id, cfg, m.done)
	return nil
}

func (m *Manager) execute(ctx context.Context, id string, cfg loadgen.Config, done chan struct{}) {
	defer close(done)

	sampleCtx, stopSampling := context.WithCancel(context.Background())
	samplesCh := make(chan []sysmon.Sample, 1)
	go func() {
		sampler := sysmon.NewSampler(m.sampleInterval, m.logger)
		samplesCh <- sampler.Run(sampleCtx)
	}()

	start := time.Now()
	summary, err := loadgen.Run(ctx, cfg, m.logger)
	end := time.Now()

	stopSampling()

	rec := &Record{
		ID:              id,
		Config:          cfg,
		StartTime:       start,
		EndTime:         end,
		DurationSeconds: end.Sub(start).Seconds(),
		Summary:         summary,
		Samples:         <-samplesCh,
	}
	if err != nil {
		rec.Error = err.Error()
		m.logger.Error().Err(err).Str("run_id", id).Msg("run failed")
	}

	if err := m.storage.Save(rec); err != nil {
		m.logger.Error().Err(err).Str("run_id", id).Msg("failed to save run record")
	}

	m.mu.Lock()
	m.active = ""
	m.cancel = nil
	m.mu.Unlock()
}

// Stop cancels the active run. The run still joins its workers, aggregates
// whatever completed, and persists its record before the manager goes idle.
func (m *Manager) Stop() error {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	if cancel == nil {
		return fmt.Errorf("no active run")
	}
	cancel()
	<-done
	return nil
}

// Status reports whether a run is executing.
func (m *Manager) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == "" {
		return StatusIdle
	}
	return StatusRunning
}

// ActiveRunID returns the id of the executing run, or "" when idle.
func (m *Manager) ActiveRunID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Get loads a stored run record.
func (m *Manager) Get(id string) (*Record, error) {
	return m.storage.Load(id)
}

// List returns metadata for every stored run.
func (m *Manager) List() ([]RunInfo, error) {
	return m.storage.List()
}
