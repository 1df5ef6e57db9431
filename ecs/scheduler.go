package ecs

import (
	"context"
	"reflect"
	"time"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Frames          uint64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func (s *systemStatsInternal) record(duration time.Duration) {
	s.executionCount++
	s.lastDuration = duration
	s.totalDuration += duration
	s.minDuration = min(s.minDuration, duration)
	s.maxDuration = max(s.maxDuration, duration)
}

type registeredSystem struct {
	system  System
	queries []queryExecutor
	stats   *systemStatsInternal
}

// Scheduler manages and executes systems in order.
//
// Startup systems run once, before the first frame, each followed by its own command
// flush. Frame systems run in registration order on every Once; their commands are
// flushed together at the end of the frame.
type Scheduler struct {
	storage       *Storage
	startup       []registeredSystem
	systems       []registeredSystem
	startupDone   bool
	frame         uint64
	exitRequested bool
}

// NewScheduler creates a new scheduler for the given storage.
func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{
		storage: storage,
		systems: make([]registeredSystem, 0),
	}
}

// Storage returns the storage the scheduler runs against.
func (s *Scheduler) Storage() *Storage {
	return s.storage
}

// RegisterStartup adds a system that runs once before the first frame.
func (s *Scheduler) RegisterStartup(system System) {
	s.startup = append(s.startup, s.bind(system))
}

// Register adds a system to the scheduler and initializes its Query and Singleton fields.
func (s *Scheduler) Register(system System) {
	s.systems = append(s.systems, s.bind(system))
}

func (s *Scheduler) bind(system System) registeredSystem {
	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}

	return registeredSystem{
		system:  system,
		queries: s.initializeFields(system),
		stats: &systemStatsInternal{
			name:        systemType.Name(),
			minDuration: time.Duration(1<<63 - 1),
		},
	}
}

// initializeFields binds exported Query and Singleton fields to the storage and
// returns the queries that need refreshing before each run.
func (s *Scheduler) initializeFields(system System) []queryExecutor {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}
	if systemValue.Kind() != reflect.Struct {
		return nil
	}

	var queries []queryExecutor
	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		binder, ok := field.Addr().Interface().(storageBinder)
		if !ok {
			continue
		}
		binder.Init(s.storage)

		if query, ok := binder.(queryExecutor); ok {
			queries = append(queries, query)
		}
	}
	return queries
}

func (s *Scheduler) run(entry registeredSystem, frame *UpdateFrame) {
	for _, query := range entry.queries {
		query.Execute()
	}

	start := time.Now()
	entry.system.Execute(frame)
	entry.stats.record(time.Since(start))
}

func (s *Scheduler) runStartup() {
	s.startupDone = true
	for _, entry := range s.startup {
		frame := newUpdateFrame(0, s.frame, s.storage, s)
		s.run(entry, frame)
		frame.Commands.Flush(s.storage)
	}
}

// Once executes all registered systems once with the given delta time.
// The first call also runs the startup systems.
func (s *Scheduler) Once(dt float64) {
	if !s.startupDone {
		s.runStartup()
	}

	frame := newUpdateFrame(dt, s.frame, s.storage, s)
	for _, entry := range s.systems {
		s.run(entry, frame)
	}
	frame.Commands.Flush(s.storage)
	s.frame++
}

// ExitRequested reports whether a system has called UpdateFrame.Exit.
func (s *Scheduler) ExitRequested() bool {
	return s.exitRequested
}

// Frame returns the number of completed frames.
func (s *Scheduler) Frame() uint64 {
	return s.frame
}

// Run executes frames until a system requests exit (returns nil) or the context is
// cancelled (returns ctx.Err()). An interval of zero runs frames back to back.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		lastTime := time.Now()
		for !s.exitRequested {
			if err := ctx.Err(); err != nil {
				return err
			}
			now := time.Now()
			s.Once(now.Sub(lastTime).Seconds())
			lastTime = now
		}
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()
	for !s.exitRequested {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
	return nil
}

// GetStats returns statistics about frame system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Frames:      s.frame,
		Systems:     make([]SystemStats, len(s.systems)),
	}

	for i, entry := range s.systems {
		internal := entry.stats
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		stats.TotalExecutions += internal.executionCount
	}

	return stats
}
