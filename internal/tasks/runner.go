package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lysyi3m/legistar-comb/internal/civic"
	"github.com/lysyi3m/legistar-comb/internal/jurisdiction"
	"github.com/lysyi3m/legistar-comb/internal/legistar"
)

const DefaultQueueSize = 100

var _ RunnerInterface = (*Runner)(nil)

// Runner executes queued tasks one at a time on a single worker. Failed
// tasks are logged and dropped. A zero timeout leaves tasks unbounded.
type Runner struct {
	timeout   time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
	stopOnce  sync.Once
}

func NewRunner(queueSize int, timeout time.Duration) *Runner {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if timeout < 0 {
		timeout = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		timeout:   timeout,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, queueSize),
	}
}

func (r *Runner) Start() {
	r.wg.Add(1)
	go r.worker()
}

// Stop cancels the running task and waits for the worker to exit. Queued
// tasks are discarded.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		r.cancel()
		r.wg.Wait()
	})
}

// Every calls fn each interval until the runner stops.
func (r *Runner) Every(interval time.Duration, fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

func (r *Runner) EnqueueTask(task TaskInterface) error {
	select {
	case <-r.ctx.Done():
		return r.ctx.Err()
	default:
	}

	select {
	case r.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (r *Runner) worker() {
	defer r.wg.Done()

	for {
		select {
		case task := <-r.taskQueue:
			RunTask(r.ctx, task, r.timeout)
		case <-r.ctx.Done():
			return
		}
	}
}

// RunTask executes task under timeout and logs its failure. A timeout of
// zero or less runs the task until ctx is done.
func RunTask(ctx context.Context, task TaskInterface, timeout time.Duration) error {
	task.Start()

	var (
		taskCtx context.Context
		cancel  context.CancelFunc
	)
	if timeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		taskCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Worker task execution failed", "type", string(task.GetType()), "id", task.GetID(),
			"jurisdiction", task.GetJurisdiction(), "duration", task.GetDuration(), "error", err)
		return err
	}
	return nil
}

// EnqueueJurisdictions enqueues every scrape of the enabled jurisdictions and
// returns the number of tasks accepted.
func EnqueueJurisdictions(r RunnerInterface, configs map[string]*jurisdiction.Config, client *legistar.Client, emitter civic.Emitter) int {
	names := make([]string, 0, len(configs))
	for name, jc := range configs {
		if !jc.Settings.Enabled {
			slog.Debug("Jurisdiction disabled, skipping", "jurisdiction", name)
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	enqueued := 0
	for _, name := range names {
		scrapeTasks, err := NewScrapeTasks(configs[name], KindAll, client, emitter)
		if err != nil {
			slog.Warn("Failed to build scrape tasks", "jurisdiction", name, "error", err)
			continue
		}
		for _, task := range scrapeTasks {
			if err := r.EnqueueTask(task); err != nil {
				slog.Warn("Failed to enqueue scrape task", "jurisdiction", name, "type", string(task.GetType()), "error", err)
				continue
			}
			enqueued++
		}
	}
	return enqueued
}

// Kinds accepted by NewScrapeTasks.
const (
	KindBills  = "bills"
	KindEvents = "events"
	KindAll    = "all"
)

// NewScrapeTasks builds the scrape tasks of kind for one jurisdiction. Kinds
// the jurisdiction does not scrape are left out.
func NewScrapeTasks(jc *jurisdiction.Config, kind string, client *legistar.Client, emitter civic.Emitter) ([]TaskInterface, error) {
	if jc.APIURL == "" {
		return nil, fmt.Errorf("jurisdiction %s has no API URL", jc.Name)
	}

	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		kind = KindAll
	}

	var tasks []TaskInterface
	switch kind {
	case KindBills:
		if jc.Settings.ScrapeBills {
			tasks = append(tasks, NewScrapeBillsTask(jc, client, emitter))
		}
	case KindEvents:
		if jc.Settings.ScrapeEvents {
			tasks = append(tasks, NewScrapeEventsTask(jc, client, emitter))
		}
	case KindAll:
		if jc.Settings.ScrapeBills {
			tasks = append(tasks, NewScrapeBillsTask(jc, client, emitter))
		}
		if jc.Settings.ScrapeEvents {
			tasks = append(tasks, NewScrapeEventsTask(jc, client, emitter))
		}
	default:
		return nil, fmt.Errorf("unknown scrape kind %q", kind)
	}

	return tasks, nil
}
