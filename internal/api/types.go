package api

import (
	"github.com/lysyi3m/legistar-comb/internal/database"
	"github.com/lysyi3m/legistar-comb/internal/jurisdiction"
	"github.com/lysyi3m/legistar-comb/internal/tasks"
)

// CounterInterface reports stored entity totals.
type CounterInterface interface {
	Counts(jurisdiction string) (database.Counts, error)
}

var _ CounterInterface = (*database.Store)(nil)

// TaskFactory builds the scrape tasks of kind for a jurisdiction.
type TaskFactory func(jc *jurisdiction.Config, kind string) ([]tasks.TaskInterface, error)

type Handler struct {
	configCache *jurisdiction.ConfigCache
	billRepo    database.BillRepositoryInterface
	voteRepo    database.VoteRepositoryInterface
	eventRepo   database.EventRepositoryInterface
	counter     CounterInterface
	runner      tasks.RunnerInterface
	newTasks    TaskFactory
	generator   *FeedGenerator
}
