package tasks

// RunnerInterface is implemented by Runner. The HTTP API enqueues scrape
// tasks through it.
type RunnerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
