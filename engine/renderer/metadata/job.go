package metadata

/** @brief Runs a task. The returned value is handed to OnSuccess. */
type TaskStart func(params interface{}) (interface{}, error)

/** @brief Invoked with the result of a task that succeeded. */
type TaskOnSuccess func(result interface{})

/** @brief Invoked with the error of a task that failed. */
type TaskOnFailure func(err error)

/**
 * @brief Describes a unit of work run off the frame, such as parsing a
 * configuration file that changed on disk.
 */
type Task struct {
	/** @brief Identifies the task in logs. */
	Name string
	/** @brief A function invoked when the task starts. Required. */
	EntryPoint TaskStart
	/** @brief A function invoked when the task succeeds. Optional. */
	OnSuccess TaskOnSuccess
	/** @brief A function invoked when the task fails or panics. Optional. */
	OnFailure TaskOnFailure
	/** @brief A function invoked last, whatever the outcome. Optional. */
	OnDone func()
	/** @brief Data to be passed to the entry point upon execution. */
	Params interface{}
}

// The number of tasks that can wait in the queue when no size is configured.
const DEFAULT_TASK_QUEUE_SIZE int = 512
