package pipeline

import "errors"

var (
	// ErrStoreRequired is returned when a pipeline is built without a blob
	// store.
	ErrStoreRequired = errors.New("blob store required")

	// ErrTokenizerRequired is returned when the chunk stage runs without a
	// tokenizer.
	ErrTokenizerRequired = errors.New("tokenizer required for the chunk stage")

	// ErrEmbedderRequired is returned when the embed stage runs without an
	// embedding provider.
	ErrEmbedderRequired = errors.New("embedder required for the embed stage")

	// ErrSinkRequired is returned when the index stage runs without a sink.
	ErrSinkRequired = errors.New("index sink required for the index stage")

	// ErrSourceRequired is returned when the fetch stage runs without an
	// archive source.
	ErrSourceRequired = errors.New("archive source required")

	// ErrNoPartitions is returned when a run config names no partitions.
	ErrNoPartitions = errors.New("at least one partition required")

	// ErrStageNotReady is returned when a stage's input namespace holds
	// nothing for the selected partitions. Stages consume only outputs that
	// already exist; run the upstream stage first.
	ErrStageNotReady = errors.New("stage input is empty")

	// ErrStageFatal wraps failures that abort a whole stage, as opposed to
	// per-document failures carried in the stage report.
	ErrStageFatal = errors.New("stage aborted")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
