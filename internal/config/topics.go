package config

const (
	// TopicIngestFile is the NSQ topic for PDF ingestion jobs.
	TopicIngestFile = "ingest.file"

	// TopicIngestProgress is the NSQ topic for job progress events,
	// routed to interested subscribers by user id.
	TopicIngestProgress = "ingest.progress"

	// ChannelWorker is the consumer channel for the ingestion worker pool.
	ChannelWorker = "worker"
)
