package exporter

import "time"

const (
	defaultWorkerCount = 8
	defaultChunkSize   = 100

	sleepDuration    = 5 * time.Second
	pollDuration     = 2 * time.Second
	batchFlushSize   = 50
	batchFlushPeriod = time.Second
)
