package config

// WorkerKeyStruct holds the Redis queue names consumed by background workers.
type WorkerKeyStruct struct {
	// PersistProjectionsQueue is the Redis list consumed by the projection
	// worker. Each entry is a JSON projection update for the candidates table.
	PersistProjectionsQueue string
}

// WorkerKey is the shared queue-name instance.
var WorkerKey = WorkerKeyStruct{
	PersistProjectionsQueue: "persist_projections_queue",
}
