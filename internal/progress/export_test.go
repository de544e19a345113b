package progress

// RecordAt exposes the deterministic recording step so tests can pin
// attempt IDs and timestamps.
var RecordAt = Snapshot.record
