package recorder

import "context"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSnapshot(context.Context, *Snapshot) error { return nil }
func (n *NoopRecorder) RecordRun(context.Context, *RefreshRun) error    { return nil }
func (n *NoopRecorder) RecentSnapshots(context.Context, string, int) ([]Snapshot, error) {
	return []Snapshot{}, nil
}
func (n *NoopRecorder) Close() error { return nil }
