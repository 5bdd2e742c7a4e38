package ports

import "errors"

// ErrSnapshotNotFound is returned by stores for unknown snapshot IDs
var ErrSnapshotNotFound = errors.New("snapshot not found")
