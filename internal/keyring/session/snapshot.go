package session

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// SnapshotVersion is the layout written by Snapshot. Version 0 is the legacy unversioned layout.
const SnapshotVersion = 1

var ErrUnsupportedSnapshot = errors.New("unsupported snapshot version")

// Snapshot is the persisted form of a session. The extended public key is not part of it:
// a restored session is locked until the next unlock.
type Snapshot struct {
	Version         int               `json:"version"`
	HDPath          string            `json:"hdPath"`
	Accounts        []string          `json:"accounts"`
	Page            int               `json:"page"`
	PerPage         int               `json:"perPage"`
	UnlockedAccount uint32            `json:"unlockedAccount"`
	Paths           map[string]uint32 `json:"paths"`
}

// ParseSnapshot decodes JSON produced by Marshal or by a legacy host.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, errors.Wrap(err, "failed to decode snapshot")
	}

	if s.Version > SnapshotVersion {
		return Snapshot{}, errors.Wrapf(ErrUnsupportedSnapshot, "version %d", s.Version)
	}

	return s, nil
}

func (s Snapshot) Marshal() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode snapshot")
	}

	return data, nil
}
