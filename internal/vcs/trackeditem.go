package vcs

// Kind distinguishes whether a RevisionItem describes the appearance,
// modification, or disappearance of a TrackedItem (§3 RevisionItem).
type Kind int

const (
	Added Kind = iota
	Changed
	Removed
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Changed:
		return "changed"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// RevisionItem is a tracked change attached to a Revision (§3).
type RevisionItem struct {
	Kind          Kind
	TrackedItemID string
	Type          string
	Deltas        []Delta
}

// TrackedItem is any source of deltas to the VCS: a track or the
// project metadata pseudo-item (§3, Glossary). Implementations live in
// internal/project as adapters over *midi.Track and ProjectInfo, so
// this package stays decoupled from the data model.
type TrackedItem interface {
	// ID is the uuid identifying this logical source across revisions.
	ID() string

	// Type is a string tag identifying which subsystem generated this
	// item's deltas (e.g. "track.piano", "project.info").
	Type() string

	// Categories lists this item's fixed set of named delta categories
	// (§4.6), e.g. {"path","mute","colour","notesAdded"} for a piano track.
	Categories() []string

	// CategoryIsCollection reports whether category holds a keyed
	// collection (diffed per §4.7) or a single scalar value.
	CategoryIsCollection(category string) bool

	// SnapshotCategory returns category's current serialized value from
	// the live item.
	SnapshotCategory(category string) CategoryValue

	// ApplyScalar writes a scalar category's value back onto the live item.
	ApplyScalar(category string, value []byte) error

	// ApplyCollection mutates a collection category on the live item:
	// insert added (by original id), replace changed entries with their
	// after-image, and delete removed ids.
	ApplyCollection(category string, added, changed map[string][]byte, removed []string) error
}
