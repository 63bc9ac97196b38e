package vcs

// Head is the current checkout position (§3, Glossary). Its Snapshot
// is kept up to date by MoveTo (pure: never touches the live project)
// and consumed by VersionControl.Checkout (which does touch it).
type Head struct {
	Revision     *Revision
	Snapshot     Snapshot
	DiffOutdated bool

	cache    *snapshotCache
	diffRev  *Revision // lazily computed diff of project-vs-snapshot, invalidated on any project change
}

// NewHead constructs a Head pointed at root with an empty snapshot
// (the state of a freshly created project before any commit).
func NewHead(root *Revision) *Head {
	return &Head{Revision: root, Snapshot: Snapshot{}, cache: newSnapshotCache()}
}

// MoveTo recomputes h.Snapshot as apply(root→…→rev, empty) (§4.5 step
// 1). Pure: does not touch any live project.
func (h *Head) MoveTo(rev *Revision) error {
	if cached, ok := h.cache.get(rev.ID); ok {
		h.Revision = rev
		h.Snapshot = cached
		h.DiffOutdated = true
		h.diffRev = nil
		return nil
	}
	snap, err := Apply(rev.PathFromRoot())
	if err != nil {
		return err
	}
	h.cache.put(rev.ID, snap)
	h.Revision = rev
	h.Snapshot = snap
	h.DiffOutdated = true
	h.diffRev = nil
	return nil
}

// PointTo sets the head directly to rev with a pre-known snapshot,
// bypassing MoveTo's apply walk (§4.9, used on load when the stored
// diffFormatVersion matches the current code's).
func (h *Head) PointTo(rev *Revision, snap Snapshot) {
	h.Revision = rev
	h.Snapshot = snap
	h.cache.put(rev.ID, snap)
	h.DiffOutdated = true
	h.diffRev = nil
}

// InvalidateDiff marks the cached diff stale; called on every project
// mutation.
func (h *Head) InvalidateDiff() {
	h.DiffOutdated = true
	h.diffRev = nil
}

// CachedDiff returns the previously computed diff revision, if any and
// still fresh.
func (h *Head) CachedDiff() (*Revision, bool) {
	if h.DiffOutdated || h.diffRev == nil {
		return nil, false
	}
	return h.diffRev, true
}

// SetCachedDiff stores a freshly computed diff and clears the outdated flag.
func (h *Head) SetCachedDiff(rev *Revision) {
	h.diffRev = rev
	h.DiffOutdated = false
}
