package vcs

import "fmt"

// StashesRepository holds named user stashes plus one quick-stash slot
// (§3, §4.10). Stashes are Revisions not attached to the main tree.
type StashesRepository struct {
	named []*Revision
	quick *Revision
}

func NewStashesRepository() *StashesRepository {
	return &StashesRepository{}
}

// Named returns the list of named stashes, oldest first.
func (s *StashesRepository) Named() []*Revision {
	out := make([]*Revision, len(s.named))
	copy(out, s.named)
	return out
}

// AddNamed appends rev as a new named stash.
func (s *StashesRepository) AddNamed(rev *Revision) {
	s.named = append(s.named, rev)
}

// RemoveNamed deletes the named stash with the given id. Returns false
// if absent.
func (s *StashesRepository) RemoveNamed(id string) bool {
	for i, r := range s.named {
		if r.ID == id {
			s.named = append(s.named[:i], s.named[i+1:]...)
			return true
		}
	}
	return false
}

func (s *StashesRepository) FindNamed(id string) *Revision {
	for _, r := range s.named {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// HasQuickStash reports whether the quick stash slot is populated
// (§4.10 gates the UI on this).
func (s *StashesRepository) HasQuickStash() bool { return s.quick != nil }

// SetQuickStash populates the quick stash slot. Per §4.10, the named
// and quick slots are independent, but this core additionally forbids
// overwriting a populated quick stash to catch the "both populated"
// state the spec calls out as disallowed.
func (s *StashesRepository) SetQuickStash(rev *Revision) error {
	if s.quick != nil {
		return fmt.Errorf("vcs: quick stash slot already populated")
	}
	s.quick = rev
	return nil
}

// QuickStash returns the current quick stash revision, or nil.
func (s *StashesRepository) QuickStash() *Revision { return s.quick }

// ClearQuickStash empties the quick stash slot.
func (s *StashesRepository) ClearQuickStash() { s.quick = nil }
