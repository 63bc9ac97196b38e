package vcs

import (
	"time"

	"github.com/google/uuid"
)

// Revision is a node in the VCS tree (§3). Parent is a weak
// back-reference (not serialized; internal/storage reconstructs it
// from nesting on load).
type Revision struct {
	ID        string
	Message   string
	Timestamp time.Time
	Parent    *Revision
	Children  []*Revision
	Items     []RevisionItem
	Shallow   bool
}

// NewRevision constructs a Revision with a fresh id and the given
// timestamp (passed explicitly — see internal/config's anti-singleton
// guidance; this package does not call time.Now()).
func NewRevision(message string, timestamp time.Time, items []RevisionItem) *Revision {
	return &Revision{
		ID:        uuid.NewString(),
		Message:   message,
		Timestamp: timestamp,
		Items:     items,
	}
}

// AddChild attaches child as a new child of r, setting its Parent
// back-reference.
func (r *Revision) AddChild(child *Revision) {
	child.Parent = r
	r.Children = append(r.Children, child)
}

// RemoveChild detaches child from r's children, reporting whether it
// was found.
func (r *Revision) RemoveChild(child *Revision) bool {
	for i, c := range r.Children {
		if c == child {
			r.Children = append(r.Children[:i], r.Children[i+1:]...)
			return true
		}
	}
	return false
}

// PathFromRoot returns the chain of Revisions from the tree root down
// to and including r, root first — the path Apply walks (§4.5).
func (r *Revision) PathFromRoot() []*Revision {
	var path []*Revision
	for node := r; node != nil; node = node.Parent {
		path = append(path, node)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// FindByID searches the subtree rooted at r (inclusive) for a
// Revision with the given id.
func (r *Revision) FindByID(id string) *Revision {
	if r.ID == id {
		return r
	}
	for _, c := range r.Children {
		if found := c.FindByID(id); found != nil {
			return found
		}
	}
	return nil
}

// Root walks Parent links up to the tree root.
func (r *Revision) Root() *Revision {
	node := r
	for node.Parent != nil {
		node = node.Parent
	}
	return node
}
