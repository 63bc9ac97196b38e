// Package storage persists a Project as the tagged-tree document of
// §6, gzip-compressed on disk.
//
// Grounded on the teacher's internal/storage/storage.go (gzip +
// jsoniter, atomic-ish file creation); rewritten against
// internal/tree's document shape instead of one flat SaveData struct.
package storage

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"motif/internal/config"
	"motif/internal/midi"
	"motif/internal/project"
	"motif/internal/tree"
	"motif/internal/tuning"
	"motif/internal/undo"
	"motif/internal/vcs"
)

// Save writes p to path as a gzip-compressed tagged-tree document
// (§6). It writes to a temporary file in the same directory and
// renames it into place, so a crash mid-write never corrupts an
// existing save (§9 "Scoped resources").
func Save(path string, p *project.Project) error {
	root, err := encodeProject(p)
	if err != nil {
		return fmt.Errorf("storage: encode project: %w", err)
	}
	data, err := tree.Marshal(root)
	if err != nil {
		return fmt.Errorf("storage: marshal project: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".motif-save-*.tmp")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	gz := gzip.NewWriter(tmp)
	if _, err := gz.Write(data); err != nil {
		return fmt.Errorf("storage: write gzip payload: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("storage: close gzip writer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("storage: rename into place: %w", err)
	}
	cleanup = false
	return nil
}

// Load reads a project previously written by Save. A malformed file
// is reported as an error rather than partially populating the
// returned project (§7 "Deserialization failure").
func Load(path string, cfg config.Config) (*project.Project, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open project: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open project: %w", err)
	}

	root, err := tree.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open project: %w", err)
	}
	p, err := decodeProject(root, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open project: %w", err)
	}
	return p, nil
}

// --- ProjectRoot encoding ---

func encodeProject(p *project.Project) (*tree.Node, error) {
	root := tree.New("ProjectRoot")

	info := tree.New("ProjectInfo")
	info.SetValue("title", p.Info.Title)
	info.SetValue("author", p.Info.Author)
	info.SetValue("description", p.Info.Description)
	info.SetValue("license", p.Info.License)
	info.SetValue("createdAt", p.Info.CreatedAt)
	info.SetValue("metadata", p.Info.Metadata)
	root.AddChild(info)

	temperament := tree.New("Temperament")
	temperament.SetValue("value", p.Temperament)
	root.AddChild(temperament)

	if p.KeyboardMapping != nil {
		km := tree.New("KeyboardMapping")
		km.SetValue("numChannels", p.KeyboardMapping.NumChannels())
		km.SetValue("entries", p.KeyboardMapping.Serialize())
		root.AddChild(km)
	}

	for _, tr := range p.Tracks {
		root.AddChild(encodeTrack(tr))
	}

	root.AddChild(encodeVersionControl(p.VCS))

	undoNode, err := encodeUndoHistory(p.Undo)
	if err != nil {
		return nil, err
	}
	root.AddChild(undoNode)

	return root, nil
}

// --- Undo history encoding ---
//
// Only the undo half of the stack round-trips (§4.4 "every kind has a
// concrete class with ... serialize/deserialize"); the redo half is
// dropped on save, the way the snapshot cache is dropped on save (see
// DESIGN.md).

func encodeUndoHistory(stack *undo.Stack) (*tree.Node, error) {
	n := tree.New("UndoHistory")
	entries, err := stack.Entries()
	if err != nil {
		return nil, fmt.Errorf("encode undo history: %w", err)
	}
	for _, e := range entries {
		en := tree.New("Action")
		en.SetValue("kind", e.Kind)
		en.Set("payload", e.Payload)
		n.AddChild(en)
	}
	return n, nil
}

func decodeUndoHistory(n *tree.Node, sizeBudget int, ctx undo.Context) (*undo.Stack, error) {
	entries := make([]undo.SerializedEntry, 0, len(n.Children))
	for _, en := range n.ChildrenNamed("Action") {
		var kind string
		en.Value("kind", &kind)
		payload, _ := en.Get("payload")
		entries = append(entries, undo.SerializedEntry{Kind: kind, Payload: payload})
	}
	return undo.RestoreStack(sizeBudget, entries, ctx)
}

func encodeTrack(tr *midi.Track) *tree.Node {
	n := tree.New("Track")
	n.SetValue("id", tr.ID)
	n.SetValue("name", tr.Name)
	n.SetValue("kind", int(tr.Kind))
	n.SetValue("colour", tr.Colour)
	n.SetValue("channel", tr.Channel)
	n.SetValue("muted", tr.Muted)
	n.SetValue("controllerNumber", tr.ControllerNumber)
	n.SetValue("instrumentId", tr.InstrumentID)
	if tr.TimeSignatureOverride != nil {
		n.SetValue("timeSignatureOverride", *tr.TimeSignatureOverride)
	}

	seq := tree.New("MidiSequence")
	for _, e := range tr.Sequence.Events() {
		en := tree.New("Event")
		en.SetValue("data", e)
		seq.AddChild(en)
	}
	n.AddChild(seq)

	pattern := tree.New("Pattern")
	for _, c := range tr.Pattern.Clips() {
		cn := tree.New("Clip")
		cn.SetValue("data", c)
		pattern.AddChild(cn)
	}
	n.AddChild(pattern)

	return n
}

func decodeProject(root *tree.Node, cfg config.Config) (*project.Project, error) {
	if root.Name != "ProjectRoot" {
		return nil, fmt.Errorf("storage: expected ProjectRoot, got %q", root.Name)
	}

	var info project.ProjectInfo
	if infoNode := root.FirstChildNamed("ProjectInfo"); infoNode != nil {
		infoNode.Value("title", &info.Title)
		infoNode.Value("author", &info.Author)
		infoNode.Value("description", &info.Description)
		infoNode.Value("license", &info.License)
		infoNode.Value("createdAt", &info.CreatedAt)
		infoNode.Value("metadata", &info.Metadata)
	}

	var temperament tuning.Temperament
	if tNode := root.FirstChildNamed("Temperament"); tNode != nil {
		if _, err := tNode.Value("value", &temperament); err != nil {
			return nil, fmt.Errorf("decode temperament: %w", err)
		}
	}

	createdAt := info.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Unix(0, 0).UTC()
	}
	p := project.New(cfg, info, temperament, createdAt)

	if kmNode := root.FirstChildNamed("KeyboardMapping"); kmNode != nil {
		var numChannels int
		var serialized string
		kmNode.Value("numChannels", &numChannels)
		kmNode.Value("entries", &serialized)
		km, err := tuning.DeserializeKeyboardMapping(numChannels, serialized)
		if err != nil {
			return nil, fmt.Errorf("decode keyboard mapping: %w", err)
		}
		p.KeyboardMapping = km
	}

	for _, trackNode := range root.ChildrenNamed("Track") {
		tr, err := decodeTrack(trackNode)
		if err != nil {
			return nil, err
		}
		p.InsertTrackAt(tr, len(p.Tracks))
	}
	p.Undo.Clear() // loading tracks above must not seed undo history

	if vcsNode := root.FirstChildNamed("VersionControl"); vcsNode != nil {
		vc, err := decodeVersionControl(vcsNode)
		if err != nil {
			return nil, fmt.Errorf("decode version control: %w", err)
		}
		p.VCS = vc
	}

	if undoNode := root.FirstChildNamed("UndoHistory"); undoNode != nil {
		restored, err := decodeUndoHistory(undoNode, cfg.UndoStackSizeBudget, p)
		if err != nil {
			return nil, fmt.Errorf("decode undo history: %w", err)
		}
		p.Undo = restored
	}

	return p, nil
}

func decodeTrack(n *tree.Node) (*midi.Track, error) {
	var id, name, instrumentID string
	var kind int
	var colour tuning.Colour
	var channel, controllerNumber int
	var muted bool
	n.Value("id", &id)
	n.Value("name", &name)
	n.Value("kind", &kind)
	n.Value("colour", &colour)
	n.Value("channel", &channel)
	n.Value("muted", &muted)
	n.Value("controllerNumber", &controllerNumber)
	n.Value("instrumentId", &instrumentID)

	tr := midi.NewTrack(id, name, midi.Kind(kind))
	tr.Colour = colour
	tr.Channel = channel
	tr.Muted = muted
	tr.ControllerNumber = controllerNumber
	tr.InstrumentID = instrumentID

	var tsOverride midi.Event
	if ok, err := n.Value("timeSignatureOverride", &tsOverride); err != nil {
		return nil, err
	} else if ok {
		tr.TimeSignatureOverride = &tsOverride
	}

	if seq := n.FirstChildNamed("MidiSequence"); seq != nil {
		for _, en := range seq.ChildrenNamed("Event") {
			var e midi.Event
			if _, err := en.Value("data", &e); err != nil {
				return nil, fmt.Errorf("decode event: %w", err)
			}
			tr.Sequence.Insert(e)
		}
	}
	if pattern := n.FirstChildNamed("Pattern"); pattern != nil {
		for _, cn := range pattern.ChildrenNamed("Clip") {
			var c midi.Clip
			if _, err := cn.Value("data", &c); err != nil {
				return nil, fmt.Errorf("decode clip: %w", err)
			}
			tr.Pattern.Insert(c)
		}
	}
	return tr, nil
}

// --- VersionControl encoding ---

func encodeVersionControl(vc *vcs.VersionControl) *tree.Node {
	n := tree.New("VersionControl")
	n.SetValue("headRevisionId", vc.Head().Revision.ID)
	n.SetValue("diffFormatVersion", vcs.CurrentDiffFormatVersion)
	n.AddChild(encodeRevision(vc.Root()))

	stashesNode := tree.New("Stashes")
	for _, s := range vc.Stashes().Named() {
		stashesNode.AddChild(encodeRevision(s))
	}
	if q := vc.Stashes().QuickStash(); q != nil {
		qn := encodeRevision(q)
		qn.SetValue("quick", true)
		stashesNode.AddChild(qn)
	}
	n.AddChild(stashesNode)
	return n
}

func encodeRevision(r *vcs.Revision) *tree.Node {
	n := tree.New("Revision")
	n.SetValue("id", r.ID)
	n.SetValue("message", r.Message)
	n.SetValue("timestamp", r.Timestamp)
	n.SetValue("shallow", r.Shallow)
	n.SetValue("items", r.Items)
	for _, c := range r.Children {
		n.AddChild(encodeRevision(c))
	}
	return n
}

func decodeVersionControl(n *tree.Node) (*vcs.VersionControl, error) {
	revisionNode := n.FirstChildNamed("Revision")
	if revisionNode == nil {
		return nil, fmt.Errorf("storage: VersionControl node has no root Revision")
	}
	root, err := decodeRevision(revisionNode)
	if err != nil {
		return nil, err
	}

	var headID string
	n.Value("headRevisionId", &headID)
	var diffFormatVersion int
	n.Value("diffFormatVersion", &diffFormatVersion)

	stashes := vcs.NewStashesRepository()
	if stashesNode := n.FirstChildNamed("Stashes"); stashesNode != nil {
		for _, sn := range stashesNode.ChildrenNamed("Revision") {
			stash, err := decodeRevision(sn)
			if err != nil {
				return nil, err
			}
			var quick bool
			sn.Value("quick", &quick)
			if quick {
				if err := stashes.SetQuickStash(stash); err != nil {
					return nil, err
				}
			} else {
				stashes.AddNamed(stash)
			}
		}
	}

	return vcs.RestoreFromSerialized(root, headID, nil, diffFormatVersion, stashes)
}

func decodeRevision(n *tree.Node) (*vcs.Revision, error) {
	var id, message string
	var timestamp time.Time
	var shallow bool
	var items []vcs.RevisionItem
	n.Value("id", &id)
	n.Value("message", &message)
	n.Value("timestamp", &timestamp)
	n.Value("shallow", &shallow)
	if _, err := n.Value("items", &items); err != nil {
		return nil, fmt.Errorf("decode revision items: %w", err)
	}

	r := &vcs.Revision{ID: id, Message: message, Timestamp: timestamp, Shallow: shallow, Items: items}
	for _, cn := range n.ChildrenNamed("Revision") {
		child, err := decodeRevision(cn)
		if err != nil {
			return nil, err
		}
		r.AddChild(child)
	}
	return r, nil
}
