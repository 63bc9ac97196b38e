package project

import (
	"fmt"
	"time"

	"motif/internal/vcs"
)

// ProjectInfo is the project-metadata pseudo-item (§3 Project,
// Glossary "TrackedItem": "a track or the project metadata").
type ProjectInfo struct {
	Title       string
	Author      string
	Description string
	License     string
	CreatedAt   time.Time
	Metadata    map[string]string
}

// projectMetadataItemID is the fixed trackedItemId for the project
// metadata pseudo-item, distinct from any uuid a real track can have.
const projectMetadataItemID = "project-info"

type trackedProjectInfo struct {
	info *ProjectInfo
}

func newTrackedProjectInfo(info *ProjectInfo) *trackedProjectInfo {
	return &trackedProjectInfo{info: info}
}

func (a *trackedProjectInfo) ID() string   { return projectMetadataItemID }
func (a *trackedProjectInfo) Type() string { return "project.info" }

func (a *trackedProjectInfo) Categories() []string {
	return []string{"title", "author", "description", "license"}
}

func (a *trackedProjectInfo) CategoryIsCollection(category string) bool { return false }

func (a *trackedProjectInfo) SnapshotCategory(category string) vcs.CategoryValue {
	var v string
	switch category {
	case "title":
		v = a.info.Title
	case "author":
		v = a.info.Author
	case "description":
		v = a.info.Description
	case "license":
		v = a.info.License
	}
	b, _ := json.Marshal(v)
	return vcs.CategoryValue{Scalar: b}
}

func (a *trackedProjectInfo) ApplyScalar(category string, value []byte) error {
	var v string
	if len(value) > 0 {
		if err := json.Unmarshal(value, &v); err != nil {
			return err
		}
	}
	switch category {
	case "title":
		a.info.Title = v
	case "author":
		a.info.Author = v
	case "description":
		a.info.Description = v
	case "license":
		a.info.License = v
	default:
		return fmt.Errorf("project: %q is not a project-info category", category)
	}
	return nil
}

func (a *trackedProjectInfo) ApplyCollection(category string, added, changed map[string][]byte, removed []string) error {
	return fmt.Errorf("project: project-info has no collection categories")
}
