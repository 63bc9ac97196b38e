package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"motif/internal/config"
	"motif/internal/export"
	"motif/internal/midi"
	"motif/internal/project"
	"motif/internal/storage"
	"motif/internal/tuning"
	"motif/internal/vcs"
)

func loadProject(path string) (*project.Project, config.Config, error) {
	cfg := config.DefaultConfig()
	p, err := storage.Load(path, cfg)
	if err != nil {
		return nil, cfg, err
	}
	return p, cfg, nil
}

func newInitCmd() *cobra.Command {
	var title, author string
	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "create a new, empty project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			now := time.Now()
			info := project.ProjectInfo{Title: title, Author: author, CreatedAt: now}
			p := project.New(cfg, info, tuning.TwelveToneEqual(), now)
			if err := storage.Save(args[0], p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "Untitled", "project title")
	cmd.Flags().StringVar(&author, "author", "", "project author")
	return cmd
}

func newTrackAddCmd() *cobra.Command {
	var automation bool
	cmd := &cobra.Command{
		Use:   "track-add <path> <name>",
		Short: "add a new track to the project, uncommitted",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := loadProject(args[0])
			if err != nil {
				return err
			}
			kind := midi.Piano
			if automation {
				kind = midi.AutomationTrack
			}
			tr := midi.NewTrack(uuid.NewString(), args[1], kind)
			if !p.InsertTrack(tr) {
				return fmt.Errorf("motif: could not insert track %q", args[1])
			}
			if err := storage.Save(args[0], p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added track %s (%s)\n", tr.ID, tr.Name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&automation, "automation", false, "create an automation track instead of a piano track")
	return cmd
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <path>",
		Short: "show uncommitted changes against the current head",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := loadProject(args[0])
			if err != nil {
				return err
			}
			diff, err := p.Diff(time.Now())
			if err != nil {
				return err
			}
			if len(diff.Items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no changes")
				return nil
			}
			for _, item := range diff.Items {
				cats := make([]string, 0, len(item.Deltas))
				for _, d := range item.Deltas {
					cats = append(cats, d.Description)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  [%s]\n", item.Kind, item.TrackedItemID, strings.Join(cats, ", "))
			}
			return nil
		},
	}
	return cmd
}

func newCommitCmd() *cobra.Command {
	var message string
	var only string
	cmd := &cobra.Command{
		Use:   "commit <path>",
		Short: "commit the current diff as a new revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := loadProject(args[0])
			if err != nil {
				return err
			}
			var selected []string
			if only != "" {
				selected = strings.Split(only, ",")
			}
			rev, err := p.Commit(selected, message, time.Now())
			if err != nil {
				return err
			}
			if err := storage.Save(args[0], p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "committed %s: %s\n", rev.ID, rev.Message)
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&only, "only", "", "comma-separated tracked item ids to commit (default: all)")
	cmd.MarkFlagRequired("message")
	return cmd
}

func logLine(cmd *cobra.Command, rev *vcs.Revision, headID string, depth int) {
	marker := "  "
	if rev.ID == headID {
		marker = "* "
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s%s%s  %s  %s\n",
		strings.Repeat("  ", depth), marker, rev.ID, rev.Timestamp.Format(time.RFC3339), rev.Message)
	for _, child := range rev.Children {
		logLine(cmd, child, headID, depth+1)
	}
}

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <path>",
		Short: "print the revision tree, newest leaves last, head marked with *",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := loadProject(args[0])
			if err != nil {
				return err
			}
			logLine(cmd, p.VCS.Root(), p.VCS.Head().Revision.ID, 0)
			return nil
		},
	}
	return cmd
}

func newCheckoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout <path> <revision-id>",
		Short: "move head to a revision and materialize it onto the project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := loadProject(args[0])
			if err != nil {
				return err
			}
			rev := p.VCS.Root().FindByID(args[1])
			if rev == nil {
				return fmt.Errorf("motif: no revision %q", args[1])
			}
			if err := p.Checkout(rev); err != nil {
				return err
			}
			return storage.Save(args[0], p)
		},
	}
	return cmd
}

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <path> <revision-id>",
		Short: "fold a revision's items into head as a new commit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := loadProject(args[0])
			if err != nil {
				return err
			}
			foreign := p.VCS.Root().FindByID(args[1])
			if foreign == nil {
				return fmt.Errorf("motif: no revision %q", args[1])
			}
			rev, err := p.Merge(foreign, time.Now())
			if err != nil {
				return err
			}
			if err := storage.Save(args[0], p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "merged into %s\n", rev.ID)
			return nil
		},
	}
	return cmd
}

func newStashCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stash",
		Short: "set aside uncommitted changes",
	}

	var message string
	push := &cobra.Command{
		Use:   "push <path>",
		Short: "stash the current diff under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := loadProject(args[0])
			if err != nil {
				return err
			}
			stash, err := p.Stash(nil, message, time.Now(), false)
			if err != nil {
				return err
			}
			if err := storage.Save(args[0], p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stashed %s\n", stash.ID)
			return nil
		},
	}
	push.Flags().StringVarP(&message, "message", "m", "stash", "stash message")

	list := &cobra.Command{
		Use:   "list <path>",
		Short: "list named stashes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := loadProject(args[0])
			if err != nil {
				return err
			}
			for _, s := range p.VCS.Stashes().Named() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", s.ID, s.Message)
			}
			return nil
		},
	}

	apply := &cobra.Command{
		Use:   "apply <path> <stash-id>",
		Short: "re-apply a named stash onto the project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := loadProject(args[0])
			if err != nil {
				return err
			}
			stash := p.VCS.Stashes().FindNamed(args[1])
			if stash == nil {
				return fmt.Errorf("motif: no stash %q", args[1])
			}
			if err := p.ApplyStash(stash, false); err != nil {
				return err
			}
			return storage.Save(args[0], p)
		},
	}

	root.AddCommand(push, list, apply)
	return root
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <path> <output.mid>",
		Short: "render the project to a Standard MIDI File",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, cfg, err := loadProject(args[0])
			if err != nil {
				return err
			}
			smf, err := export.Export(p, cfg)
			if err != nil {
				return err
			}
			return smf.WriteFile(args[1])
		},
	}
	return cmd
}
