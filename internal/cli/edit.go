package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/network"
	"github.com/matzehuels/critpath/pkg/observability"
	"github.com/matzehuels/critpath/pkg/project"
	"github.com/matzehuels/critpath/pkg/session"
)

// editCommand creates the interactive network editor.
func (c *CLI) editCommand() *cobra.Command {
	var savePath string

	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Edit an activity network interactively",
		Long: `Edit opens a terminal editor over a new network or a project file.

Type commands at the prompt:

  add LABEL DURATION     add an activity
  connect FROM TO        add a dependency (ids, labels, start, finish)
  disconnect FROM TO     remove a dependency
  delete ID              delete an activity, bridging its dependencies
  calc                   calculate schedule and critical path
  save [PATH]            write the network as a project file
  quit                   leave the editor`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(args)
			if err != nil {
				return err
			}
			if savePath == "" && len(args) == 1 {
				savePath = args[0]
			}

			// Failures are shown in the editor's status line; logging them
			// would draw over the screen.
			observability.SetSessionHooks(observability.NoopSessionHooks{})

			ctx := cmd.Context()
			prog := tea.NewProgram(newEditorModel(ctx, sess, savePath), tea.WithAltScreen(), tea.WithContext(ctx))
			final, err := prog.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(editorModel); ok && m.saved != "" {
				printSuccess(cmd.OutOrStdout(), "Saved %s", m.saved)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&savePath, "save", "", "file written by the save command (default: the opened file)")

	return cmd
}

func openSession(args []string) (*session.Session, error) {
	if len(args) == 0 {
		return session.New("Untitled", 0), nil
	}
	p, err := project.LoadProject(args[0])
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}
	return session.FromProject(p, 0), nil
}

// editorAction is the outcome of one editor command.
type editorAction struct {
	status string
	saved  string
	quit   bool
}

// execEditorCommand runs one prompt line against s.
func execEditorCommand(ctx context.Context, s *session.Session, line, savePath string) (editorAction, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return editorAction{}, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "add", "a":
		if len(args) < 2 {
			return editorAction{}, usage("add LABEL DURATION")
		}
		d, err := strconv.ParseFloat(args[len(args)-1], 64)
		if err != nil {
			return editorAction{}, errs.New(errs.ErrCodeInvalidInput, "duration %q is not a number", args[len(args)-1])
		}
		a, err := s.AddActivity(ctx, strings.Join(args[:len(args)-1], " "), d)
		if err != nil {
			return editorAction{}, err
		}
		return editorAction{status: fmt.Sprintf("Added %s (#%d)", a.Label, a.ID)}, nil

	case "connect", "c", "disconnect", "x":
		if len(args) != 2 {
			return editorAction{}, usage(cmd + " FROM TO")
		}
		from, to, err := resolvePair(s, args[0], args[1])
		if err != nil {
			return editorAction{}, err
		}
		if cmd == "connect" || cmd == "c" {
			if err := s.Connect(ctx, from, to); err != nil {
				return editorAction{}, err
			}
			return editorAction{status: fmt.Sprintf("Connected %d %s %d", from, iconArrow, to)}, nil
		}
		s.Disconnect(ctx, from, to)
		return editorAction{status: fmt.Sprintf("Disconnected %d %s %d", from, iconArrow, to)}, nil

	case "delete", "d":
		if len(args) != 1 {
			return editorAction{}, usage("delete ID")
		}
		var id network.ID
		err := s.With(func(n *network.Network) error {
			var err error
			id, err = resolveRef(n, args[0])
			return err
		})
		if err != nil {
			return editorAction{}, err
		}
		if err := s.DeleteActivity(ctx, id); err != nil {
			return editorAction{}, err
		}
		return editorAction{status: fmt.Sprintf("Deleted #%d", id)}, nil

	case "calc", "calculate":
		res, err := s.Calculate(ctx)
		if err != nil {
			return editorAction{}, err
		}
		return editorAction{status: fmt.Sprintf("Project duration %s, %d critical path(s)",
			num(res.ProjectDuration), len(res.CriticalPaths))}, nil

	case "save", "w":
		path := savePath
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return editorAction{}, usage("save PATH")
		}
		if err := saveSession(s, path); err != nil {
			return editorAction{}, err
		}
		return editorAction{status: "Saved " + path, saved: path}, nil

	case "quit", "q", "exit":
		return editorAction{quit: true}, nil

	case "help", "?":
		return editorAction{status: "add LABEL DURATION · connect FROM TO · disconnect FROM TO · delete ID · calc · save [PATH] · quit"}, nil
	}
	return editorAction{}, errs.New(errs.ErrCodeInvalidInput, "unknown command %q (try help)", cmd)
}

func usage(u string) error {
	return errs.New(errs.ErrCodeInvalidInput, "usage: %s", u)
}

func resolvePair(s *session.Session, fromRef, toRef string) (from, to network.ID, err error) {
	err = s.With(func(n *network.Network) error {
		if from, err = resolveRef(n, fromRef); err != nil {
			return err
		}
		to, err = resolveRef(n, toRef)
		return err
	})
	return from, to, err
}

// resolveRef turns a prompt argument into an activity id. It accepts ids,
// "start", "finish" and single-word labels (case-insensitive). Unknown
// numeric ids are passed through so the network reports them.
func resolveRef(n *network.Network, ref string) (network.ID, error) {
	switch strings.ToLower(ref) {
	case project.StartKey:
		return network.StartID, nil
	case project.FinishKey:
		return network.FinishID, nil
	}
	if id, err := strconv.Atoi(ref); err == nil {
		return network.ID(id), nil
	}

	var found []network.ID
	for _, a := range n.Activities() {
		if strings.EqualFold(a.Label, ref) {
			found = append(found, a.ID)
		}
	}
	switch len(found) {
	case 0:
		return 0, errs.New(errs.ErrCodeActivityNotFound, "no activity labelled %q", ref)
	case 1:
		return found[0], nil
	default:
		return 0, errs.New(errs.ErrCodeInvalidInput, "label %q matches activities %v; use an id", ref, found)
	}
}

func saveSession(s *session.Session, path string) error {
	format, err := project.FormatFromPath(path)
	if err != nil {
		return err
	}
	file := s.File()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := project.Write(f, file, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
