package project

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/network"
)

// Reserved keys naming the fixed activities.
const (
	StartKey  = "start"
	FinishKey = "finish"
)

// Format is a project file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported project file %s: use .toml or .json", filepath.Base(path))
	}
}

// File is the decoded form of a project definition.
type File struct {
	Name       string        `toml:"name" json:"name,omitempty"`
	Activities []ActivityDef `toml:"activity" json:"activities"`
	Edges      []EdgeDef     `toml:"edge,omitempty" json:"edges,omitempty"`
}

// ActivityDef declares one activity.
type ActivityDef struct {
	Key      string   `toml:"key" json:"key"`
	Label    string   `toml:"label,omitempty" json:"label,omitempty"`
	Duration float64  `toml:"duration" json:"duration"`
	After    []string `toml:"after,omitempty" json:"after,omitempty"`
}

// EdgeDef declares a dependency between two keys.
type EdgeDef struct {
	From string `toml:"from" json:"from"`
	To   string `toml:"to" json:"to"`
}

// Project is a built network together with the key each activity was
// declared under.
type Project struct {
	Name    string
	Network *network.Network
	Keys    map[string]network.ID
}

// KeyOf returns the key of id, or "" if the activity has none.
func (p *Project) KeyOf(id network.ID) string {
	for k, v := range p.Keys {
		if v == id {
			return k
		}
	}
	return ""
}

// KeysByID inverts Keys. The reserved start and finish keys are omitted.
func (p *Project) KeysByID() map[network.ID]string {
	out := make(map[network.ID]string, len(p.Keys))
	for k, id := range p.Keys {
		if id != network.StartID && id != network.FinishID {
			out[id] = k
		}
	}
	return out
}

// Load reads and decodes the project file at path.
func Load(path string) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "project file %s not found", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, format)
}

// Read decodes a project definition from r.
func Read(r io.Reader, format Format) (*File, error) {
	var file File
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&file); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode toml")
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&file); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode json")
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown format %q", format)
	}
	return &file, nil
}

// Write encodes file to w in the given format.
func Write(w io.Writer, file *File, format Format) error {
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(file); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(file); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	default:
		return errs.New(errs.ErrCodeInvalidFormat, "unknown format %q", format)
	}
	return nil
}

// Build creates a network from the definition by replaying it through the
// mutation API. Errors name the offending key.
func (f *File) Build() (*Project, error) {
	n := network.New()
	keys := map[string]network.ID{
		StartKey:  network.StartID,
		FinishKey: network.FinishID,
	}

	for i, def := range f.Activities {
		key := strings.TrimSpace(def.Key)
		switch {
		case key == "":
			return nil, errs.New(errs.ErrCodeInvalidInput, "activity #%d: missing key", i+1)
		case key == StartKey || key == FinishKey:
			return nil, errs.New(errs.ErrCodeInvalidInput, "activity #%d: key %q is reserved", i+1, key)
		}
		if _, dup := keys[key]; dup {
			return nil, errs.New(errs.ErrCodeInvalidInput, "activity %q declared twice", key)
		}
		label := def.Label
		if strings.TrimSpace(label) == "" {
			label = key
		}
		a, err := n.AddActivity(label, def.Duration)
		if err != nil {
			return nil, fmt.Errorf("activity %q: %w", key, err)
		}
		keys[key] = a.ID
	}

	edges := f.dependencies()
	if len(edges) > 0 {
		n.Disconnect(network.StartID, network.FinishID)
	}
	for _, e := range edges {
		from, ok := keys[e.From]
		if !ok {
			return nil, errs.New(errs.ErrCodeInvalidInput, "edge %s->%s: unknown key %q", e.From, e.To, e.From)
		}
		to, ok := keys[e.To]
		if !ok {
			return nil, errs.New(errs.ErrCodeInvalidInput, "edge %s->%s: unknown key %q", e.From, e.To, e.To)
		}
		if err := n.Connect(from, to); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}

	return &Project{Name: f.Name, Network: n, Keys: keys}, nil
}

// dependencies merges the "after" lists and explicit edges in file order.
func (f *File) dependencies() []EdgeDef {
	var out []EdgeDef
	for _, def := range f.Activities {
		key := strings.TrimSpace(def.Key)
		for _, p := range def.After {
			out = append(out, EdgeDef{From: strings.TrimSpace(p), To: key})
		}
	}
	for _, e := range f.Edges {
		out = append(out, EdgeDef{From: strings.TrimSpace(e.From), To: strings.TrimSpace(e.To)})
	}
	return out
}

// LoadProject loads the file at path and builds its network.
func LoadProject(path string) (*Project, error) {
	file, err := Load(path)
	if err != nil {
		return nil, err
	}
	return file.Build()
}

// FromNetwork describes n as a project file, writing every dependency to
// the activity's "after" list. Activities keep the key they have in keys;
// the rest are keyed "a<id>", suffixed if that key is already taken.
func FromNetwork(name string, n *network.Network, keys map[network.ID]string) *File {
	taken := map[string]bool{StartKey: true, FinishKey: true}
	for _, a := range n.Activities() {
		if k, ok := keys[a.ID]; ok && !a.IsFixed() {
			taken[k] = true
		}
	}

	assigned := make(map[network.ID]string, n.Len())
	assigned[network.StartID] = StartKey
	assigned[network.FinishID] = FinishKey
	for _, a := range n.Activities() {
		if a.IsFixed() {
			continue
		}
		if k, ok := keys[a.ID]; ok {
			assigned[a.ID] = k
			continue
		}
		k := fmt.Sprintf("a%d", a.ID)
		for i := 2; taken[k]; i++ {
			k = fmt.Sprintf("a%d_%d", a.ID, i)
		}
		taken[k] = true
		assigned[a.ID] = k
	}

	file := &File{Name: name}
	for _, a := range n.Activities() {
		if a.IsFixed() {
			continue
		}
		def := ActivityDef{Key: assigned[a.ID], Label: a.Label, Duration: a.Duration}
		for _, p := range n.Parents(a.ID) {
			def.After = append(def.After, assigned[p])
		}
		file.Activities = append(file.Activities, def)
	}
	for _, p := range n.Parents(network.FinishID) {
		file.Edges = append(file.Edges, EdgeDef{From: assigned[p], To: FinishKey})
	}
	return file
}
