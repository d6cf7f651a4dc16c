package zammi

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

var errNoPoses = errors.New("no poses defined")

// poseFileDoc is the wrapped form with an optional window. A file without
// either key is a bare table of pose name to pose.
type poseFileDoc struct {
	Window *struct {
		Width  float64 `yaml:"width"`
		Height float64 `yaml:"height"`
	} `yaml:"window"`
	Poses map[string]poseDoc `yaml:"poses"`
}

type poseDoc struct {
	Title          string            `yaml:"title"`
	Description    string            `yaml:"description"`
	Tolerance      float64           `yaml:"tolerance"`
	HeadTolerance  float64           `yaml:"head_tolerance"`
	WristTolerance float64           `yaml:"wrist_tolerance"`
	Tolerances     map[int]float64   `yaml:"tolerances"`
	KeyPoints      []int             `yaml:"key_points"`
	Landmarks      map[int][]float64 `yaml:"landmarks"`
}

// LoadPoseFile reads a pose table from a .yaml, .yml or .json file and
// returns a mirrored store for it. A missing file reports ErrAssetNotFound.
func LoadPoseFile(path string) (*PoseStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, MissingAsset("poses", path)
		}
		return nil, fmt.Errorf("zammi: read poses: %w", err)
	}
	var (
		win   Size
		poses []*PoseConfig
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		win, poses, err = ParsePoseYAML(data)
	case ".json":
		win, poses, err = ParsePoseJSON(data)
	default:
		return nil, fmt.Errorf("zammi: poses %s: unsupported extension", path)
	}
	if err != nil {
		return nil, fmt.Errorf("zammi: poses %s: %w", path, err)
	}
	return NewPoseStore(win, poses...)
}

// ParsePoseYAML decodes a YAML pose table, either bare or under a poses key.
// The window defaults to ReferenceWindow. A table without poses is an
// error.
func ParsePoseYAML(data []byte) (Size, []*PoseConfig, error) {
	var doc poseFileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Size{}, nil, fmt.Errorf("parse yaml: %w", err)
	}
	if doc.Poses == nil && doc.Window == nil {
		if err := yaml.Unmarshal(data, &doc.Poses); err != nil {
			return Size{}, nil, fmt.Errorf("parse yaml: %w", err)
		}
	}
	if len(doc.Poses) == 0 {
		return Size{}, nil, errNoPoses
	}
	win := ReferenceWindow
	if doc.Window != nil {
		win = Size{Width: doc.Window.Width, Height: doc.Window.Height}
	}
	names := make([]string, 0, len(doc.Poses))
	for n := range doc.Poses {
		names = append(names, n)
	}
	sort.Strings(names)

	poses := make([]*PoseConfig, 0, len(names))
	for _, n := range names {
		p, err := doc.Poses[n].config(n)
		if err != nil {
			return Size{}, nil, err
		}
		poses = append(poses, p)
	}
	return win, poses, nil
}

func (d poseDoc) config(name string) (*PoseConfig, error) {
	p := &PoseConfig{
		Name:           name,
		Title:          d.Title,
		Description:    d.Description,
		Tolerance:      d.Tolerance,
		HeadTolerance:  d.HeadTolerance,
		WristTolerance: d.WristTolerance,
		Landmarks:      make(map[KeypointID]Vec2, len(d.Landmarks)),
	}
	if p.Title == "" {
		p.Title = name
	}
	if len(d.Tolerances) > 0 {
		p.Overrides = make(map[KeypointID]float64, len(d.Tolerances))
		for id, t := range d.Tolerances {
			p.Overrides[KeypointID(id)] = t
		}
	}
	for _, id := range d.KeyPoints {
		p.KeyPoints = append(p.KeyPoints, KeypointID(id))
	}
	for id, xy := range d.Landmarks {
		if len(xy) != 2 {
			return nil, fmt.Errorf("pose %q: landmark %d needs two coordinates, got %d", name, id, len(xy))
		}
		p.Landmarks[KeypointID(id)] = Vec2{xy[0], xy[1]}
	}
	return p, nil
}

// ParsePoseJSON decodes a JSON pose table with the same schema and shapes
// as the YAML form.
func ParsePoseJSON(data []byte) (Size, []*PoseConfig, error) {
	if !gjson.ValidBytes(data) {
		return Size{}, nil, errors.New("parse json: invalid document")
	}
	root := gjson.ParseBytes(data)
	win := ReferenceWindow
	if w := root.Get("window"); w.Exists() {
		win = Size{Width: w.Get("width").Float(), Height: w.Get("height").Float()}
	}

	table := root
	if p := root.Get("poses"); p.Exists() || root.Get("window").Exists() {
		table = p
	}

	var (
		poses []*PoseConfig
		err   error
	)
	table.ForEach(func(key, value gjson.Result) bool {
		var d poseDoc
		d, err = poseDocFromJSON(key.String(), value)
		if err != nil {
			return false
		}
		var p *PoseConfig
		p, err = d.config(key.String())
		if err != nil {
			return false
		}
		poses = append(poses, p)
		return true
	})
	if err != nil {
		return Size{}, nil, err
	}
	if len(poses) == 0 {
		return Size{}, nil, errNoPoses
	}
	sort.Slice(poses, func(i, j int) bool { return poses[i].Name < poses[j].Name })
	return win, poses, nil
}

func poseDocFromJSON(name string, v gjson.Result) (poseDoc, error) {
	d := poseDoc{
		Title:          v.Get("title").String(),
		Description:    v.Get("description").String(),
		Tolerance:      v.Get("tolerance").Float(),
		HeadTolerance:  v.Get("head_tolerance").Float(),
		WristTolerance: v.Get("wrist_tolerance").Float(),
		Landmarks:      make(map[int][]float64),
	}
	var err error
	v.Get("tolerances").ForEach(func(k, t gjson.Result) bool {
		var id int
		if id, err = strconv.Atoi(k.String()); err != nil {
			err = fmt.Errorf("pose %q: tolerance key %q: %w", name, k.String(), err)
			return false
		}
		if d.Tolerances == nil {
			d.Tolerances = make(map[int]float64)
		}
		d.Tolerances[id] = t.Float()
		return true
	})
	if err != nil {
		return d, err
	}
	for _, k := range v.Get("key_points").Array() {
		d.KeyPoints = append(d.KeyPoints, int(k.Int()))
	}
	v.Get("landmarks").ForEach(func(k, xy gjson.Result) bool {
		var id int
		if id, err = strconv.Atoi(k.String()); err != nil {
			err = fmt.Errorf("pose %q: landmark key %q: %w", name, k.String(), err)
			return false
		}
		coords := xy.Array()
		vals := make([]float64, len(coords))
		for i, c := range coords {
			vals[i] = c.Float()
		}
		d.Landmarks[id] = vals
		return true
	})
	return d, err
}
