package services

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"airbnb-insights/engine"
)

// Panel kinds.
const (
	KindAggregate = "aggregate"
	KindSummary   = "summary"
)

//go:embed panels.yaml
var defaultPanels []byte

// Panel describes one dashboard chart as a declarative query.
type Panel struct {
	Title   string `yaml:"title"`
	Page    string `yaml:"page"`
	Kind    string `yaml:"kind"`
	GroupBy string `yaml:"group_by"`
	Reduce  string `yaml:"reduce"`
	Op      string `yaml:"op"`
	TopK    int    `yaml:"top_k"`
	Order   string `yaml:"order"`
	Integer bool   `yaml:"integer"`
}

type panelFile struct {
	Panels []Panel `yaml:"panels"`
}

// LoadPanels reads panel definitions from path, or the built-in set when
// path is empty.
func LoadPanels(path string) ([]Panel, error) {
	if path == "" {
		return ParsePanels(defaultPanels)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("panels: read %q: %w", path, err)
	}
	return ParsePanels(data)
}

// ParsePanels decodes and validates a YAML panel document.
func ParsePanels(data []byte) ([]Panel, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f panelFile
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("panels: decode: %w", err)
	}
	if len(f.Panels) == 0 {
		return nil, errors.New("panels: no panels defined")
	}

	for i := range f.Panels {
		p := &f.Panels[i]
		if p.Kind == "" {
			p.Kind = KindAggregate
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("panels: #%d %q: %w", i+1, p.Title, err)
		}
	}
	return f.Panels, nil
}

// Validate checks the panel against the listing schema.
func (p Panel) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("title is required")
	}
	switch p.Kind {
	case KindAggregate:
		req, err := p.Request()
		if err != nil {
			return err
		}
		return req.Validate()
	case KindSummary:
		if _, ok := engine.KindOf(p.GroupBy); !ok {
			return fmt.Errorf("group_by: %w: %q", engine.ErrInvalidColumn, p.GroupBy)
		}
		if k, ok := engine.KindOf(p.Reduce); !ok || k != engine.Numeric {
			return fmt.Errorf("reduce: %w: %q must be numeric", engine.ErrInvalidColumn, p.Reduce)
		}
		return nil
	default:
		return fmt.Errorf("unknown kind %q", p.Kind)
	}
}

// Request converts an aggregate panel into an engine request.
func (p Panel) Request() (engine.AggregationRequest, error) {
	op, err := engine.ParseReduceOp(p.Op)
	if err != nil {
		return engine.AggregationRequest{}, err
	}
	dir, err := engine.ParseSortDirection(p.Order)
	if err != nil {
		return engine.AggregationRequest{}, err
	}
	return engine.AggregationRequest{
		GroupBy:   p.GroupBy,
		Reduce:    p.Reduce,
		Op:        op,
		TopK:      p.TopK,
		Direction: dir,
	}, nil
}
