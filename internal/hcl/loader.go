package hcl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/nodegridgo/internal/conversion"
	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/fsutil"
	"github.com/vk/nodegridgo/internal/memgraph"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ErrDuplicateGraph is returned when two graph blocks share an ID.
var ErrDuplicateGraph = errors.New("duplicate graph")

// Loader turns graph files into memgraph graphs using the node kinds of a
// registry.
type Loader struct {
	registry *registry.Registry
}

// NewLoader creates a loader building nodes from r.
func NewLoader(r *registry.Registry) *Loader {
	return &Loader{registry: r}
}

// Load parses every .hcl file under paths. Directories are walked
// recursively; paths that do not exist are skipped. Graphs are returned in
// file order.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*memgraph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	var graphs []*memgraph.Graph
	seen := make(map[string]string)
	for _, file := range files {
		f, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		found, err := l.decode(ctx, file, f)
		if err != nil {
			return nil, err
		}
		for _, g := range found {
			if prev, ok := seen[g.ID()]; ok {
				return nil, fmt.Errorf("graph %q in %s was already defined in %s: %w", g.ID(), file, prev, ErrDuplicateGraph)
			}
			seen[g.ID()] = file
			graphs = append(graphs, g)
		}
	}

	logger.Debug("HCL loading complete.", "graphs", len(graphs))
	return graphs, nil
}

// Parse loads the graphs of a single in-memory file.
func (l *Loader) Parse(ctx context.Context, filename string, src []byte) ([]*memgraph.Graph, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return l.decode(ctx, filename, f)
}

func (l *Loader) decode(ctx context.Context, filename string, f *hcl.File) ([]*memgraph.Graph, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	graphs := make([]*memgraph.Graph, 0, len(root.Graphs))
	ids := make(map[string]struct{}, len(root.Graphs))
	for _, gb := range root.Graphs {
		if _, ok := ids[gb.ID]; ok {
			return nil, fmt.Errorf("graph %q in %s: %w", gb.ID, filename, ErrDuplicateGraph)
		}
		ids[gb.ID] = struct{}{}

		g, err := l.buildGraph(ctx, gb)
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", filename, err)
		}
		graphs = append(graphs, g)
	}
	return graphs, nil
}

func (l *Loader) buildGraph(ctx context.Context, gb *graphBlock) (*memgraph.Graph, error) {
	logger := ctxlog.FromContext(ctx).With("graph_id", gb.ID)
	g := memgraph.New(gb.ID)

	for _, nb := range gb.Nodes {
		n, err := l.buildNode(ctx, nb)
		if err != nil {
			return nil, fmt.Errorf("graph %q, node %q: %w", gb.ID, nb.ID, err)
		}
		if err := g.Add(n); err != nil {
			return nil, err
		}
	}

	for _, lb := range gb.Links {
		fromNode, fromSocket, err := parseRef(lb.From)
		if err != nil {
			return nil, fmt.Errorf("graph %q, link from: %w", gb.ID, err)
		}
		toNode, toSocket, err := parseRef(lb.To)
		if err != nil {
			return nil, fmt.Errorf("graph %q, link to: %w", gb.ID, err)
		}
		if err := g.Connect(fromNode, fromSocket, toNode, toSocket); err != nil {
			return nil, fmt.Errorf("graph %q, link %s -> %s: %w", gb.ID, lb.From, lb.To, err)
		}
		if lb.Muted {
			if err := g.SetMuted(toNode, toSocket, true); err != nil {
				return nil, err
			}
		}
	}

	logger.Debug("Graph built.", "nodes", len(gb.Nodes), "links", len(gb.Links))
	return g, nil
}

func (l *Loader) buildNode(ctx context.Context, nb *nodeBlock) (node.Node, error) {
	typ, err := typeExprToCtyType(ctx, nb.Type)
	if err != nil {
		return nil, fmt.Errorf("type: %w", err)
	}

	settings := cty.NullVal(cty.DynamicPseudoType)
	if isExprDefined(nb.Settings) {
		v, diags := nb.Settings.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid settings: %w", diags)
		}
		settings = v
	}

	n, err := l.registry.NewNode(nb.ID, nb.Kind, typ, settings)
	if err != nil {
		return nil, err
	}

	for _, ib := range nb.Inputs {
		if err := applyInput(n, ib); err != nil {
			return nil, fmt.Errorf("input %q: %w", ib.Name, err)
		}
	}
	return n, nil
}

// applyInput applies the overrides of an input block to the matching
// socket of n.
func applyInput(n node.Node, ib *inputBlock) error {
	var socket *node.Socket
	for _, s := range n.Inputs() {
		if s.Identifier == ib.Name {
			socket = s
			break
		}
	}
	if socket == nil {
		return fmt.Errorf("kind %q has no such input: %w", n.Kind(), memgraph.ErrSocketNotFound)
	}

	policy, err := conversion.ParsePolicy(ib.Policy)
	if err != nil {
		return err
	}
	socket.WithPolicy(policy)

	if !isExprDefined(ib.Default) {
		return nil
	}
	v, diags := ib.Default.Value(nil)
	if diags.HasErrors() {
		return fmt.Errorf("invalid default value: %w", diags)
	}
	v, err = convert.Convert(v, socket.Type)
	if err != nil {
		return fmt.Errorf("default value does not fit %s: %w", socket.Type.FriendlyName(), err)
	}
	socket.WithDefault(v)
	return nil
}

// parseRef splits "node.socket".
func parseRef(ref string) (string, string, error) {
	n, s, ok := strings.Cut(ref, ".")
	if !ok || n == "" || s == "" {
		return "", "", fmt.Errorf("socket reference %q must look like node.socket", ref)
	}
	return n, s, nil
}
