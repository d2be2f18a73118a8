package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/ziptree/pkg/ziptree"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds each seed's graph position to its label.
	// When false, only the seed index is shown.
	Detailed bool

	// HideUnreachable drops dashed edges whose distance is unreachable.
	HideUnreachable bool
}

// ToDOT converts an encoded seed tree to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Chains become clusters with solid borders and snarls become clusters with
// dashed borders holding two point nodes for their bounds. Edges carry the
// distances stored in the tree.
func ToDOT(t *ziptree.Tree, opts Options) string {
	r := &renderer{t: t, opts: opts}
	r.line("digraph G {")
	r.depth++
	r.line("rankdir=LR;")
	r.line(`bgcolor="transparent";`)
	r.line(`node [shape=box, style="rounded,filled", fillcolor=white, fontsize=14];`)
	r.line("edge [fontsize=11];")
	r.line("compound=true;")
	for r.pos < t.Len() {
		r.chain()
	}
	r.depth--
	r.line("}")
	return r.buf.String()
}

// renderer walks the item sequence once, mirroring its bracket nesting
// with DOT clusters. Trees are validated on construction, so the walk
// assumes balanced brackets.
type renderer struct {
	t     *ziptree.Tree
	opts  Options
	buf   bytes.Buffer
	pos   int
	depth int

	chains int
	snarls int
}

// span is what a chain exposes to its enclosing snarl.
type span struct {
	first, last string
	lead, trail ziptree.Distance
}

func (r *renderer) line(format string, args ...any) {
	r.buf.WriteString(strings.Repeat("  ", r.depth))
	fmt.Fprintf(&r.buf, format, args...)
	r.buf.WriteByte('\n')
}

func (r *renderer) next() ziptree.Item {
	it := r.t.Item(r.pos)
	r.pos++
	return it
}

// chain renders the chain starting at the current position.
func (r *renderer) chain() span {
	r.next() // [
	id := r.chains
	r.chains++
	r.line("subgraph cluster_c%d {", id)
	r.depth++
	r.line(`label="chain %d"; style=rounded; color=grey40;`, id)

	var sp span
	var gap ziptree.Distance
	pending := false
	link := func(in, out string) {
		switch {
		case sp.first == "":
			sp.first = in
			if pending {
				sp.lead = gap
			}
		case pending:
			r.edge(sp.last, in, gap, false)
		}
		sp.last = out
		pending = false
	}

	for {
		it := r.t.Item(r.pos)
		switch it.Kind {
		case ziptree.ItemEdge:
			gap, pending = it.Value, true
			r.pos++
		case ziptree.ItemSeed:
			node := r.seed(it.Seed())
			link(node, node)
			r.pos++
		case ziptree.ItemSnarlStart:
			in, out := r.snarl()
			link(in, out)
		case ziptree.ItemChainEnd:
			r.pos++
			if pending {
				sp.trail = gap
			}
			r.depth--
			r.line("}")
			return sp
		case ziptree.ItemSnarlEnd, ziptree.ItemChainStart, ziptree.ItemSiblingCount:
			// Not reachable in a validated tree.
			r.pos++
		}
	}
}

// snarl renders the snarl starting at the current position and returns
// the ids of its bound nodes.
func (r *renderer) snarl() (in, out string) {
	r.next() // (
	id := r.snarls
	r.snarls++
	in, out = fmt.Sprintf("b%d_start", id), fmt.Sprintf("b%d_end", id)
	r.line("subgraph cluster_b%d {", id)
	r.depth++
	r.line(`label="snarl %d"; style=dashed; color=grey60;`, id)
	r.line(`%q [shape=point, width=0.08];`, in)
	r.line(`%q [shape=point, width=0.08];`, out)

	var children []span
	var edges []ziptree.Distance
	for {
		it := r.next()
		switch it.Kind {
		case ziptree.ItemEdge:
			edges = append(edges, it.Value)
		case ziptree.ItemChainStart:
			r.pos--
			sp := r.chain()
			// edges: nearest earlier sibling first, snarl start last.
			r.edge(in, sp.first, ziptree.Sum(edges[len(edges)-1], sp.lead), false)
			for j, d := range edges[:len(edges)-1] {
				prev := children[len(children)-1-j]
				r.edge(prev.last, sp.first, d, true)
			}
			children = append(children, sp)
			edges = edges[:0]
		case ziptree.ItemSiblingCount:
			// edges: last chain first, then the snarl length.
			for j, d := range edges[:len(edges)-1] {
				sp := children[len(children)-1-j]
				r.edge(sp.last, out, ziptree.Sum(sp.trail, d), false)
			}
			r.edge(in, out, edges[len(edges)-1], true)
		case ziptree.ItemSnarlEnd:
			r.depth--
			r.line("}")
			return in, out
		case ziptree.ItemSeed, ziptree.ItemChainEnd, ziptree.ItemSnarlStart:
			// Not reachable in a validated tree.
		}
	}
}

func (r *renderer) seed(i int) string {
	node := "s" + strconv.Itoa(i)
	label := node
	if r.opts.Detailed {
		label += "\n" + r.t.Seed(i).Pos.String()
	}
	r.line("%q [label=%q];", node, label)
	return node
}

func (r *renderer) edge(from, to string, d ziptree.Distance, dashed bool) {
	if !d.Reachable() && r.opts.HideUnreachable {
		return
	}
	attrs := []string{fmt.Sprintf("label=%q", d.String())}
	if dashed {
		attrs = append(attrs, "style=dashed", "constraint=false", "arrowhead=none")
	}
	if !d.Reachable() {
		attrs = append(attrs, "color=grey70", "fontcolor=grey50")
	}
	r.line("%q -> %q [%s];", from, to, strings.Join(attrs, ", "))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg tag so the drawing scales from the
// origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
