package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lineup/pkg/errors"
	"github.com/matzehuels/lineup/pkg/model"
)

type parent interface {
	Children() []model.Column
	Collapsed() bool
}

type weightedParent interface {
	Weight(child model.Column) float64
}

// TreeDOT returns a Graphviz DOT representation of the column tree of r.
//
// Composite columns are boxes with an edge to each child, labeled with the
// child's weight when the composite is weighted. Leaves are rounded boxes.
// Hidden columns are dashed, the sort column is bold and collapsed
// composites are filled gray.
func TreeDOT(r *model.Ranking) string {
	var buf bytes.Buffer
	buf.WriteString("digraph Ranking {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, style=filled, fillcolor=white];\n")
	buf.WriteString("  edge [arrowhead=none];\n\n")
	buf.WriteString("  root [label=\"ranking\", shape=plaintext, style=\"\"];\n")

	sorted := r.SortCriterion().Column
	next := 0
	for _, c := range r.Columns() {
		fmt.Fprintf(&buf, "  root -> n%d;\n", next)
		next = writeDOTNode(&buf, c, next, sorted)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeDOTNode(buf *bytes.Buffer, c model.Column, id int, sorted model.Column) int {
	nodeID := "n" + strconv.Itoa(id)
	next := id + 1

	var styles []string
	if !c.Visible() {
		styles = append(styles, "dashed")
	}
	if c == sorted {
		styles = append(styles, "bold")
	}
	label := escape(c.Title()) + "\\n" + string(c.Kind())

	p, ok := c.(parent)
	if !ok {
		styles = append(styles, "filled", "rounded")
		fmt.Fprintf(buf, "  %s [label=\"%s\", shape=box, style=%q];\n", nodeID, label, strings.Join(styles, ","))
		return next
	}

	styles = append(styles, "filled")
	fill := "white"
	if p.Collapsed() {
		fill = "gray90"
	}
	fmt.Fprintf(buf, "  %s [label=\"%s\", shape=box, style=%q, fillcolor=%s];\n", nodeID, label, strings.Join(styles, ","), fill)
	w, weighted := c.(weightedParent)
	for _, ch := range p.Children() {
		if weighted {
			fmt.Fprintf(buf, "  %s -> n%d [label=%q];\n", nodeID, next, strconv.FormatFloat(w.Weight(ch), 'g', 3, 64))
		} else {
			fmt.Fprintf(buf, "  %s -> n%d;\n", nodeID, next)
		}
		next = writeDOTNode(buf, ch, next, sorted)
	}
	return next
}

// escape quotes s for use inside a double-quoted DOT label.
func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// RenderSVG renders a DOT document as SVG with Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return buf.Bytes(), nil
}
