// ABOUTME: Graphviz DOT and SVG rendering of a campaign and of a kanban board
// ABOUTME: Campaign graphs show outreach per lead; board graphs show steps and their cards
package viz

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/zala/models"
)

// Graph is rendered DOT and SVG plus what went into it.
type Graph struct {
	DOT   string
	SVG   []byte
	Nodes int
	Edges int
}

// builder counts what it creates so callers need not parse the DOT.
type builder struct {
	g     *cgraph.Graph
	nodes int
	edges int
}

func (b *builder) node(name, label string) (*cgraph.Node, error) {
	n, err := b.g.CreateNodeByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create node %s: %w", name, err)
	}
	n.SetLabel(label)
	b.nodes++
	return n, nil
}

func (b *builder) edge(name string, from, to *cgraph.Node) (*cgraph.Edge, error) {
	e, err := b.g.CreateEdgeByName(name, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to create edge %s: %w", name, err)
	}
	b.edges++
	return e, nil
}

func render(ctx context.Context, label string, lr bool, build func(*builder) error) (Graph, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return Graph{}, fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return Graph{}, fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetLabel(label)
	if lr {
		graph.SetRankDir(cgraph.LRRank)
	}

	b := &builder{g: graph}
	if err := build(b); err != nil {
		return Graph{}, err
	}

	var dot, svg bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &dot); err != nil {
		return Graph{}, fmt.Errorf("failed to render graph: %w", err)
	}
	if err := gv.Render(ctx, graph, graphviz.SVG, &svg); err != nil {
		return Graph{}, fmt.Errorf("failed to render svg: %w", err)
	}
	return Graph{DOT: dot.String(), SVG: svg.Bytes(), Nodes: b.nodes, Edges: b.edges}, nil
}

// CampaignGraph draws the campaign with an edge to each of its leads,
// labelled with the channels already used. leads supplies names and
// addresses; a campaign lead missing from it is drawn by id.
func CampaignGraph(ctx context.Context, camp models.Campaign, leads []models.Lead) (Graph, error) {
	byID := make(map[int]models.Lead, len(leads))
	for _, l := range leads {
		byID[l.LeadID] = l
	}

	return render(ctx, camp.CampaignName, true, func(b *builder) error {
		root, err := b.node(fmt.Sprintf("campaign_%d", camp.CampaignID), camp.CampaignName+"\n(Campaign)")
		if err != nil {
			return err
		}
		root.SetShape("box")
		root.SetStyle("filled")
		root.SetFillColor("lightblue")

		for _, cl := range camp.Leads {
			n, err := b.node(fmt.Sprintf("lead_%d", cl.LeadID), leadLabel(cl.LeadID, byID))
			if err != nil {
				return err
			}
			n.SetShape("ellipse")
			n.SetStyle("filled")
			n.SetFillColor("white")
			if len(cl.ContactMethods) > 0 {
				n.SetFillColor("lightgreen")
			}

			e, err := b.edge(fmt.Sprintf("has_%d", cl.LeadID), root, n)
			if err != nil {
				return err
			}
			if len(cl.ContactMethods) == 0 {
				e.SetLabel("not contacted")
				e.SetStyle("dashed")
				continue
			}
			methods := make([]string, len(cl.ContactMethods))
			for i, m := range cl.ContactMethods {
				methods[i] = string(m)
			}
			e.SetLabel(strings.Join(methods, ", "))
		}
		return nil
	})
}

func leadLabel(id int, byID map[int]models.Lead) string {
	l, ok := byID[id]
	if !ok {
		return fmt.Sprintf("Lead %d", id)
	}
	name := l.Buisness
	if name == "" {
		name = l.Contact.FullName()
	}
	if name == "" {
		name = fmt.Sprintf("Lead %d", id)
	}
	if l.Contact.Email != "" {
		name += "\n" + l.Contact.Email
	}
	return name
}

// BoardGraph draws a board's steps left to right in column order with
// their lead and property cards hanging off each step.
func BoardGraph(ctx context.Context, board models.Board) (Graph, error) {
	steps := slices.Clone(board.Steps)
	slices.SortStableFunc(steps, func(a, b models.BoardStep) int { return a.BoardColumn - b.BoardColumn })

	return render(ctx, board.BoardName, true, func(b *builder) error {
		root, err := b.node(fmt.Sprintf("board_%d", board.BoardID), board.BoardName+"\n(Board)")
		if err != nil {
			return err
		}
		root.SetShape("box")
		root.SetStyle("filled")
		root.SetFillColor("lightblue")

		prev := root
		for _, step := range steps {
			sn, err := b.node(fmt.Sprintf("step_%d", step.BoardStepID), fmt.Sprintf("%d. %s", step.BoardColumn, step.StepName))
			if err != nil {
				return err
			}
			sn.SetShape("folder")
			e, err := b.edge(fmt.Sprintf("next_%d", step.BoardStepID), prev, sn)
			if err != nil {
				return err
			}
			e.SetStyle("bold")
			prev = sn

			for _, lead := range step.Leads {
				ln, err := b.node(fmt.Sprintf("lead_%d", lead.LeadID), lead.Title())
				if err != nil {
					return err
				}
				ln.SetShape("ellipse")
				ln.SetStyle("filled")
				ln.SetFillColor("lightgreen")
				if _, err := b.edge(fmt.Sprintf("holds_lead_%d", lead.LeadID), sn, ln); err != nil {
					return err
				}
			}
			for _, prop := range step.Properties {
				label := prop.PropertyName
				if prop.Address != nil {
					label += "\n" + prop.Address.OneLine()
				}
				pn, err := b.node(fmt.Sprintf("property_%d", prop.PropertyID), label)
				if err != nil {
					return err
				}
				pn.SetShape("house")
				pn.SetStyle("filled")
				pn.SetFillColor("lightyellow")
				e, err := b.edge(fmt.Sprintf("holds_property_%d", prop.PropertyID), sn, pn)
				if err != nil {
					return err
				}
				e.SetStyle("dotted")
			}
		}
		return nil
	})
}
