package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// ValidateDataset checks a fixture for rows that point nowhere: invalid or
// duplicate keys, links to missing entries, checks and alternates on missing
// entries, and entries flagged with a check that has no check row.
func ValidateDataset(ds domain.Dataset) error {
	var errors []string

	nodes := make(map[domain.NodeKey]domain.DialogueNode, len(ds.Nodes))
	for _, n := range ds.Nodes {
		if err := n.Key.Validate(); err != nil {
			errors = append(errors, fmt.Sprintf("Invalid node key %s: %v", n.Key, err))
			continue
		}
		if _, dup := nodes[n.Key]; dup {
			errors = append(errors, fmt.Sprintf("Duplicate node '%s'", n.Key))
		}
		nodes[n.Key] = n
	}

	for _, e := range ds.Edges {
		if _, ok := nodes[e.Origin]; !ok {
			errors = append(errors, fmt.Sprintf("Link from missing node '%s'", e.Origin))
		}
		if _, ok := nodes[e.Destination]; !ok {
			errors = append(errors, fmt.Sprintf("Missing node '%s' (linked from '%s')", e.Destination, e.Origin))
		}
	}

	checked := make(map[domain.NodeKey]bool, len(ds.Checks))
	for _, c := range ds.Checks {
		checked[c.Key] = true
		if _, ok := nodes[c.Key]; !ok {
			errors = append(errors, fmt.Sprintf("Check on missing node '%s'", c.Key))
		}
	}
	for _, n := range ds.Nodes {
		if n.HasCheck && !checked[n.Key] {
			errors = append(errors, fmt.Sprintf("Node '%s' is flagged with a check but has none", n.Key))
		}
	}

	for _, a := range ds.Alternates {
		if _, ok := nodes[a.Key]; !ok {
			errors = append(errors, fmt.Sprintf("Alternate on missing node '%s'", a.Key))
		}
	}

	return report(errors)
}

// ValidateGraph crawls the graph from start and reports links to entries the
// source does not have.
func ValidateGraph(ctx context.Context, source ports.GraphDataSource, start domain.NodeKey) error {
	if err := start.Validate(); err != nil {
		return err
	}
	root, err := source.GetNode(ctx, start)
	if err != nil {
		return err
	}
	if root == nil {
		return fmt.Errorf("%w: start node '%s'", domain.ErrNodeNotFound, start)
	}

	visited := make(map[domain.NodeKey]bool)
	queue := []domain.NodeKey{start}
	var errors []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		edges, err := source.GetOutboundEdges(ctx, current)
		if err != nil {
			return err
		}
		for _, e := range edges {
			if visited[e.Destination] {
				continue
			}
			node, err := source.GetNode(ctx, e.Destination)
			if err != nil {
				return err
			}
			if node == nil {
				visited[e.Destination] = true
				errors = append(errors, fmt.Sprintf("Missing node '%s' (linked from '%s')", e.Destination, current))
				continue
			}
			queue = append(queue, e.Destination)
		}
	}

	return report(errors)
}

func report(errors []string) error {
	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}
	return nil
}
