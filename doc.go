/*
Package arbor is a read-only exploration engine for branching game dialogue.

It turns a relational dialogue dataset (entries, links, skill checks and
alternate lines) into answers a writer or tool can use: the conversation tree
hanging off any line, the outcomes a skill check leads to, and flat lookups of
actors and lines.

# Concept

A dialogue graph is cyclic: conversations loop back on themselves and hubs
are reachable from many places. Arbor materializes it as a tree by walking
depth-first and dropping any entry that already sits on its own path, so each
branch is finite and independent branches keep their own copies of shared
entries. Connector entries (text "0") carry the conditions that route a
conversation after a check, which is how outcomes are classified.

Arbor follows a Hexagonal Architecture. The core (internal/runtime) only sees
the ports.GraphDataSource port; SQLite, in-memory fixtures and a Redis cache
are adapters, and the HTTP API, MCP server and CLI are delivery mechanisms
built on the Engine.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/arbor"
		"github.com/aretw0/arbor/pkg/domain"
	)

	func main() {
		eng, err := arbor.New("./dialogue.db")
		if err != nil {
			log.Fatal(err)
		}
		defer eng.Close()

		ctx := context.Background()
		tree, err := eng.Explore(ctx, domain.NodeKey{ConversationID: 1, DialogueID: 1}, 7)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(tree.Size(), "lines reachable")

		outcomes, err := eng.Outcomes(ctx, tree.Key())
		if err != nil {
			log.Fatal(err)
		}
		for _, o := range outcomes {
			fmt.Println(o.OutcomeType, o.Dialogue)
		}
	}

Use WithSource to run against another dataset, such as a YAML fixture loaded
with the memory adapter.
*/
package arbor
