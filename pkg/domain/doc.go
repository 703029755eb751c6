/*
Package domain contains the core domain models of the Arbor dialogue explorer.

It defines the entities of a branching dialogue dataset and the documents the
engine produces from it. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - DialogueNode: a line of dialogue or a routing connector (text "0").
  - DialogueEdge: a prioritized, directed link between two entries.
  - SkillCheck: a check attached to an entry, with the flag it writes.
  - TreeNode: one visit of an entry inside an explored tree.
  - Outcome: a downstream line correlated with a check's success or failure.
*/
package domain
