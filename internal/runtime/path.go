package runtime

import "github.com/aretw0/arbor/pkg/domain"

// path is the chain of keys from the root to the node being visited.
// It is immutable: siblings share their parent's path and extend it with
// push, so no branch ever observes another branch's visits.
type path struct {
	key    domain.NodeKey
	parent *path
}

func (p *path) push(key domain.NodeKey) *path {
	return &path{key: key, parent: p}
}

func (p *path) contains(key domain.NodeKey) bool {
	for n := p; n != nil; n = n.parent {
		if n.key == key {
			return true
		}
	}
	return false
}
