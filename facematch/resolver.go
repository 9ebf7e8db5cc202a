package facematch

import (
	"context"
	"log"

	"github.com/kirtilabs/kirti/interfaces"
)

// Resolver walks the reference images in order and returns the first one
// the comparer accepts. A comparison failure against one reference is
// logged and skipped so a single bad image cannot block everyone else.
type Resolver struct {
	refs     *RefStore
	comparer interfaces.FaceComparer
}

// NewResolver builds a resolver over the reference store and comparer.
func NewResolver(refs *RefStore, comparer interfaces.FaceComparer) *Resolver {
	return &Resolver{refs: refs, comparer: comparer}
}

// Resolve maps the probe frame to a reference, or interfaces.ErrNoMatch.
func (r *Resolver) Resolve(ctx context.Context, probe []byte) (Reference, error) {
	refs, err := r.refs.List()
	if err != nil {
		return Reference{}, err
	}
	if len(refs) == 0 {
		log.Println("[FACEMATCH] no reference images found")
		return Reference{}, interfaces.ErrNoMatch
	}

	for _, ref := range refs {
		data, err := r.refs.Read(ref)
		if err != nil {
			log.Printf("[FACEMATCH] could not read reference %s: %v", ref.Filename, err)
			continue
		}

		similarity, ok, err := r.comparer.Compare(ctx, data, probe)
		if err != nil {
			log.Printf("[FACEMATCH] comparing with %s: %v", ref.PersonID, err)
			continue
		}
		if ok {
			log.Printf("[FACEMATCH] matched %s (similarity %.1f)", ref.PersonID, similarity)
			return ref, nil
		}
	}
	return Reference{}, interfaces.ErrNoMatch
}
