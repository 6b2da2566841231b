package embedding

import "errors"

var (
	// ErrIncompatibleSpaces is returned when two spaces do not share the leaf
	// factors or scalar field an embedding needs.
	ErrIncompatibleSpaces = errors.New("embedding: incompatible spaces")

	// ErrNotEmbeddable is returned by Verify when the domain's tensors are not
	// reproduced by the codomain representation.
	ErrNotEmbeddable = errors.New("embedding: domain is not a subspace of codomain")

	// ErrNotAdjoint is returned by Verify when embedding and co-embedding are
	// not transposes of each other.
	ErrNotAdjoint = errors.New("embedding: co-embedding is not the transpose of the embedding")
)
