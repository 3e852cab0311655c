package index

import "errors"

// ErrVectorLengthMismatch indicates two vectors have different dimensions.
var ErrVectorLengthMismatch = errors.New("vector length mismatch")

// ErrModelMismatch indicates the index was built with another embeddings model.
var ErrModelMismatch = errors.New("embeddings model mismatch")
