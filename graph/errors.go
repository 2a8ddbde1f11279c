package graph

import "errors"

// ErrInvalidEndpoint is returned by AddEdge when an endpoint is nil or was
// created by a different graph.
var ErrInvalidEndpoint = errors.New("graph: edge endpoint does not belong to this graph")
