// Package domain holds contracts and sentinel errors shared between layers.
package domain

// KeyPrefix namespaces every Redis key written by the gateway.
const KeyPrefix = "kbridge:"

// DefaultVectorDim is used when the embedding provider does not report
// explicit dimensions in config.
const DefaultVectorDim = 1536
