// Package adapter defines the pluggable model adapter contract, including the
// Adapter, Descriptor, Payload and Output types shared by every adapter, the
// typed load/run errors, and the ordered Registry the coordinator looks
// adapters up in.
package adapter
