// Package catalog provides the immutable knowledge bases for handler queue
// design: the handler catalog and the ordering rule catalog.
//
// This package contains data and lookup operations only. All other internal
// packages import catalog; catalog imports nothing internal. Both knowledge
// bases are initialized as package data before any request is served and are
// never mutated afterward, so they are safe to share across concurrent
// requests without locking.
package catalog
