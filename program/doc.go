// Package program holds the finalized structure of a loaded program.
//
// This package contains:
//   - Declarations: classes, functions, fields, libraries and type parameters
//   - Type uses (class types, type parameter uses, bounded and malformed types)
//   - The host value model (instances, closures, runtime-type values)
//   - A minimal executor that runs function bodies and the noSuchMethod fallback
//
// Declarations are built once and treated as read-only afterwards. The only
// mutation performed after loading is the one-way initialization of static
// field slots.
package program
