// Package shapedef loads query definitions from CUE files.
//
// A definition file captures one query shape plus the database and schema
// it targets, so a query built interactively can be saved, versioned, and
// recompiled later. The file format mirrors the shape model field for
// field; unknown aggregate, operator, or join kinds fail the load rather
// than silently degrading.
package shapedef
