// Package models defines domain entities and persistence interfaces for the msx submission service.
//
// [Submission] is the only persistent entity: one received manuscript upload with its author list
// and optional metadata. It implements [Model], providing ID assignment, timestamps, validation,
// and soft delete support. The [Repository] interface defines standard CRUD operations for database access.
package models
