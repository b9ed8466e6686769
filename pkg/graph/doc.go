// Package graph provides the serialization types of commitgraph.
//
// This package defines the canonical wire format for commit logs and for
// rendered rows, used for JSON files, API responses and cross-tool
// interoperability.
//
// # Architecture
//
// The package sits at the serialization boundary between the engine and
// external formats:
//
//   - [Log], [Commit]: commit streams fed to the engine
//   - [Page], [Row], [Element]: rendered rows served to clients
//   - [ActionRequest], [ActionResponse]: interaction round trips
//   - pkg/core/permanent.Commit: internal commit representation
//   - pkg/visible.RowInfo: internal row representation
//
// Use [Log.PermanentCommits] and [FromRows] to convert between them.
//
// # Log Serialization
//
// Commit logs list commits children first, each with its parents:
//
//	{
//	  "commits": [
//	    {"id": "b2", "parents": ["a1"], "timestamp": 1700000100000},
//	    {"id": "a1", "timestamp": 1700000000000}
//	  ],
//	  "heads": ["b2"]
//	}
//
// Timestamps are Unix milliseconds; zero or absent means unknown.
//
// Common operations:
//
//	l, _ := graph.ReadLogFile("log.json")    // File → Log
//	graph.WriteLogFile(l, "output.json")     // Log → File
//	data, _ := graph.MarshalLog(l)           // Log → []byte
//	commits := l.PermanentCommits()          // Log → engine input
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
