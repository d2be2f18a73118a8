// Package io reads and writes workload files: a snarl decomposition plus a
// seed set, in TOML or JSON.
//
// # Overview
//
// A workload is a [snarl.Model]. The same document drives the CLI, the
// HTTP server and the tests, so every tool sees one format:
//
//	name = "demo"
//
//	[[node]]
//	id = 1
//	length = 4
//
//	[[node]]
//	id = 2
//	length = 6
//
//	[[chain]]
//	name = "chr1"
//	root = true
//	children = ["n1", "n2"]
//
//	[[seed]]
//	node = 2
//	offset = 3
//
// # Fields
//
// Chain children reference nodes as "n<id>" and bubbles by name. Bubbles
// carry a kind ("simple" or "complex"), their length and their child
// chains in rank order. Complex bubbles may list distances between ranks;
// distances are integers or the string "inf".
//
// # Import
//
// Use [ImportFile] to read a file (the extension selects the format), or
// [ReadTOML] and [ReadJSON] to read from any io.Reader:
//
//	m, err := io.ImportFile("workload.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Every reader compiles the decomposition and resolves the seeds before
// returning, so a model returned without error builds. Unknown keys are
// rejected. Errors are wrapped with context naming the offending entry.
//
// # Export
//
// [ExportFile], [WriteTOML] and [WriteJSON] write a model back out; the
// result re-imports to an equal model.
//
// [snarl.Model]: github.com/matzehuels/ziptree/pkg/snarl.Model
package io
