// Package treeio converts trees to and from flat element records.
//
// # Overview
//
// A tree is exported as a list of [Element] records, one per node, each
// carrying the node's value and the id of its parent. The root record has no
// parent id. Records are the persistence and transport shape of a tree: they
// are what the CLI writes to disk, what the HTTP API returns and what the
// stores keep.
//
// Ids are derived from values through an id function supplied by the caller.
// For a lossless round-trip the function must be pure, deterministic and
// injective over the tree's values. [Identity] uses the value itself;
// [UUID] derives a name-based UUID from string values.
//
// # JSON Format
//
// The JSON form is an array of records in pre-order:
//
//	[
//	  {"element": "A", "parentId": null},
//	  {"element": "B", "parentId": "A"},
//	  {"element": "C", "parentId": "A"}
//	]
//
// A null or missing parentId marks the root.
//
// # Import
//
// [Import] requires exactly one root record, unique ids and that every
// record is reachable from the root. Children are attached in record order,
// so an exported list re-imports to an identical tree. Use [ImportJSON] to
// read records from a file path, or [ReadJSON] to read from any io.Reader:
//
//	elements, err := treeio.ImportJSON[string, string]("tree.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	root, err := treeio.Import(elements, treeio.Identity[string]())
//
// # Export
//
// [Export] walks the tree in pre-order. Use [ExportJSON] to write records to
// a file, or [WriteJSON] to write to any io.Writer.
package treeio
