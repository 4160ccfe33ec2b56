// Package alignment generates mapping definitions from column profiles.
//
// A Generator asks the reasoner for the properties applicable to a target
// class, runs the matcher pipeline for every column and keeps the winners
// that reach a minimum confidence. Every decision, including columns left
// unmapped and rejected relationships, is written to an immutable Report
// whose JSON form is versioned by ReportSchemaVersion.
//
// Columns that look like foreign keys, or whose winner is an object
// property, are checked against related record sets. The referenced entity
// name is derived from the column name, the record set with the same
// (singular or plural) name supplies its primary key candidate, and the
// link is accepted only when enough distinct values overlap. Rejected
// candidates stay plain literal mappings.
package alignment
