// Package badgerkv provides a keyvalue.Map backed by an embedded BadgerDB.
//
// Each logical path owns two keys: "m:<path>" holds the JSON encoded record
// and "c:<path>" holds file content. Both are written in one transaction, so
// readers never observe a record without its content.
//
// Badger orders keys byte-wise, which makes Scan a single prefix iteration
// over the "m:" keyspace.
//
// A transaction is bounded by the memtable size, so very large files are
// better served by the filesystem or S3 backends.
package badgerkv
