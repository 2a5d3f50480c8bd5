// Package keyvalue builds a drivedav.Backend on top of a flat key-value map.
//
// A Map stores one Record per key plus, for files, the content bytes. Keys are
// logical paths. Collections are either stored explicitly (a Record with
// KindCollection) or synthesized: any key with a "p/" prefix makes p a
// collection even when p has no record of its own, so a bucket or table
// filled by other tools still reads as a tree.
//
// # Implementations
//
//   - MemoryMap: in-process map for tests and throwaway servers
//   - database/sqlite, database/postgres: SQL entries table
//   - badgerkv: embedded BadgerDB
//   - s3kv: S3 bucket under a key prefix
package keyvalue
