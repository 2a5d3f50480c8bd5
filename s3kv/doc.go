// Package s3kv provides a keyvalue.Map backed by an S3 compatible bucket.
//
// A file is one object named "<prefix><path>". A collection is an empty
// marker object named "<prefix><path>/", the convention most S3 consoles
// use for folders. Object metadata (size and last-modified) comes straight
// from S3, so nothing besides the objects themselves is stored.
package s3kv
