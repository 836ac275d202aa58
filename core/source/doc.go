// Package source opens snapshot streams for the parsers.
//
// A snapshot is addressed by a Location: a local path, or an object key in
// the configured MinIO/S3 bucket (written as s3://bucket/key). Zip archives are
// opened transparently; the member to read is chosen by a Selector supplied
// by the format package (arinc.SelectMember, openair.SelectMember,
// ofmx.SelectMember).
//
// Bucket archives are buffered in memory before being read as zip, bounded
// by Config.MaxArchiveMB.
package source
