// Package textutil provides the small text helpers shared by the downloader,
// combiner, and quiz generator.
//
// The primary use cases are:
//   - Deriving the deterministic folder hash for a video or playlist title
//   - Sanitizing user-supplied names before they become file names
//   - Normalizing caption lines and display labels
//
// Folder hashes are the first ten hex characters of the MD5 digest of the
// UTF-8 title. The hash is an identifier, not a security boundary, and must
// stay stable across releases so existing download folders are reused.
package textutil
