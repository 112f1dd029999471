// Package library owns the on-disk layout of downloaded subtitles.
//
// The subtitles root holds a global mapping.json (folder hash to source
// title and type) and one folder per video or playlist. Each folder carries a
// video_mapping.json (order to video id and title). Updates are serialized
// with an advisory lock beside the mapping file and committed atomically.
package library
