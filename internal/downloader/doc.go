// Package downloader turns a YouTube video or playlist URL into transcript
// files under the subtitles directory.
//
// A playlist becomes one folder named by the hash of its title with one
// {order}.txt per video; a single video becomes a folder holding
// {video_id}.txt. Each folder gets a video_mapping.json and the global
// mapping.json gains an entry before any video is processed. Per-video
// failures are reported and skipped so one missing caption track never
// aborts a batch.
package downloader
