// Package clips surfaces the workspace's generated clips grouped by
// pipeline progress. The backend exposes three views: clips awaiting a
// transcript, transcribed clips awaiting sub-clip extraction, and the
// full catalog. The first two views carry longform and shortform counts.
package clips
