// Package media wraps the deterministic ffmpeg/ffprobe primitives the
// orchestrator and finalizer rely on: last-frame extraction, concatenation,
// muxing, duration probing, and audio length conforming.
//
// Every operation is synchronous and produces exactly one output artifact.
// No AI or provider involvement happens here.
package media
