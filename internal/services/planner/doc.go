// Package planner generates segment-level story plans from a single story
// prompt using an OpenRouter-compatible chat completion API.
//
// The model is asked for strict JSON: per-segment video prompts, narration
// text, and an end-frame description that the next segment continues from.
// Responses are validated against the requested segment count before any
// prompt reaches a project.
package planner
