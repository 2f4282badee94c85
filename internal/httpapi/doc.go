// Package httpapi exposes the review surface over HTTP: project and segment
// status, the two approval gates, and segment recovery actions.
//
// The API is a thin layer over the orchestrator; it holds no state of its
// own. A websocket endpoint streams status snapshots so review UIs can follow
// generation progress without polling.
package httpapi
