// Package workflow runs the background generation loop.
//
// The manager polls the store for projects with generation work, asks the
// orchestrator for the next eligible segment, and advances it. Segments within
// a project are strictly ordered by the frame chain, so the loop only ever
// advances one segment per project at a time; separate projects progress
// independently across iterations.
package workflow
