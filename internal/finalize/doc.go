// Package finalize assembles an approved project's segments into the final
// narrated video.
//
// Assembly only starts once every segment has passed its review gate. All
// intermediate artifacts are produced in a staging directory and the final
// video lands at its destination in a single rename, so a failed run never
// leaves a partial final video behind. The assembled duration is verified
// against the project's target before the project is marked complete.
package finalize
