// Package workflow advances queue jobs through the video pipeline.
//
// The Manager polls the queue, reclaims stale work via heartbeats, and feeds
// jobs into registered stage handlers (scripter, narrator, animator,
// assembler, uploader) while capturing progress and failure metadata. Jobs
// run one at a time; frame order is the film-strip order of the final video,
// so stages never interleave across jobs. Stage failures are classified:
// malformed storyboards and configuration problems park the job in review,
// everything else fails and stays eligible for retry.
package workflow
