// Package queue persists video-generation jobs in SQLite and defines their
// status lifecycle.
//
// A job travels pending -> scripting -> scripted -> narrating -> narrated ->
// animating -> animated -> assembling -> assembled -> uploading -> completed,
// with failed and review as terminal side exits. The workflow manager claims
// the oldest job whose status has a registered stage and advances it one
// stage at a time; every stage persists its artifacts back onto the job row
// so a retried job can resume from the last completed stage.
package queue
