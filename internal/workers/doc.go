// Package workers sizes concurrency bounds for containerized deployments.
//
// Under cgroup CPU limits, runtime.NumCPU() still reports the host's CPU
// count; GOMAXPROCS (Go 1.19+) reflects the actual limit. The helpers here
// derive pipeline and extraction slot counts from GOMAXPROCS so a pod with
// 2 cores does not try to run 64 ffmpeg processes at once.
package workers
