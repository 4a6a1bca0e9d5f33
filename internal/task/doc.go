// Package task manages background job persistence, processing, and lifecycle.
// Notification requests arrive from the broker faster than email can be sent;
// the runner persists each task before queueing it so work survives restarts,
// and recovers pending or interrupted tasks when it starts.
package task
