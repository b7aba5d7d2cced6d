// Package resources contains the thin data-shaping wrappers over the request
// core: tasks, projects, time intervals, screenshots, time summaries, and
// company settings. Each module is a pure representation function plus fixed
// endpoint calls; retry, auth, and URL logic live in the requester.
package resources
