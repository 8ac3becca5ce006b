// Package api exposes the job queue and collection registry over HTTP.
//
// The server side (NewRouter) wraps any storage.JobStore; the Client type
// implements the same store interfaces against a remote server, so workers
// and CLIs use one code path whether the queue is embedded or remote.
package api
