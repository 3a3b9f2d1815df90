// Package recon provides a middleware serving node diagnostics from a
// JSON cache file under GET /recon/<metric>.
//
// Background processes drop their telemetry (replication timestamps,
// audit stats, sync progress) into the cache file as a flat JSON
// object; the middleware reads it per request, so the endpoint always
// reflects the latest drop without coordination. Requests outside
// /recon/ pass through.
package recon
