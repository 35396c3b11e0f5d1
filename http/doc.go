// Package http provides the HTTP API of the bucketgate upload gateway.
//
// # Routes
//
//   - GET /: health check returning "OK", no authentication
//   - GET /buckets: buckets whose identity whitelist contains the caller (token only)
//   - POST /upload: multipart upload (file, path, fileName, overwrite, bucket)
//
// # Authentication
//
// Every route except the health check requires "Authorization: Bearer <token>".
// Uploads also require an identity header (X-User-Id by default) that is on the
// target bucket's whitelist. AuthMiddleware runs the access checks and stores
// the allowed decision in the request context; handlers obtain the bucket
// configuration only from that decision.
//
// The bucket name is read from the configured sources in order (query string,
// then form field, by default), falling back to the default bucket.
//
// # Responses
//
// Successful uploads return {"success": true, "url": ..., "fileName": ...}.
// Errors return {"success": false, "error": <code>, "message": <text>} with:
//
//	400 invalid input         401 missing or invalid token, missing identity
//	403 not whitelisted, path not allowed
//	409 object exists         413 body too large
//	500 configuration or backend error
//	503 authentication or whitelist not configured
package http
