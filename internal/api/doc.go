// Package api provides the HTTP client for the posts/comments service.
//
// # Endpoints
//
// All paths are resolved against the configured base URL (default
// http://127.0.0.1:8000/api/):
//
//	GET    posts                  -> {"posts":[{"id","link","comments":[...]}]}
//	POST   posts                  {"link"} -> post
//	PUT    posts/{id}             {"link"} -> post
//	DELETE posts/{id}
//	POST   posts/{id}/comments    {"link"} -> comment
//	PUT    comments/{id}          {"link"} -> comment
//	DELETE comments/{id}
//
// # Error Handling
//
// Every call issues exactly one request and never retries. Failures come back
// in three shapes:
//
//   - transport errors, wrapped as "execute request: ..."
//   - server rejections, returned as *StatusError (see IsNotFound, IsRejected)
//   - malformed bodies, wrapped as "decode response: ..."
//
// Timeouts are owned by the underlying http.Client (WithTimeout).
//
// # Tracing
//
// Each request carries an X-Request-ID header. The same id is attached to the
// debug log line written through the logger passed with WithLogger, so client
// logs can be matched against server logs.
package api
