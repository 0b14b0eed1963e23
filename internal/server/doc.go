// Package server provides HTTP routing, middleware, and the handlers behind the manuscript submission page.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Upload Endpoint
//
// [UploadHandler] accepts the multipart body sent by an upload session: a "file" part carrying the manuscript
// and an "upload_file=true" flag, optionally followed by author/affiliation pairs and submission metadata.
// The bytes go to local storage and a submission record is written to the database.
//
// # Pages
//
// [PageHandler] serves the submission page, the shared "topnav" and "footer" fragments the page loads into
// its layout, and an About page rendered from Markdown.
//
// # Observability
//
// Every request gets an X-Request-Id, an access log line, and Prometheus counters exposed on /metrics.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
