// Package middleware groups the HTTP middleware of the Fiber application.
//
// # Components
//
//   - rayid: assigns every request an id (kept from the X-Ray-ID header when sent),
//     stores it for logger.WithRayID and echoes it in the response.
package middleware
