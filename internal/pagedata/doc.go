// Package pagedata composes the data-loading callbacks of a page request.
//
// A Resolver turns a request into an Events bundle: optional app-level and
// page-level setup producers, an optional not-found probe and the handle of
// the route that matched. Orchestrate returns a Loader that runs the right
// producers for that handle and captures every producer failure as data, so
// the render layer always receives a Result instead of an error.
package pagedata
