/*
Package router defines what an HTTP server is and a default implementation of it.

A [Router] leverages a standardized data model - a [Route] -
when registering how requests should be routed.
A path and an HTTP method comprise a [Route].
An implementation of [http.Handler] is the function called when a request matches a Route.
Before a request gets to a handler, though,
any middlewares added to the Route are called in the order they appear.

It is often the case that many routes for a web server share identical middleware stacks,
and that small errors can lead to registering a route incorrectly,
thereby unintentionally exposing a resource.
Thus, a [Router] provides conveniences for making a single call to register many logically associated Routes.
The AuthedRoutes and AdminRoutes methods ensure routes are registered behind
the appropriate access checks, consequently.
*/
package router
