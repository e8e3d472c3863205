package rest

import "fmt"

// Route identifies one endpoint call: the concrete request path plus the
// stable signature the rate limiter keys bucket lookups on. Two calls share
// limiter state when they share the path template and the major parameter,
// even while their minor parameters (message ids and the like) differ.
type Route struct {
	// Method is the HTTP method.
	Method string

	// Template is the path with fmt verbs in place of parameters,
	// e.g. "/channels/%s/messages/%s".
	Template string

	// Major is the path parameter that can split otherwise identical
	// endpoints into different buckets: channel, guild or webhook id.
	// Empty for endpoints without one.
	Major string

	// Path is the concrete request path with all parameters filled in.
	Path string
}

// NewRoute builds a route from a method, a path template and its parameter
// values. major must also appear in args when the template contains it.
func NewRoute(method, template, major string, args ...any) Route {
	return Route{
		Method:   method,
		Template: template,
		Major:    major,
		Path:     fmt.Sprintf(template, args...),
	}
}

// Signature returns the route's rate limit identity.
func (r Route) Signature() string {
	return r.Method + " " + r.Template + ":" + r.Major
}

// String formats the route for logs.
func (r Route) String() string {
	return r.Method + " " + r.Path
}
