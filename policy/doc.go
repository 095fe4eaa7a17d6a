// Package policy maps routes to access requirements with a declarative
// rule table evaluated per request.
package policy
