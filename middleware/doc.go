// Package middleware provides net/http adapters for the authentication
// engine: a silent token filter that attaches identities to request
// contexts, and a policy-table authorizer that turns missing or
// insufficient identity into 401/403 responses.
package middleware
