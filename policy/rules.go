package policy

import (
	"sort"
	"strings"

	"github.com/blogapp/blogauth"
)

// Requirement is what a route demands from the caller. The zero value is
// not meaningful; use the constructors.
type Requirement struct {
	public     bool
	capability string
}

// Public allows any caller, authenticated or not.
func Public() Requirement { return Requirement{public: true} }

// Authenticated requires a resolved identity but no particular capability.
func Authenticated() Requirement { return Requirement{} }

// RequireCapability requires a resolved identity carrying the named
// capability, e.g. "ADMIN".
func RequireCapability(name string) Requirement { return Requirement{capability: name} }

// Rule binds a path pattern to a requirement. A pattern ending in "/" is a
// prefix rule; any other pattern matches the path exactly. An empty Methods
// list matches every method.
type Rule struct {
	Pattern     string
	Methods     []string
	Requirement Requirement
}

func (r Rule) isPrefix() bool { return strings.HasSuffix(r.Pattern, "/") }

func (r Rule) matchesMethod(method string) bool {
	if len(r.Methods) == 0 {
		return true
	}
	for _, m := range r.Methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// Reason explains a denial.
type Reason int

const (
	// ReasonNone accompanies allowed decisions.
	ReasonNone Reason = iota
	// ReasonUnauthenticated means the route needs an identity and the
	// request has none. Maps to 401.
	ReasonUnauthenticated
	// ReasonInsufficientCapability means the caller is authenticated but
	// lacks the required capability. Maps to 403.
	ReasonInsufficientCapability
)

// Decision is the outcome of evaluating one request against the table.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Table is an immutable, declarative route policy. Exact rules win over
// prefix rules; among prefix rules the longest matching pattern wins; a
// path no rule covers requires authentication. Build once at startup and
// share across requests.
type Table struct {
	exact    map[string][]Rule
	prefixes []Rule
}

// NewTable compiles the rule list. Rule order only breaks ties between
// rules with the same pattern.
func NewTable(rules []Rule) *Table {
	t := &Table{exact: make(map[string][]Rule)}
	for _, r := range rules {
		if r.isPrefix() {
			t.prefixes = append(t.prefixes, r)
			continue
		}
		t.exact[r.Pattern] = append(t.exact[r.Pattern], r)
	}
	sort.SliceStable(t.prefixes, func(i, j int) bool {
		return len(t.prefixes[i].Pattern) > len(t.prefixes[j].Pattern)
	})
	return t
}

// Evaluate decides whether the request may proceed. A nil identity means
// the request is unauthenticated.
func (t *Table) Evaluate(id *blogauth.Identity, method, path string) Decision {
	req, found := t.lookup(method, path)
	if !found {
		// Fail closed: uncovered routes require authentication.
		req = Authenticated()
	}
	return decide(req, id)
}

func (t *Table) lookup(method, path string) (Requirement, bool) {
	for _, r := range t.exact[path] {
		if r.matchesMethod(method) {
			return r.Requirement, true
		}
	}
	for _, r := range t.prefixes {
		if strings.HasPrefix(path, r.Pattern) && r.matchesMethod(method) {
			return r.Requirement, true
		}
	}
	return Requirement{}, false
}

func decide(req Requirement, id *blogauth.Identity) Decision {
	if req.public {
		return Decision{Allowed: true}
	}
	if id == nil {
		return Decision{Reason: ReasonUnauthenticated}
	}
	if req.capability != "" && !id.HasCapability(req.capability) {
		return Decision{Reason: ReasonInsufficientCapability}
	}
	return Decision{Allowed: true}
}
