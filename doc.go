// Package federation implements federated login for numeric account
// identities: provider assertions are linked to local accounts, sessions
// travel as stateless HS256 JWTs in a cookie, and every request resolves
// to an explicit authenticated or anonymous outcome.
package federation
