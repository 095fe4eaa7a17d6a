// Package jwt issues and verifies the signed session tokens carried on API
// requests. Tokens are compact HS256 JWTs with an access/refresh kind marker;
// no claim is trusted before the signature verifies.
package jwt
