// Package password hashes and verifies account secrets with argon2id,
// encoded in PHC string format so parameters travel with each hash.
package password
