// Package auth implements password hashing and the bearer tokens the HTTP
// layer authenticates with.
package auth
