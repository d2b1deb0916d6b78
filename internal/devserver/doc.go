// Package devserver is an in-memory implementation of the posts/comments REST
// API. It backs the boardd development binary and the client integration
// tests; nothing is persisted.
package devserver
