/*
Package session serializes access to stored documents.

A Manager wraps a DocumentStore with per-key mutexes so that a project or
pose is never saved and loaded at the same time from one process. A
DistributedLocker extends the same guarantee across processes sharing a
backend such as Redis.
*/
package session
