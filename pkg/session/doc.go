/*
Package session manages persisted runs.

It serializes access to each run ID (in-process mutexes plus an optional
distributed lock), starts runs, resumes them from their stored snapshot and
persists the outcome so a suspended computation can be picked up later.
*/
package session
