// Package attendance resolves where people are on a given day and
// reconciles locally edited attendance with the system of record.
//
// Everything here is pure: resolvers take an explicit snapshot of roster,
// leave and authoritative records and never fail. Transport and
// concurrency live in the client, workspace and service subpackages.
package attendance
