// Package domain implements the event registration state machine: the rules
// that move an entrant between an event's waiting, invited, enrolled and
// cancelled roster sets, the capacity arithmetic that gates those moves, and
// the draw algorithms that pick waiting entrants to invite.
//
// Every mutating operation runs its read-modify-write inside the roster
// store's transaction, so concurrent callers never observe or produce an
// inconsistent roster. Notification and audit emission happens after the
// transaction commits and is best-effort.
package domain
