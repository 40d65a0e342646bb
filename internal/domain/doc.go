// Package domain defines the core entities of the quest log engine:
// users, quest logs, memberships, invite tokens, tasks with their status
// lifecycle, comments, stories, and the append-only activity trail.
// Entities are created through New* constructors that validate their
// invariants; persistence concerns live elsewhere.
package domain
