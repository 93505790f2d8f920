// Package ancestry classifies how two branches of a repository relate to each
// other.
//
// A Classifier resolves both branch names through a CommitGraph and reports a
// Relationship: both branches point at the same commit, one branch is ahead of
// the other in a straight line, or the branches diverged after a shared commit.
package ancestry
