package session

import (
	"context"
	"fmt"
)

// Store holds per-user transient pipeline state. Entries have no TTL: they
// live until the owning flow deletes them explicitly. Concurrent writers for
// the same key race and the last writer for each field wins; flows must
// validate presence of all required keys before acting on an entry.
type Store interface {
	Set(ctx context.Context, scopeKey string, fields map[string]string) error
	Get(ctx context.Context, scopeKey string) (map[string]string, error)
	Delete(ctx context.Context, scopeKeys ...string) error
}

// Scope keys are namespaced by purpose and user id so a user has exactly one
// in-flight generation pipeline per stage.

func OptionKey(userID int64) string { return fmt.Sprintf("option:%d", userID) }
func DraftKey(userID int64) string  { return fmt.Sprintf("draft:%d", userID) }
func MoralsKey(userID int64) string { return fmt.Sprintf("morals:%d", userID) }
