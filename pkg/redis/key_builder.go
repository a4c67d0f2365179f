package redis

import (
	"fmt"
	"strings"
)

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("bracket:%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

func (kb *KeyBuilder) KeyTournamentLock(tournamentID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyTournamentLock, tournamentID))
}

// KeyRank is case-insensitive on both region and username, as the ranking provider is
func (kb *KeyBuilder) KeyRank(region, username string) string {
	return kb.BuildKey(fmt.Sprintf(KeyRank, strings.ToLower(region), strings.ToLower(username)))
}

func (kb *KeyBuilder) KeyLeague(region, leagueID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyLeague, strings.ToLower(region), leagueID))
}

// KeyCustom builds a key from a custom pattern
func (kb *KeyBuilder) KeyCustom(pattern string, args ...interface{}) string {
	return kb.BuildKey(fmt.Sprintf(pattern, args...))
}
