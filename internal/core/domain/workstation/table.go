package workstation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"tehbot/internal/core/domain"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

// EnvPrefix marks environment entries that carry a workstation UUID, e.g. PC_UUID_12=<uuid>.
const EnvPrefix = "PC_UUID_"

// Table maps workstation numbers to the UUIDs the club API knows them by. It is read-only
// after New returns and safe for concurrent use.
type Table struct {
	uuids map[int]string
}

// New validates entries and builds the table. Every UUID must parse and no UUID may be
// shared by two numbers.
func New(entries map[int]string) (*Table, error) {
	uuids := make(map[int]string, len(entries))
	owners := make(map[uuid.UUID]int, len(entries))

	for _, n := range sortedKeys(entries) {
		raw := strings.TrimSpace(entries[n])

		if n < 1 {
			return nil, fmt.Errorf("%w: workstation number %d must be positive", domain.ErrInvalidConfig, n)
		}

		id, err := uuid.FromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: workstation %d: %w", domain.ErrInvalidUUID, n, err)
		}

		if other, ok := owners[id]; ok {
			return nil, fmt.Errorf("%w: workstations %d and %d", domain.ErrDuplicateUUID, other, n)
		}

		owners[id] = n
		uuids[n] = raw
	}

	return &Table{uuids: uuids}, nil
}

func (t *Table) Resolve(n int) (string, error) {
	id, ok := t.uuids[n]
	if !ok {
		return "", fmt.Errorf("%w: %d", domain.ErrWorkstationNotFound, n)
	}

	return id, nil
}

func (t *Table) Len() int {
	return len(t.uuids)
}

// FromEnviron collects PC_UUID_<N> entries from a KEY=VALUE list. Malformed keys and empty
// values are skipped with a warning; when the same number shows up twice the later entry wins.
func FromEnviron(environ []string) map[int]string {
	entries := make(map[int]string)

	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}

		n, err := strconv.Atoi(strings.TrimPrefix(key, EnvPrefix))
		if err != nil || n < 1 {
			log.Warn().Str("key", key).Msg("skipping workstation entry with malformed number")
			continue
		}

		value = strings.TrimSpace(value)
		if value == "" {
			log.Warn().Str("key", key).Msg("skipping workstation entry with empty uuid")
			continue
		}

		if prev, ok := entries[n]; ok && prev != value {
			log.Warn().Int("workstation", n).Msg("duplicate workstation entry, using the later one")
		}

		entries[n] = value
	}

	return entries
}

func sortedKeys(m map[int]string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	return keys
}
