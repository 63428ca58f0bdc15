package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[ID]struct{})
	for range 1000 {
		id := New()
		require.False(t, id.IsZero())

		_, dup := seen[id]
		require.False(t, dup, "ids must not repeat")
		seen[id] = struct{}{}
	}
}

func TestNew_Sortable(t *testing.T) {
	t.Parallel()

	a := NewAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	b := NewAt(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.Less(t, a.String(), b.String())
}

func TestParse(t *testing.T) {
	t.Parallel()

	id := New()
	parsed, err := Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	_, err = Parse("")
	require.ErrorIs(t, err, ErrInvalid)

	_, err = Parse("not-a-ulid")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestTime(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 15, 12, 30, 0, 0, time.UTC)
	id := NewAt(at)
	require.WithinDuration(t, at, id.Time(), time.Millisecond)

	require.True(t, Zero.Time().IsZero())
}
