package pagination

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestParseNumber(t *testing.T) {
	tests := map[string]int{
		"":     1,
		"abc":  1,
		"0":    1,
		"-4":   1,
		"2":    2,
		" 3 ":  3,
		"1.5":  1,
		"9999": 9999,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseNumber(raw), "raw=%q", raw)
	}
}

func TestNumPages(t *testing.T) {
	assert.Equal(t, 1, NumPages(0, 10))
	assert.Equal(t, 1, NumPages(10, 10))
	assert.Equal(t, 2, NumPages(13, 10))
	assert.Equal(t, 2, NumPages(13, 0))
}

func TestFromSlice_ThirteenPosts(t *testing.T) {
	all := seq(13)

	first := FromSlice(all, "", 10)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, 1, first.Number)
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrevious())

	second := FromSlice(all, "2", 10)
	assert.Len(t, second.Items, 3)
	assert.Equal(t, []int{11, 12, 13}, second.Items)
	assert.Equal(t, int64(11), second.StartIndex())
	assert.Equal(t, int64(13), second.EndIndex())

	beyond := FromSlice(all, "99", 10)
	assert.Equal(t, 2, beyond.Number)
	assert.Len(t, beyond.Items, 3)

	garbage := FromSlice(all, "two", 10)
	assert.Equal(t, 1, garbage.Number)
}

func TestFromSlice_Empty(t *testing.T) {
	p := FromSlice([]int{}, "5", 10)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 1, p.NumPages)
	assert.Empty(t, p.Items)
	assert.Equal(t, int64(0), p.StartIndex())
	assert.Equal(t, int64(0), p.EndIndex())
	assert.False(t, p.HasOtherPages())
}

func TestPaginate(t *testing.T) {
	all := seq(25)
	count := func(context.Context) (int64, error) { return int64(len(all)), nil }

	var gotOffset, gotLimit int
	fetch := func(_ context.Context, offset, limit int) ([]int, error) {
		gotOffset, gotLimit = offset, limit
		end := offset + limit
		if end > len(all) {
			end = len(all)
		}
		return all[offset:end], nil
	}

	p, err := Paginate(context.Background(), "3", 10, count, fetch)
	require.NoError(t, err)
	assert.Equal(t, 20, gotOffset)
	assert.Equal(t, 10, gotLimit)
	assert.Equal(t, []int{21, 22, 23, 24, 25}, p.Items)
	assert.Equal(t, 3, p.NumPages)
	assert.Equal(t, 2, p.PreviousNumber())
	assert.Equal(t, 3, p.NextNumber())
}

func TestPaginate_EmptySkipsFetch(t *testing.T) {
	count := func(context.Context) (int64, error) { return 0, nil }
	fetch := func(context.Context, int, int) ([]string, error) {
		t.Fatal("fetch must not run for an empty collection")
		return nil, nil
	}

	p, err := Paginate(context.Background(), "4", 10, count, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Number)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
}

func TestPaginate_Errors(t *testing.T) {
	boom := errors.New("boom")

	_, err := Paginate(context.Background(), "1", 10,
		func(context.Context) (int64, error) { return 0, boom },
		func(context.Context, int, int) ([]int, error) { return nil, nil })
	assert.ErrorIs(t, err, boom)

	_, err = Paginate(context.Background(), "1", 10,
		func(context.Context) (int64, error) { return 3, nil },
		func(context.Context, int, int) ([]int, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestElidedRange(t *testing.T) {
	small := FromSlice(seq(50), "3", 10)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, small.ElidedRange())

	big := FromSlice(seq(500), "25", 10)
	assert.Equal(t, []int{1, 2, Ellipsis, 22, 23, 24, 25, 26, 27, 28, Ellipsis, 49, 50}, big.ElidedRange())

	start := FromSlice(seq(500), "1", 10)
	assert.Equal(t, []int{1, 2, 3, 4, Ellipsis, 49, 50}, start.ElidedRange())

	end := FromSlice(seq(500), "50", 10)
	assert.Equal(t, []int{1, 2, Ellipsis, 47, 48, 49, 50}, end.ElidedRange())
}
