package flipp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/donaldgifford/flyer-price-tracker/internal/flipp"
)

func TestStoreMatcher_Match(t *testing.T) {
	t.Parallel()

	m := flipp.NewStoreMatcher(map[string][]string{
		"No Frills":   {"no frills", "nofrills"},
		"food basics": {"Food Basics"},
		"walmart":     {"walmart"},
		"empty":       {" "},
	})

	tests := []struct {
		name   string
		names  []string
		want   string
		wantOK bool
	}{
		{name: "exact merchant", names: []string{"Walmart"}, want: "walmart", wantOK: true},
		{name: "variant substring", names: []string{"NoFrills Ontario"}, want: "no frills", wantOK: true},
		{name: "matches flyer name", names: []string{"", "Food Basics Weekly"}, want: "food basics", wantOK: true},
		{name: "untracked merchant", names: []string{"Loblaws"}},
		{name: "no names", names: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := m.Match(tt.names...)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, []string{"food basics", "no frills", "walmart"}, m.Categories())
}

func TestStoreMatcher_MatchFlyer(t *testing.T) {
	t.Parallel()

	m := flipp.NewStoreMatcher(map[string][]string{"freshco": {"freshco", "fresh co"}})

	got, ok := m.MatchFlyer(&flipp.Flyer{MerchantName: "Chalo! FreshCo"})
	assert.True(t, ok)
	assert.Equal(t, "freshco", got)

	_, ok = m.MatchFlyer(&flipp.Flyer{MerchantName: "Metro", Name: "Weekly"})
	assert.False(t, ok)
}
