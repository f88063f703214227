package ecs

import (
	"testing"

	. "github.com/argus-labs/slotworld/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t, 8)
	for i := range 4 {
		h, err := s.Create(healthBit | positionBit)
		require.NoError(t, err)
		MustGet[Health](s, h).Value = i * 10
		MustGet[Position](s, h).X = i
	}
	_, err := s.Create(healthBit)
	require.NoError(t, err)

	tests := []struct {
		name     string
		params   SearchParam
		wantLen  int
		wantErr  bool
		validate func(t *testing.T, results []map[string]any)
	}{
		{
			name:    "contains",
			params:  SearchParam{Find: []string{"Health"}, Match: MatchContains},
			wantLen: 5,
		},
		{
			name:    "exact",
			params:  SearchParam{Find: []string{"Health"}, Match: MatchExact},
			wantLen: 1,
			validate: func(t *testing.T, results []map[string]any) {
				assert.Equal(t, 4, results[0]["_index"])
				assert.Equal(t, 1, results[0]["_generation"])
			},
		},
		{
			name:    "where on component field",
			params:  SearchParam{Find: []string{"Health", "Position"}, Match: MatchExact, Where: "Health.Value >= 20"},
			wantLen: 2,
			validate: func(t *testing.T, results []map[string]any) {
				assert.Equal(t, Position{X: 2}, results[0]["Position"])
				assert.Equal(t, Position{X: 3}, results[1]["Position"])
			},
		},
		{
			name:    "where on slot index",
			params:  SearchParam{Find: []string{"Health"}, Match: MatchContains, Where: "_index < 2"},
			wantLen: 2,
		},
		{
			name:    "empty find",
			params:  SearchParam{Match: MatchContains},
			wantErr: true,
		},
		{
			name:    "bad match",
			params:  SearchParam{Find: []string{"Health"}, Match: "fuzzy"},
			wantErr: true,
		},
		{
			name:    "unknown component",
			params:  SearchParam{Find: []string{"Mana"}, Match: MatchContains},
			wantErr: true,
		},
		{
			name:    "unparsable where",
			params:  SearchParam{Find: []string{"Health"}, Match: MatchContains, Where: "Health.Value >>"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			results, err := s.Search(tt.params)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, results, tt.wantLen)
			if tt.validate != nil {
				tt.validate(t, results)
			}
		})
	}
}
