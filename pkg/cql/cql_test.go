package cql_test

import (
	"testing"

	"github.com/argus-labs/slotworld/pkg/components"
	"github.com/argus-labs/slotworld/pkg/cql"
	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFor(t *testing.T) {
	t.Parallel()

	s := ecs.NewStorage(8)
	require.NoError(t, components.Register(s))

	vob, err := s.Create(components.MaskVob)
	require.NoError(t, err)
	bare, err := s.Create(components.MaskEntity)
	require.NoError(t, err)
	placed, err := s.Create(components.MaskEntity | components.MaskPosition)
	require.NoError(t, err)

	tests := []struct {
		query string
		want  []ecs.EntityHandle
	}{
		{"ALL()", []ecs.EntityHandle{vob, bare, placed}},
		{"CONTAINS(Position)", []ecs.EntityHandle{vob, placed}},
		{"EXACT(Entity)", []ecs.EntityHandle{bare}},
		{"CONTAINS(Entity) & !CONTAINS(Logic)", []ecs.EntityHandle{bare, placed}},
		{"CONTAINS(Logic) | EXACT(Entity)", []ecs.EntityHandle{vob, bare}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			t.Parallel()
			filter, err := cql.ParseFor(s, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Query(filter))
		})
	}
}
