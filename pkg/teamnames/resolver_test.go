package teamnames

import (
	"testing"

	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver() *Resolver {
	return NewResolver([]Team{
		{ID: 1, Name: "Manchester United", Short: "MUN"},
		{ID: 2, Name: "Manchester City", Short: "MCI"},
		{ID: 3, Name: "Arsenal", Short: "ARS"},
		{ID: 4, Name: "Brighton & Hove Albion", Short: "BHA"},
	})
}

func TestResolve(t *testing.T) {
	r := testResolver()

	tests := []struct {
		input   string
		want    sharedtypes.TeamID
		wantErr error
	}{
		{input: "Arsenal", want: 3},
		{input: "  arsenal ", want: 3},
		{input: "mci", want: 2},
		{input: "Man Utd", want: 1},
		{input: "Brighton", want: 4},
		{input: "Manchester", wantErr: ErrAmbiguousTeam},
		{input: "Liverpool", wantErr: ErrUnknownTeam},
		{input: "", wantErr: ErrUnknownTeam},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := r.Resolve(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveAllJoinsErrors(t *testing.T) {
	r := testResolver()

	ids, err := r.ResolveAll([]string{"ARS", "MUN"})
	require.NoError(t, err)
	assert.Equal(t, []sharedtypes.TeamID{3, 1}, ids)

	_, err = r.ResolveAll([]string{"Chelsea", "ARS", "Spurs"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTeam)
	assert.Contains(t, err.Error(), "Chelsea")
	assert.Contains(t, err.Error(), "Spurs")
}
