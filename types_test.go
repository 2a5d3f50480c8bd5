package drivedav_test

import (
	"testing"

	"github.com/sagarc03/drivedav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDepth(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		def     drivedav.Depth
		want    drivedav.Depth
		wantErr bool
	}{
		{name: "empty uses default one", header: "", def: drivedav.DepthOne, want: drivedav.DepthOne},
		{name: "empty uses default infinity", header: "", def: drivedav.DepthInfinity, want: drivedav.DepthInfinity},
		{name: "zero", header: "0", def: drivedav.DepthOne, want: drivedav.DepthZero},
		{name: "one", header: "1", def: drivedav.DepthZero, want: drivedav.DepthOne},
		{name: "infinity", header: "infinity", def: drivedav.DepthOne, want: drivedav.DepthInfinity},
		{name: "two is invalid", header: "2", def: drivedav.DepthOne, wantErr: true},
		{name: "garbage is invalid", header: "deep", def: drivedav.DepthOne, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := drivedav.ParseDepth(tt.header, tt.def)
			if tt.wantErr {
				assert.ErrorIs(t, err, drivedav.ErrBadRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOverwrite(t *testing.T) {
	assert.True(t, drivedav.ParseOverwrite(""))
	assert.True(t, drivedav.ParseOverwrite("T"))
	assert.True(t, drivedav.ParseOverwrite("f"), "only uppercase F disables overwrite")
	assert.True(t, drivedav.ParseOverwrite("anything"))
	assert.False(t, drivedav.ParseOverwrite("F"))
}

func TestKind(t *testing.T) {
	for _, k := range []drivedav.Kind{drivedav.KindFile, drivedav.KindCollection} {
		parsed, err := drivedav.ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := drivedav.ParseKind("folder")
	assert.ErrorIs(t, err, drivedav.ErrInvalidInput)
}

func TestTables_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tables  drivedav.Tables
		wantErr bool
	}{
		{name: "valid", tables: drivedav.Tables{Entries: "drivedav_entries"}},
		{name: "empty", tables: drivedav.Tables{}, wantErr: true},
		{name: "uppercase", tables: drivedav.Tables{Entries: "Entries"}, wantErr: true},
		{name: "injection", tables: drivedav.Tables{Entries: "x; DROP TABLE y"}, wantErr: true},
		{name: "leading digit", tables: drivedav.Tables{Entries: "1entries"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tables.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
