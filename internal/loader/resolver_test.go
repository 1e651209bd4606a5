package loader_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/stc/internal/loader"
)

func TestResolver(t *testing.T) {
	dir := filepath.Dir(testdata("point.yaml"))
	r := loader.NewResolver([]string{filepath.Join(dir, "lib")})

	tests := []struct {
		name    string
		imp     string
		from    string
		want    string
		wantErr bool
	}{
		{"relative without extension", "shapes", dir, filepath.Join(dir, "shapes.yaml"), false},
		{"relative with extension", "shapes.yaml", dir, filepath.Join(dir, "shapes.yaml"), false},
		{"absolute", filepath.Join(dir, "point.yaml"), "", filepath.Join(dir, "point.yaml"), false},
		{"search path", "geometry", dir, filepath.Join(dir, "lib", "geometry.yaml"), false},
		{"dotted name maps to directory", "lib.geometry", dir, filepath.Join(dir, "lib", "geometry.yaml"), false},
		{"missing", "nowhere", dir, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.imp, tt.from)
			if tt.wantErr {
				var nf *loader.UnitNotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, tt.imp, nf.Import)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
