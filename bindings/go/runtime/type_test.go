package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uklance/gradle-dependency-export/bindings/go/runtime"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		kind    string
		version string
		wantErr bool
	}{
		{in: "resolver.config.gradle-dependency-export/v1", kind: "resolver.config.gradle-dependency-export", version: "v1"},
		{in: "MavenRepository", kind: "MavenRepository"},
		{in: "a/b/c", wantErr: true},
		{in: "/v1", wantErr: true},
		{in: "kind/", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			r := require.New(t)
			typ, err := runtime.Parse(tc.in)
			if tc.wantErr {
				r.Error(err)
				return
			}
			r.NoError(err)
			r.Equal(tc.kind, typ.GetKind())
			r.Equal(tc.version, typ.GetVersion())
			r.Equal(tc.version != "", typ.HasVersion())
			r.True(typ.Equal(runtime.Type(tc.in)))
		})
	}
}

func TestNewVersionedType(t *testing.T) {
	r := require.New(t)
	typ := runtime.NewVersionedType("MavenRepository", "v1")
	r.Equal("MavenRepository/v1", typ.String())
	r.True(typ.HasVersion())
}
