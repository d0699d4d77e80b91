package benchdata

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) []byte {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", "data.js"))
	require.NoError(t, err)
	return raw
}

func TestDecode_Fixture(t *testing.T) {
	ds, err := Decode(bytes.NewReader(loadFixture(t)))
	require.NoError(t, err)

	assert.Equal(t, int64(1651082410611), ds.LastUpdate)
	assert.Equal(t, "https://github.com/vmware-tanzu/carvel-kapp-controller", ds.RepoURL)
	assert.Equal(t, []string{"Benchmark"}, ds.Keys())

	entries := ds.List("Benchmark")
	require.Len(t, entries, 13)

	first := entries[0]
	assert.Equal(t, "6200ea5083ca1db200b904390e7f2d958c8321ed", first.Commit.ID)
	assert.Equal(t, "vmware-tanzu", first.Commit.Author.Username)
	assert.Empty(t, first.Commit.Author.Email)
	assert.Nil(t, first.Commit.Distinct)
	assert.Equal(t, int64(1650324813749), first.Date)
	assert.Equal(t, "go", first.Tool)
	require.Len(t, first.Benches, 3)
	assert.Equal(t, "Benchmark_pkgr_with_500_packages", first.Benches[0].Name)
	assert.Equal(t, 93995132319.0, first.Benches[0].Value)
	assert.Equal(t, "ns/op\t        63.23 DeleteSeconds\t        30.72 DeploySeconds", first.Benches[0].Unit)
	assert.Equal(t, "1 times\n2 procs", first.Benches[0].Extra)

	last := entries[len(entries)-1]
	require.NotNil(t, last.Commit.Distinct)
	assert.True(t, *last.Commit.Distinct)
	assert.Equal(t, "7aa3cf4117765d721d29ece644bfdf9ed7abf61f", last.Commit.TreeID)

	require.NoError(t, ds.Validate())
}

func TestRoundTrip_FieldEquality(t *testing.T) {
	ds, err := Unmarshal(loadFixture(t))
	require.NoError(t, err)

	out, err := Marshal(ds)
	require.NoError(t, err)

	again, err := Unmarshal(out)
	require.NoError(t, err)

	if diff := cmp.Diff(ds, again); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_ByteIdentical(t *testing.T) {
	raw := loadFixture(t)
	ds, err := Unmarshal(raw)
	require.NoError(t, err)

	out, err := Marshal(ds)
	require.NoError(t, err)
	assert.Equal(t, string(raw), string(out))
}

func TestUnmarshal_PlainJSON(t *testing.T) {
	ds, err := Unmarshal([]byte(`{"lastUpdate": 5, "repoUrl": "https://x", "entries": {}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(5), ds.LastUpdate)
	assert.NotNil(t, ds.Entries)
}

func TestUnmarshal_TrailingSemicolon(t *testing.T) {
	ds, err := Unmarshal([]byte("window.BENCHMARK_DATA = {\"lastUpdate\": 1, \"repoUrl\": \"\", \"entries\": {}};\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), ds.LastUpdate)
}

func TestUnmarshal_Malformed(t *testing.T) {
	for _, in := range []string{"window.BENCHMARK_DATA {}", "window.BENCHMARK_DATA = {", "not json"} {
		_, err := Unmarshal([]byte(in))
		assert.ErrorIs(t, err, ErrMalformed, in)
	}
}

func TestMarshal_Layout(t *testing.T) {
	ds := NewDataset("https://github.com/example/repo")
	ds.LastUpdate = 42
	require.NoError(t, ds.Append("Benchmark", Entry{
		Commit:  Commit{ID: "abc", Message: "a <b> & c", Timestamp: "2022-04-06T17:27:49Z"},
		Date:    41,
		Tool:    "go",
		Benches: []Bench{{Name: "Benchmark_x", Value: 1500000000, Unit: "ns/op", Extra: "1 times"}},
	}))

	out, err := Marshal(ds)
	require.NoError(t, err)
	s := string(out)

	assert.True(t, strings.HasPrefix(s, "window.BENCHMARK_DATA = {\n  \"lastUpdate\": 42,"))
	assert.False(t, strings.HasSuffix(s, "\n"))
	assert.Contains(t, s, `"message": "a <b> & c"`)
	assert.Contains(t, s, `"value": 1500000000,`)
	assert.NotContains(t, s, "range")
	assert.NotContains(t, s, "tree_id")
}

func TestMarshal_NilEntries(t *testing.T) {
	out, err := MarshalJSON(&Dataset{RepoURL: "r"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"entries": {}`)
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, NewDataset("r")))
	assert.True(t, strings.HasPrefix(buf.String(), ScriptPrefix))
}
