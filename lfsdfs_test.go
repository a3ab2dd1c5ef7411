package lfsdfs_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuln/lfsdfs"
	_ "github.com/nuln/lfsdfs/driver/local"
)

func TestHandleTable_ReusesLowestHandle(t *testing.T) {
	tbl := lfsdfs.NewHandleTable[string]()

	for i, name := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, i, tbl.Allocate(name))
	}

	v, ok := tbl.Release(2)
	require.True(t, ok)
	assert.Equal(t, "c", v)
	_, ok = tbl.Release(0)
	require.True(t, ok)
	_, ok = tbl.Release(0)
	assert.False(t, ok, "double release")

	assert.Equal(t, 0, tbl.Allocate("e"))
	assert.Equal(t, 2, tbl.Allocate("f"))
	assert.Equal(t, 4, tbl.Allocate("g"))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, tbl.Handles())

	got, ok := tbl.Get(2)
	require.True(t, ok)
	assert.Equal(t, "f", got)

	tbl.Reset()
	assert.Zero(t, tbl.Len())
	assert.Equal(t, 0, tbl.Allocate("h"))
}

func TestCode(t *testing.T) {
	assert.Equal(t, lfsdfs.Error(0), lfsdfs.Code(nil))
	assert.Equal(t, lfsdfs.ErrNoEnt, lfsdfs.Code(lfsdfs.ErrNoEnt))
	assert.Equal(t, lfsdfs.ErrNoSpc, lfsdfs.Code(fmt.Errorf("write: %w", lfsdfs.ErrNoSpc)))
	assert.Equal(t, lfsdfs.ErrIO, lfsdfs.Code(errors.New("backend exploded")))
	assert.Equal(t, lfsdfs.ErrIO, lfsdfs.Code(lfsdfs.ErrNotSupported))

	assert.Equal(t, "lfsdfs: no directory entry", lfsdfs.ErrNoEnt.Error())
	assert.Equal(t, "lfsdfs: error -1", lfsdfs.Error(-1).Error())
}

func TestFlag(t *testing.T) {
	assert.True(t, lfsdfs.ORdWr.CanRead())
	assert.True(t, lfsdfs.ORdWr.CanWrite())
	assert.False(t, lfsdfs.ORdOnly.CanWrite())
	assert.False(t, lfsdfs.OWrOnly.CanRead())
	assert.Equal(t, lfsdfs.ORdWr, lfsdfs.ORdOnly|lfsdfs.OWrOnly)

	assert.Equal(t, "RDWR|CREAT|TRUNC", (lfsdfs.ORdWr | lfsdfs.OCreat | lfsdfs.OTrunc).String())
	assert.Equal(t, "WRONLY|APPEND", (lfsdfs.OWrOnly | lfsdfs.OAppend).String())
	assert.Equal(t, "0", lfsdfs.Flag(0).String())
}

func TestParseConfig(t *testing.T) {
	cfg, err := lfsdfs.ParseConfig([]byte(`
type: rclone
blockSize: 512
options:
  remote: "remote:bucket"
`))
	require.NoError(t, err)
	assert.Equal(t, "rclone", cfg.Type)

	bs, bc := cfg.Geometry()
	assert.Equal(t, uint32(512), bs)
	assert.Equal(t, uint32(lfsdfs.DefaultBlockCount), bc)

	remote, ok := cfg.StringOption("remote")
	assert.True(t, ok)
	assert.Equal(t, "remote:bucket", remote)
	_, ok = cfg.StringOption("missing")
	assert.False(t, ok)

	_, err = lfsdfs.ParseConfig([]byte("basePath: /data\n"))
	assert.Error(t, err)
	_, err = lfsdfs.ParseConfig([]byte("type: [unterminated"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: local\nblockCount: 32\n"), 0o600))

	cfg, err := lfsdfs.LoadConfig(path)
	require.NoError(t, err)

	engine, err := lfsdfs.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, engine.Mount(false))

	var st lfsdfs.FSStat
	require.NoError(t, engine.FSStat(&st))
	assert.Equal(t, uint32(32), st.BlockCount)
	assert.Equal(t, uint32(32), st.BlocksFree())

	_, err = lfsdfs.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	assert.Contains(t, lfsdfs.Drivers(), "local")
	assert.Equal(t, lfsdfs.Drivers(), lfsdfs.List())

	_, err := lfsdfs.Open(&lfsdfs.Config{Type: "nope"})
	assert.Error(t, err)
	_, err = lfsdfs.Open(nil)
	assert.Error(t, err)

	assert.Panics(t, func() { lfsdfs.MustOpen(&lfsdfs.Config{Type: "nope"}) })
	assert.Panics(t, func() {
		lfsdfs.Register("local", func(*lfsdfs.Config) (lfsdfs.Engine, error) { return nil, nil })
	})
}

func TestWalk_SkipDir(t *testing.T) {
	engine := lfsdfs.MustOpen(&lfsdfs.Config{Type: "local", BlockSize: 512, BlockCount: 64})
	require.NoError(t, engine.Mount(false))

	for _, dir := range []string{"/a", "/a/skip", "/b"} {
		require.NoError(t, engine.Mkdir(dir))
	}
	for _, file := range []string{"/a/f", "/a/skip/hidden", "/b/g"} {
		h, err := engine.Open(file, lfsdfs.OWrOnly|lfsdfs.OCreat)
		require.NoError(t, err)
		require.NoError(t, engine.Close(h))
	}

	var visited []string
	err := lfsdfs.Walk(engine, "/", func(path string, info *lfsdfs.Info, err error) error {
		require.NoError(t, err)
		if info.Type == lfsdfs.TypeDir && info.Name == "skip" {
			return filepath.SkipDir
		}
		visited = append(visited, path)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/a", "/a/f", "/b", "/b/g"}, visited)

	var missing error
	err = lfsdfs.Walk(engine, "/nope", func(_ string, _ *lfsdfs.Info, err error) error {
		missing = err
		return nil
	})
	assert.NoError(t, err)
	assert.ErrorIs(t, missing, lfsdfs.ErrNoEnt)
}
