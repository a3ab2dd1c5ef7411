package local_test

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/nuln/lfsdfs"
	"github.com/nuln/lfsdfs/driver/local"
	"github.com/nuln/lfsdfs/lfstest"
)

func TestLocalEngine(t *testing.T) {
	engine := local.NewWithFs(afero.NewMemMapFs(), 512, 64)
	lfstest.EngineTestSuite(t, engine)
}

func TestLocalEngine_OsFs(t *testing.T) {
	engine, err := local.New(t.TempDir(), 512, 64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lfstest.EngineTestSuite(t, engine)
}

func TestLocalEngine_Registered(t *testing.T) {
	engine, err := lfsdfs.Open(&lfsdfs.Config{Type: "local"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := engine.Mount(false); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	var st lfsdfs.FSStat
	if err := engine.FSStat(&st); err != nil {
		t.Fatalf("FSStat: %v", err)
	}
	if st.BlockSize != lfsdfs.DefaultBlockSize || st.BlockCount != lfsdfs.DefaultBlockCount {
		t.Errorf("geometry = %d x %d, want defaults", st.BlockSize, st.BlockCount)
	}
}
