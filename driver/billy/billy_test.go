package billy_test

import (
	"testing"

	"github.com/nuln/lfsdfs/driver/billy"
	"github.com/nuln/lfsdfs/lfstest"
)

func TestBillyEngine(t *testing.T) {
	engine := billy.NewMemory(512, 64)
	lfstest.EngineTestSuite(t, engine)
}

// TestBillyEngine_Unwrap verifies data written through the engine lands in
// the billy filesystem.
func TestBillyEngine_Unwrap(t *testing.T) {
	engine := billy.NewMemory(0, 0)
	if err := engine.Mount(false); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := engine.Mkdir("/logs"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	fi, err := engine.Unwrap().Stat("/logs")
	if err != nil {
		t.Fatalf("billy Stat: %v", err)
	}
	if !fi.IsDir() {
		t.Error("billy Stat: /logs is not a directory")
	}
}
