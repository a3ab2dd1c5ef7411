package rclone_test

import (
	"context"
	"fmt"
	"net"
	"os"
	"testing"

	_ "github.com/rclone/rclone/backend/local"
	_ "github.com/rclone/rclone/backend/webdav"
	_ "github.com/rclone/rclone/cmd/serve"
	_ "github.com/rclone/rclone/cmd/serve/webdav"
	"github.com/rclone/rclone/fs/rc"

	"github.com/nuln/lfsdfs"
	"github.com/nuln/lfsdfs/driver/rclone"
	"github.com/nuln/lfsdfs/lfstest"
)

func TestRcloneEngine_Local(t *testing.T) {
	engine, err := rclone.New(t.TempDir(), 512, 64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lfstest.EngineTestSuite(t, engine)
}

func TestRcloneEngine_RequiresRemote(t *testing.T) {
	if _, err := lfsdfs.Open(&lfsdfs.Config{Type: "rclone"}); err == nil {
		t.Fatal("Open without remote: expected error")
	}
}

func TestRcloneEngine_WebDAV(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a WebDAV server")
	}

	// 1. Setup local directory to serve via WebDAV
	tempDir, err := os.MkdirTemp("", "lfsdfs-rclone-webdav-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	// 2. Find a free port
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()

	// 3. Start rclone serve webdav programmatically
	ctx := context.Background()
	startCall := rc.Calls.Get("serve/start")
	if startCall == nil {
		t.Fatal("serve/start RC not found - make sure github.com/rclone/rclone/cmd/serve is imported")
	}

	out, err := startCall.Fn(ctx, rc.Params{
		"type": "webdav",
		"fs":   tempDir,
		"addr": addr,
	})
	if err != nil {
		t.Fatalf("Failed to start rclone webdav: %v", err)
	}
	serverID, ok := out["id"].(string)
	if !ok {
		t.Fatal("serve/start did not return id string")
	}
	serverAddr, ok := out["addr"].(string)
	if !ok {
		t.Fatal("serve/start did not return addr string")
	}

	defer func() {
		stopCall := rc.Calls.Get("serve/stop")
		if stopCall != nil {
			_, _ = stopCall.Fn(ctx, rc.Params{"id": serverID})
		}
	}()

	// 4. Initialize the rclone engine
	// Remote format: :webdav,url='http://addr':
	remotePath := fmt.Sprintf(":webdav,url='http://%s':", serverAddr)
	cfg := &lfsdfs.Config{
		Type:       "rclone",
		BlockSize:  512,
		BlockCount: 64,
		Options: map[string]any{
			"remote": remotePath,
		},
	}

	engine, err := lfsdfs.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open rclone engine: %v", err)
	}

	// 5. Run the engine conformance suite
	lfstest.EngineTestSuite(t, engine)
}
