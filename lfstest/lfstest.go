// Package lfstest provides a conformance suite for lfsdfs.Engine drivers.
package lfstest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nuln/lfsdfs"
)

// EngineTestSuite runs a comprehensive set of tests against an Engine
// implementation. The engine is formatted and mounted first, so it must
// not hold data the caller cares about. Geometry must allow at least 32
// blocks. Call this in your driver tests to verify correctness:
//
//	func TestLocalEngine(t *testing.T) {
//	    engine := setupEngine(t)
//	    lfstest.EngineTestSuite(t, engine)
//	}
func EngineTestSuite(t *testing.T, engine lfsdfs.Engine) { //nolint:gocyclo
	t.Helper()

	if err := engine.Mount(false); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := engine.Format(); err != nil {
		t.Fatalf("Format: %v", err)
	}

	t.Run("Empty_FSStat", func(t *testing.T) {
		var st lfsdfs.FSStat
		if err := engine.FSStat(&st); err != nil {
			t.Fatalf("FSStat: %v", err)
		}
		if st.BlockSize == 0 || st.BlockCount == 0 {
			t.Errorf("geometry = %d x %d, want non-zero", st.BlockSize, st.BlockCount)
		}
		if st.BlocksUsed != 0 {
			t.Errorf("BlocksUsed = %d, want 0 on a formatted engine", st.BlocksUsed)
		}
	})

	t.Run("Create_Write_Read_Stat_Remove", func(t *testing.T) {
		path := "/hello.txt"
		content := "hello world"

		writeFile(t, engine, path, content)

		var info lfsdfs.Info
		if err := engine.Stat(path, &info); err != nil {
			t.Fatalf("Stat: %v", err)
		}
		if info.Name != "hello.txt" {
			t.Errorf("Name = %q, want %q", info.Name, "hello.txt")
		}
		if info.Size != int64(len(content)) {
			t.Errorf("Size = %d, want %d", info.Size, len(content))
		}
		if info.Type != lfsdfs.TypeReg {
			t.Errorf("Type = %v, want reg", info.Type)
		}

		if got := readFile(t, engine, path); got != content {
			t.Errorf("content = %q, want %q", got, content)
		}

		// Seek
		h, err := engine.Open(path, lfsdfs.ORdOnly)
		if err != nil {
			t.Fatalf("Open for seek: %v", err)
		}
		if pos, seekErr := engine.Seek(h, 6, lfsdfs.SeekSet); seekErr != nil || pos != 6 {
			t.Fatalf("Seek = %d, %v; want 6", pos, seekErr)
		}
		buf := make([]byte, 32)
		n, err := engine.Read(h, buf)
		if err != nil {
			t.Fatalf("Read after seek: %v", err)
		}
		if string(buf[:n]) != "world" {
			t.Errorf("after seek = %q, want %q", string(buf[:n]), "world")
		}
		if n, err = engine.Read(h, buf); err != nil || n != 0 {
			t.Errorf("Read at EOF = %d, %v; want 0, nil", n, err)
		}
		if pos, _ := engine.Tell(h); pos != int64(len(content)) {
			t.Errorf("Tell = %d, want %d", pos, len(content))
		}
		_ = engine.Close(h)

		// Remove
		if err := engine.Remove(path); err != nil {
			t.Fatalf("Remove: %v", err)
		}
		if err := engine.Stat(path, &info); !errors.Is(err, lfsdfs.ErrNoEnt) {
			t.Errorf("Stat after Remove = %v, want ErrNoEnt", err)
		}
	})

	t.Run("Open_Errors", func(t *testing.T) {
		writeFile(t, engine, "/exists.txt", "x")
		mkdir(t, engine, "/adir")
		defer func() {
			_ = engine.Remove("/exists.txt")
			_ = engine.Remove("/adir")
		}()

		cases := []struct {
			name  string
			path  string
			flags lfsdfs.Flag
			want  lfsdfs.Error
		}{
			{"missing", "/missing.txt", lfsdfs.ORdOnly, lfsdfs.ErrNoEnt},
			{"exclusive", "/exists.txt", lfsdfs.ORdWr | lfsdfs.OCreat | lfsdfs.OExcl, lfsdfs.ErrExist},
			{"directory", "/adir", lfsdfs.ORdOnly, lfsdfs.ErrIsDir},
			{"no parent", "/nope/file.txt", lfsdfs.OWrOnly | lfsdfs.OCreat, lfsdfs.ErrNoEnt},
			{"file parent", "/exists.txt/file.txt", lfsdfs.OWrOnly | lfsdfs.OCreat, lfsdfs.ErrNotDir},
			{"no access mode", "/exists.txt", lfsdfs.OCreat, lfsdfs.ErrInval},
			{"name too long", "/" + strings.Repeat("n", lfsdfs.NameMax+1), lfsdfs.OWrOnly | lfsdfs.OCreat, lfsdfs.ErrNameTooLong},
		}
		for _, tc := range cases {
			h, err := engine.Open(tc.path, tc.flags)
			if err == nil {
				_ = engine.Close(h)
			}
			if got := lfsdfs.Code(err); got != tc.want {
				t.Errorf("%s: Open error = %v, want %v", tc.name, err, tc.want)
			}
		}
	})

	t.Run("Access_Mode", func(t *testing.T) {
		path := "/mode.txt"
		writeFile(t, engine, path, "abc")
		defer func() { _ = engine.Remove(path) }()

		h, err := engine.Open(path, lfsdfs.ORdOnly)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if _, err := engine.Write(h, []byte("x")); !errors.Is(err, lfsdfs.ErrBadF) {
			t.Errorf("Write on read-only handle = %v, want ErrBadF", err)
		}
		_ = engine.Close(h)

		h, err = engine.Open(path, lfsdfs.OWrOnly)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if _, err := engine.Read(h, make([]byte, 4)); !errors.Is(err, lfsdfs.ErrBadF) {
			t.Errorf("Read on write-only handle = %v, want ErrBadF", err)
		}
		_ = engine.Close(h)

		if err := engine.Close(h); !errors.Is(err, lfsdfs.ErrBadF) {
			t.Errorf("double Close = %v, want ErrBadF", err)
		}
	})

	t.Run("Sparse_Write", func(t *testing.T) {
		path := "/sparse.bin"
		h, err := engine.Open(path, lfsdfs.ORdWr|lfsdfs.OCreat)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if _, err := engine.Seek(h, 100, lfsdfs.SeekSet); err != nil {
			t.Fatalf("Seek: %v", err)
		}
		if size, _ := engine.Size(h); size != 0 {
			t.Errorf("Size after seek = %d, want 0", size)
		}
		if n, err := engine.Write(h, []byte("tail")); err != nil || n != 4 {
			t.Fatalf("Write = %d, %v", n, err)
		}
		if size, _ := engine.Size(h); size != 104 {
			t.Errorf("Size after write = %d, want 104", size)
		}
		if err := engine.Close(h); err != nil {
			t.Fatalf("Close: %v", err)
		}

		var info lfsdfs.Info
		if err := engine.Stat(path, &info); err != nil {
			t.Fatalf("Stat: %v", err)
		}
		if info.Size != 104 {
			t.Errorf("Stat size = %d, want 104", info.Size)
		}
		data := readFile(t, engine, path)
		if want := string(make([]byte, 100)) + "tail"; data != want {
			t.Errorf("sparse content mismatch: got %d bytes", len(data))
		}
		_ = engine.Remove(path)
	})

	t.Run("Append_Truncate", func(t *testing.T) {
		path := "/append.txt"
		writeFile(t, engine, path, "hello")

		h, err := engine.Open(path, lfsdfs.OWrOnly|lfsdfs.OAppend)
		if err != nil {
			t.Fatalf("Open append: %v", err)
		}
		if _, err := engine.Seek(h, 0, lfsdfs.SeekSet); err != nil {
			t.Fatalf("Seek: %v", err)
		}
		if _, err := engine.Write(h, []byte(" world")); err != nil {
			t.Fatalf("Write: %v", err)
		}
		_ = engine.Close(h)
		if got := readFile(t, engine, path); got != "hello world" {
			t.Errorf("after append = %q, want %q", got, "hello world")
		}

		h, err = engine.Open(path, lfsdfs.OWrOnly|lfsdfs.OTrunc)
		if err != nil {
			t.Fatalf("Open trunc: %v", err)
		}
		_ = engine.Close(h)
		var info lfsdfs.Info
		if err := engine.Stat(path, &info); err != nil || info.Size != 0 {
			t.Errorf("after trunc = %d, %v; want 0", info.Size, err)
		}
		_ = engine.Remove(path)
	})

	t.Run("Seek_Bounds", func(t *testing.T) {
		path := "/bounds.bin"
		h, err := engine.Open(path, lfsdfs.ORdWr|lfsdfs.OCreat)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer func() {
			_ = engine.Close(h)
			_ = engine.Remove(path)
		}()

		if _, err := engine.Seek(h, -1, lfsdfs.SeekSet); !errors.Is(err, lfsdfs.ErrInval) {
			t.Errorf("Seek(-1) = %v, want ErrInval", err)
		}
		if _, err := engine.Seek(h, lfsdfs.FileMax+1, lfsdfs.SeekSet); !errors.Is(err, lfsdfs.ErrInval) {
			t.Errorf("Seek(FileMax+1) = %v, want ErrInval", err)
		}
		if _, err := engine.Seek(h, lfsdfs.FileMax, lfsdfs.SeekSet); err != nil {
			t.Fatalf("Seek(FileMax): %v", err)
		}
		if _, err := engine.Write(h, []byte("x")); !errors.Is(err, lfsdfs.ErrFBig) {
			t.Errorf("Write past FileMax = %v, want ErrFBig", err)
		}
	})

	t.Run("Mkdir_DirRead", func(t *testing.T) {
		dir := "/dirops"
		mkdir(t, engine, dir)
		for _, name := range []string{"b.txt", "a.txt"} {
			writeFile(t, engine, dir+"/"+name, name)
		}
		mkdir(t, engine, dir+"/sub")

		if err := engine.Mkdir(dir); !errors.Is(err, lfsdfs.ErrExist) {
			t.Errorf("Mkdir existing = %v, want ErrExist", err)
		}
		if err := engine.Mkdir("/nope/sub"); !errors.Is(err, lfsdfs.ErrNoEnt) {
			t.Errorf("Mkdir without parent = %v, want ErrNoEnt", err)
		}

		h, err := engine.DirOpen(dir)
		if err != nil {
			t.Fatalf("DirOpen: %v", err)
		}
		var names []string
		var types []lfsdfs.EntryType
		for {
			var info lfsdfs.Info
			more, err := engine.DirRead(h, &info)
			if err != nil {
				t.Fatalf("DirRead: %v", err)
			}
			if !more {
				if info.Type != lfsdfs.TypeNone {
					t.Errorf("end of directory Type = %v, want none", info.Type)
				}
				break
			}
			names = append(names, info.Name)
			types = append(types, info.Type)
		}
		if err := engine.DirClose(h); err != nil {
			t.Errorf("DirClose: %v", err)
		}

		wantNames := []string{".", "..", "a.txt", "b.txt", "sub"}
		wantTypes := []lfsdfs.EntryType{lfsdfs.TypeDir, lfsdfs.TypeDir, lfsdfs.TypeReg, lfsdfs.TypeReg, lfsdfs.TypeDir}
		if strings.Join(names, ",") != strings.Join(wantNames, ",") {
			t.Errorf("DirRead names = %v, want %v", names, wantNames)
		}
		for i := range types {
			if i < len(wantTypes) && types[i] != wantTypes[i] {
				t.Errorf("entry %q type = %v, want %v", names[i], types[i], wantTypes[i])
			}
		}

		if _, err := engine.DirOpen(dir + "/a.txt"); !errors.Is(err, lfsdfs.ErrNotDir) {
			t.Errorf("DirOpen on file = %v, want ErrNotDir", err)
		}
		if err := engine.Remove(dir); !errors.Is(err, lfsdfs.ErrNotEmpty) {
			t.Errorf("Remove non-empty = %v, want ErrNotEmpty", err)
		}

		entries, err := lfsdfs.ReadDir(engine, dir)
		if err != nil {
			t.Fatalf("ReadDir: %v", err)
		}
		if len(entries) != 3 {
			t.Errorf("ReadDir: got %d entries, want 3", len(entries))
		}

		removeTree(t, engine, dir)
	})

	t.Run("Rename", func(t *testing.T) {
		src := "/rename_src.txt"
		dst := "/rename_dst.txt"
		writeFile(t, engine, src, "data")
		writeFile(t, engine, dst, "old contents")

		if err := engine.Rename(src, dst); err != nil {
			t.Fatalf("Rename: %v", err)
		}

		var info lfsdfs.Info
		if err := engine.Stat(src, &info); !errors.Is(err, lfsdfs.ErrNoEnt) {
			t.Errorf("Stat src after Rename = %v, want ErrNoEnt", err)
		}
		if err := engine.Stat(dst, &info); err != nil {
			t.Fatalf("Stat dst: %v", err)
		}
		if info.Size != 4 {
			t.Errorf("dst size = %d, want 4", info.Size)
		}
		if err := engine.Rename("/missing.txt", "/other.txt"); !errors.Is(err, lfsdfs.ErrNoEnt) {
			t.Errorf("Rename missing = %v, want ErrNoEnt", err)
		}
		_ = engine.Remove(dst)
	})

	t.Run("Rename_Dir", func(t *testing.T) {
		mkdir(t, engine, "/olddir")
		writeFile(t, engine, "/olddir/f.txt", "f")

		if err := engine.Rename("/olddir", "/olddir/inside"); !errors.Is(err, lfsdfs.ErrInval) {
			t.Errorf("Rename into itself = %v, want ErrInval", err)
		}
		if err := engine.Rename("/olddir", "/newdir"); err != nil {
			t.Fatalf("Rename dir: %v", err)
		}
		var info lfsdfs.Info
		if err := engine.Stat("/newdir/f.txt", &info); err != nil {
			t.Fatalf("Stat moved child: %v", err)
		}
		if info.Size != 1 {
			t.Errorf("moved child size = %d, want 1", info.Size)
		}
		removeTree(t, engine, "/newdir")
	})

	t.Run("Rename_Open_Handle", func(t *testing.T) {
		h, err := engine.Open("/open_src.txt", lfsdfs.OWrOnly|lfsdfs.OCreat)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if _, err := engine.Write(h, []byte("hello")); err != nil {
			t.Fatalf("Write: %v", err)
		}
		mkdir(t, engine, "/open_dir")
		hc, err := engine.Open("/open_dir/f.txt", lfsdfs.OWrOnly|lfsdfs.OCreat)
		if err != nil {
			t.Fatalf("Open child: %v", err)
		}
		if _, err := engine.Write(hc, []byte("abc")); err != nil {
			t.Fatalf("Write child: %v", err)
		}

		if err := engine.Rename("/open_src.txt", "/open_dst.txt"); err != nil {
			t.Fatalf("Rename: %v", err)
		}
		if err := engine.Rename("/open_dir", "/moved_dir"); err != nil {
			t.Fatalf("Rename dir: %v", err)
		}

		var info lfsdfs.Info
		if err := engine.Stat("/open_src.txt", &info); !errors.Is(err, lfsdfs.ErrNoEnt) {
			t.Errorf("Stat old name with open handle = %v, want ErrNoEnt", err)
		}
		if err := engine.Stat("/open_dst.txt", &info); err != nil || info.Size != 5 {
			t.Errorf("Stat new name = %+v, %v, want size 5", info, err)
		}
		if err := engine.Stat("/open_dir/f.txt", &info); !errors.Is(err, lfsdfs.ErrNoEnt) {
			t.Errorf("Stat old child with open handle = %v, want ErrNoEnt", err)
		}
		if err := engine.Stat("/moved_dir/f.txt", &info); err != nil || info.Size != 3 {
			t.Errorf("Stat moved child = %+v, %v, want size 3", info, err)
		}

		if err := engine.Close(h); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if err := engine.Close(hc); err != nil {
			t.Fatalf("Close child: %v", err)
		}
		if err := engine.Stat("/open_src.txt", &info); !errors.Is(err, lfsdfs.ErrNoEnt) {
			t.Errorf("Stat old name after Close = %v, want ErrNoEnt", err)
		}
		if got := readFile(t, engine, "/open_dst.txt"); got != "hello" {
			t.Errorf("renamed content = %q, want %q", got, "hello")
		}
		if got := readFile(t, engine, "/moved_dir/f.txt"); got != "abc" {
			t.Errorf("moved child content = %q, want %q", got, "abc")
		}

		_ = engine.Remove("/open_dst.txt")
		removeTree(t, engine, "/moved_dir")
	})

	t.Run("Remove_Open_Handle", func(t *testing.T) {
		var before, st lfsdfs.FSStat
		if err := engine.FSStat(&before); err != nil {
			t.Fatalf("FSStat: %v", err)
		}

		h, err := engine.Open("/open_gone.txt", lfsdfs.ORdWr|lfsdfs.OCreat)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if _, err := engine.Write(h, []byte("hello")); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if err := engine.Remove("/open_gone.txt"); err != nil {
			t.Fatalf("Remove: %v", err)
		}

		var info lfsdfs.Info
		if err := engine.Stat("/open_gone.txt", &info); !errors.Is(err, lfsdfs.ErrNoEnt) {
			t.Errorf("Stat removed file with open handle = %v, want ErrNoEnt", err)
		}
		if err := engine.FSStat(&st); err != nil {
			t.Fatalf("FSStat: %v", err)
		}
		if st.BlocksUsed != before.BlocksUsed {
			t.Errorf("BlocksUsed with removed file open = %d, want %d", st.BlocksUsed, before.BlocksUsed)
		}

		if err := engine.Close(h); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if err := engine.Stat("/open_gone.txt", &info); !errors.Is(err, lfsdfs.ErrNoEnt) {
			t.Errorf("Stat removed file after Close = %v, want ErrNoEnt", err)
		}
		if err := engine.FSStat(&st); err != nil {
			t.Fatalf("FSStat: %v", err)
		}
		if st.BlocksUsed != before.BlocksUsed {
			t.Errorf("BlocksUsed after Close = %d, want %d", st.BlocksUsed, before.BlocksUsed)
		}
	})

	t.Run("Walk", func(t *testing.T) {
		mkdir(t, engine, "/walk")
		mkdir(t, engine, "/walk/sub")
		writeFile(t, engine, "/walk/f1.txt", "1")
		writeFile(t, engine, "/walk/sub/f2.txt", "2")

		var files []string
		err := lfsdfs.Walk(engine, "/walk", func(path string, info *lfsdfs.Info, err error) error {
			if err != nil {
				return err
			}
			if info.Type == lfsdfs.TypeReg {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Walk: %v", err)
		}
		if len(files) != 2 {
			t.Errorf("Walk found %d files, want 2: %v", len(files), files)
		}

		removeTree(t, engine, "/walk")
	})

	t.Run("FSStat_Usage", func(t *testing.T) {
		var st lfsdfs.FSStat
		if err := engine.FSStat(&st); err != nil {
			t.Fatalf("FSStat: %v", err)
		}
		before := st.BlocksUsed

		mkdir(t, engine, "/usage")
		writeFile(t, engine, "/usage/one", strings.Repeat("u", int(st.BlockSize)+1))

		if err := engine.FSStat(&st); err != nil {
			t.Fatalf("FSStat: %v", err)
		}
		if got := st.BlocksUsed - before; got != 3 {
			t.Errorf("used blocks grew by %d, want 3 (dir + two data blocks)", got)
		}
		if st.BlocksFree() != st.BlockCount-st.BlocksUsed {
			t.Errorf("BlocksFree = %d, want %d", st.BlocksFree(), st.BlockCount-st.BlocksUsed)
		}
		removeTree(t, engine, "/usage")
	})

	t.Run("No_Space", func(t *testing.T) {
		var st lfsdfs.FSStat
		if err := engine.FSStat(&st); err != nil {
			t.Fatalf("FSStat: %v", err)
		}
		path := "/huge.bin"
		h, err := engine.Open(path, lfsdfs.OWrOnly|lfsdfs.OCreat)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		big := make([]byte, int(st.BlockSize)*int(st.BlockCount+1))
		if _, err := engine.Write(h, big); !errors.Is(err, lfsdfs.ErrNoSpc) {
			t.Errorf("Write beyond capacity = %v, want ErrNoSpc", err)
		}
		_ = engine.Close(h)
		_ = engine.Remove(path)
	})

	t.Run("Handle_Reuse", func(t *testing.T) {
		h1, err := engine.Open("/h1", lfsdfs.OWrOnly|lfsdfs.OCreat)
		if err != nil {
			t.Fatalf("Open h1: %v", err)
		}
		h2, err := engine.Open("/h2", lfsdfs.OWrOnly|lfsdfs.OCreat)
		if err != nil {
			t.Fatalf("Open h2: %v", err)
		}
		if h1 == h2 {
			t.Fatalf("handles collide: %d", h1)
		}
		_ = engine.Close(h1)
		h3, err := engine.Open("/h3", lfsdfs.OWrOnly|lfsdfs.OCreat)
		if err != nil {
			t.Fatalf("Open h3: %v", err)
		}
		if h3 != h1 {
			t.Errorf("reopened handle = %d, want freed handle %d", h3, h1)
		}
		_ = engine.Close(h2)
		_ = engine.Close(h3)
		for _, p := range []string{"/h1", "/h2", "/h3"} {
			_ = engine.Remove(p)
		}
	})

	t.Run("Unmount_Releases_Handles", func(t *testing.T) {
		writeFile(t, engine, "/persist.txt", "kept")
		h, err := engine.Open("/persist.txt", lfsdfs.ORdOnly)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if err := engine.Unmount(); err != nil {
			t.Fatalf("Unmount: %v", err)
		}
		if err := engine.Mount(false); err != nil {
			t.Fatalf("Mount: %v", err)
		}
		if _, err := engine.Read(h, make([]byte, 4)); !errors.Is(err, lfsdfs.ErrBadF) {
			t.Errorf("Read on handle from previous mount = %v, want ErrBadF", err)
		}
		if got := readFile(t, engine, "/persist.txt"); got != "kept" {
			t.Errorf("content after remount = %q, want %q", got, "kept")
		}
		_ = engine.Remove("/persist.txt")
	})

	t.Run("Read_Only_Mount", func(t *testing.T) {
		if err := engine.Unmount(); err != nil {
			t.Fatalf("Unmount: %v", err)
		}
		if err := engine.Mount(true); err != nil {
			t.Fatalf("Mount read-only: %v", err)
		}
		defer func() {
			_ = engine.Unmount()
			_ = engine.Mount(false)
		}()

		if err := engine.Mkdir("/ro"); err == nil {
			t.Error("Mkdir on read-only mount: expected error")
		}
		if _, err := engine.Open("/ro.txt", lfsdfs.OWrOnly|lfsdfs.OCreat); err == nil {
			t.Error("Open for write on read-only mount: expected error")
		}
	})
}

func writeFile(t *testing.T, engine lfsdfs.Engine, path, content string) {
	t.Helper()
	h, err := engine.Open(path, lfsdfs.OWrOnly|lfsdfs.OCreat|lfsdfs.OTrunc)
	if err != nil {
		t.Fatalf("Open %s: %v", path, err)
	}
	if n, err := engine.Write(h, []byte(content)); err != nil || n != len(content) {
		t.Fatalf("Write %s = %d, %v", path, n, err)
	}
	if err := engine.Close(h); err != nil {
		t.Fatalf("Close %s: %v", path, err)
	}
}

func readFile(t *testing.T, engine lfsdfs.Engine, path string) string {
	t.Helper()
	h, err := engine.Open(path, lfsdfs.ORdOnly)
	if err != nil {
		t.Fatalf("Open %s: %v", path, err)
	}
	defer func() { _ = engine.Close(h) }()

	var out bytes.Buffer
	buf := make([]byte, 64)
	for {
		n, err := engine.Read(h, buf)
		if err != nil {
			t.Fatalf("Read %s: %v", path, err)
		}
		if n == 0 {
			return out.String()
		}
		out.Write(buf[:n])
	}
}

func mkdir(t *testing.T, engine lfsdfs.Engine, path string) {
	t.Helper()
	if err := engine.Mkdir(path); err != nil {
		t.Fatalf("Mkdir %s: %v", path, err)
	}
}

// removeTree deletes root bottom-up through the engine API.
func removeTree(t *testing.T, engine lfsdfs.Engine, root string) {
	t.Helper()
	var paths []string
	err := lfsdfs.Walk(engine, root, func(path string, _ *lfsdfs.Info, err error) error {
		if err != nil {
			return err
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk %s: %v", root, err)
	}
	for i := len(paths) - 1; i >= 0; i-- {
		if err := engine.Remove(paths[i]); err != nil {
			t.Fatalf("Remove %s: %v", paths[i], err)
		}
	}
}
