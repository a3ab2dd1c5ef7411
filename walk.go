package lfsdfs

import (
	"path"
	"path/filepath"
)

// WalkFunc is the callback for Walk. It is called for each file or directory
// visited. If it returns filepath.SkipDir for a directory, Walk skips that
// directory's contents.
type WalkFunc func(path string, info *Info, err error) error

// Walk walks the file tree rooted at root, calling fn for each file or
// directory in the tree, including root. The engine must be mounted.
func Walk(engine Engine, root string, fn WalkFunc) error {
	var info Info
	err := engine.Stat(root, &info)
	if err != nil {
		err = fn(root, nil, err)
	} else {
		err = walkDir(engine, root, &info, fn)
	}
	if err == filepath.SkipDir {
		return nil
	}
	return err
}

func walkDir(engine Engine, p string, info *Info, fn WalkFunc) error {
	if info.Type != TypeDir {
		return fn(p, info, nil)
	}

	err := fn(p, info, nil)
	if err != nil {
		if err == filepath.SkipDir {
			return nil
		}
		return err
	}

	entries, err := ReadDir(engine, p)
	if err != nil {
		err = fn(p, nil, err)
		if err != nil {
			if err == filepath.SkipDir {
				return nil
			}
			return err
		}
	}

	for i := range entries {
		err = walkDir(engine, path.Join(p, entries[i].Name), &entries[i], fn)
		if err != nil {
			if err == filepath.SkipDir {
				return nil
			}
			return err
		}
	}
	return nil
}

// ReadDir returns every entry of the directory at p, without "." and "..".
func ReadDir(engine Engine, p string) ([]Info, error) {
	h, err := engine.DirOpen(p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = engine.DirClose(h) }()

	var entries []Info
	for {
		var info Info
		more, err := engine.DirRead(h, &info)
		if err != nil {
			return entries, err
		}
		if !more {
			return entries, nil
		}
		if info.Name == "." || info.Name == ".." {
			continue
		}
		entries = append(entries, info)
	}
}
