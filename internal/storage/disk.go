package storage

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Footprint is the on-disk size of each named data path.
type Footprint struct {
	Paths map[string]int64 `json:"paths"`
	Total int64            `json:"total_bytes"`
}

// DiskFootprint sums the size of each named path. A path may be a file, in which case the
// SQLite -wal and -shm companions are included, or a directory, which is walked recursively.
// Missing paths count as zero.
func DiskFootprint(paths map[string]string) (*Footprint, error) {
	fp := &Footprint{Paths: make(map[string]int64, len(paths))}
	for name, p := range paths {
		if p == "" {
			continue
		}
		n, err := pathSize(p)
		if err != nil {
			return nil, err
		}
		for _, suffix := range []string{"-wal", "-shm"} {
			extra, err := pathSize(p + suffix)
			if err != nil {
				return nil, err
			}
			n += extra
		}
		fp.Paths[name] = n
		fp.Total += n
	}
	return fp, nil
}

func pathSize(p string) (int64, error) {
	info, err := os.Stat(p)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}
	var total int64
	err = filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		total += fi.Size()
		return nil
	})
	return total, err
}
