// Package collectstatic copies the project "static" directory to the static
// root served by the web server. Unchanged files are skipped using a content
// hash cache and compressible files get precompressed ".gz" siblings.
package collectstatic

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/cespare/xxhash/v2"
	"github.com/jpillora/longestcommon"
	"github.com/klauspost/pgzip"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/project"
	"github.com/homewire/x10/internal/pkg/project/cachefile"
	"github.com/homewire/x10/internal/pkg/project/ignore"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// Text formats that benefit from a precompressed ".gz" sibling.
var compressibleExts = map[string]bool{
	".css":  true,
	".html": true,
	".js":   true,
	".json": true,
	".map":  true,
	".svg":  true,
	".txt":  true,
	".xml":  true,
}

type Options struct {
	Force    bool // copy all files, ignore the hash cache
	Gzip     bool // write ".gz" siblings for compressible files
	Progress bool // draw a progress bar, for interactive terminals
}

type Result struct {
	Copied     int
	Unchanged  int
	Compressed int
	CopiedSize datasize.ByteSize
}

type dependencies interface {
	Logger() log.Logger
	Stderr() io.Writer
}

func Run(ctx context.Context, fs filesystem.Fs, targetFs filesystem.Fs, o Options, d dependencies) (*Result, error) {
	logger := d.Logger()

	if !fs.IsDir(project.StaticDir) {
		return nil, errors.Errorf(`the "%s" directory not found`, project.StaticDir)
	}

	ignoreFile, err := ignore.Load(fs)
	if err != nil {
		return nil, err
	}
	oldCache, err := cachefile.Load(fs)
	if err != nil {
		return nil, err
	}

	// List the static files, the ignored ones are left out
	files := make([]string, 0)
	err = fs.Walk(project.StaticDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel := filesystem.ToSlash(filesystem.Rel(project.StaticDir, path))
		if rel == "." {
			return nil
		}
		if ignoreFile.IsIgnored(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.IsDir() {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.PrefixError(err, "cannot list the static files")
	}

	var bar *progressbar.ProgressBar
	if o.Progress {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(d.Stderr()),
			progressbar.OptionSetDescription("collecting"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	// Copy the new and modified files
	type gzipJob struct {
		path    string
		content string
	}
	result := &Result{}
	newCache := cachefile.New()
	copied := make([]string, 0)
	toCompress := make([]gzipJob, 0)
	for _, rel := range files {
		file, err := fs.ReadFile(filesystem.NewFileDef(filesystem.Join(project.StaticDir, rel)).SetDescription("static"))
		if err != nil {
			return nil, err
		}

		hash := strconv.FormatUint(xxhash.Sum64String(file.Content), 16)
		newCache.SetHash(rel, hash)
		compressible := o.Gzip && compressibleExts[strings.ToLower(filepath.Ext(rel))]

		if oldHash, found := oldCache.Hash(rel); !o.Force && found && oldHash == hash && targetFs.IsFile(rel) {
			result.Unchanged++
			if compressible && !targetFs.IsFile(rel+".gz") {
				toCompress = append(toCompress, gzipJob{path: rel, content: file.Content})
			}
		} else {
			if err := targetFs.WriteFile(filesystem.NewRawFile(rel, file.Content)); err != nil {
				return nil, err
			}
			result.Copied++
			result.CopiedSize += datasize.ByteSize(len(file.Content))
			copied = append(copied, rel)
			if compressible {
				toCompress = append(toCompress, gzipJob{path: rel, content: file.Content})
			}
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	// Precompress in parallel
	grp, _ := errgroup.WithContext(ctx)
	grp.SetLimit(runtime.NumCPU())
	for _, job := range toCompress {
		grp.Go(func() error {
			var buf bytes.Buffer
			w := pgzip.NewWriter(&buf)
			if _, err := w.Write([]byte(job.content)); err != nil {
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}
			return targetFs.WriteFile(filesystem.NewRawFile(job.path+".gz", buf.String()))
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, errors.PrefixError(err, "compression failed")
	}
	result.Compressed = len(toCompress)

	// Files removed from the source are dropped from the cache too
	if err := newCache.Save(fs); err != nil {
		return nil, err
	}

	if len(copied) > 0 {
		logger.Debugf("Copied %s", describePaths(copied))
	}
	logger.Infof(
		"Copied %d files (%s), %d unchanged, %d compressed.",
		result.Copied, result.CopiedSize.HumanReadable(), result.Unchanged, result.Compressed,
	)
	return result, nil
}

// describePaths compacts a file listing for the log,
// the shared directory prefix is printed only once.
func describePaths(paths []string) string {
	if len(paths) == 1 {
		return paths[0]
	}
	prefix := longestcommon.Prefix(paths)
	if idx := strings.LastIndex(prefix, "/"); idx >= 0 {
		prefix = prefix[:idx+1]
	} else {
		prefix = ""
	}
	if prefix == "" {
		return strings.Join(paths, ", ")
	}
	trimmed := make([]string, len(paths))
	for i, path := range paths {
		trimmed[i] = strings.TrimPrefix(path, prefix)
	}
	return prefix + "{" + strings.Join(trimmed, ", ") + "}"
}
