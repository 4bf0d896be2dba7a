package fetch

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/ulikunitz/xz"

	"github.com/tlsa/sgdk-helper/internal/paths"
	"github.com/tlsa/sgdk-helper/internal/registry"
)

// Local file name for a dependency's downloaded archive.
func archiveName(dep registry.Descriptor) string {
	if u, err := url.Parse(dep.Location); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(dep.Location)
}

func (f *Fetcher) fetchArchive(ctx context.Context, dep registry.Descriptor, status Status) error {
	archive := filepath.Join(f.cfg.Src, archiveName(dep))

	fetched, err := f.download(ctx, dep, archive, status)
	if err != nil {
		return err
	}

	dir := f.cfg.SourceDir(dep.Name)
	if !fetched {
		if _, err := os.Stat(dir); err == nil {
			slog.Info("source up to date", "dep", dep.Name)
			return nil
		}
	}
	return f.extract(dep, archive, dir)
}

// Downloads the archive unless the local copy is already current,
// reporting whether new content was retrieved.
//
// Currency is decided by the remote through a conditional request
// keyed on the local file's modification time.
func (f *Fetcher) download(ctx context.Context, dep registry.Descriptor, archive string, status Status) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dep.Location, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if status != StatusAbsent {
		if info, err := os.Stat(archive); err == nil {
			req.Header.Set("If-Modified-Since",
				info.ModTime().UTC().Format(http.TimeFormat))
		}
	}

	slog.Info("downloading", "dep", dep.Name, "url", dep.Location)
	resp, err := f.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		slog.Info("download skipped, not modified", "dep", dep.Name)
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("%w: %s: %s", ErrFetch, dep.Location, resp.Status)
	}

	if err := f.save(resp, dep, archive); err != nil {
		return false, err
	}
	return true, nil
}

// Writes the response body to the archive path, verifying the digest
// when the descriptor pins one. The remote modification time is copied
// onto the file so the next conditional request compares correctly.
func (f *Fetcher) save(resp *http.Response, dep registry.Descriptor, archive string) error {
	tmp, err := os.CreateTemp(f.cfg.Src, archiveName(dep)+".*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	var body io.Reader = resp.Body
	var verifier digest.Verifier
	if dep.Digest != "" {
		verifier = dep.Digest.Verifier()
		body = io.TeeReader(body, verifier)
	}

	if _, err := io.Copy(tmp, body); err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if verifier != nil && !verifier.Verified() {
		return fmt.Errorf("%w: %s: want %s", ErrDigest, dep.Name, dep.Digest)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if err := os.Rename(tmp.Name(), archive); err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}

	if t, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		if err := os.Chtimes(archive, t, t); err != nil {
			return fmt.Errorf("%w: %w", ErrFetch, err)
		}
	}
	return nil
}

// Unpacks the archive into the dependency's source directory, dropping
// the archive's single top level directory so the tree lands at a
// stable path. Any previous tree is replaced wholesale so content
// removed upstream does not linger.
func (f *Fetcher) extract(dep registry.Descriptor, archive, dir string) error {
	slog.Info("extracting", "dep", dep.Name, "archive", filepath.Base(archive))

	file, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer file.Close()

	content, err := decompress(file, archive)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if err := untar(content, dir); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFetch, dep.Name, err)
	}
	return nil
}

// Picks a decompressor from the archive name.
func decompress(r io.Reader, name string) (io.Reader, error) {
	switch {
	case strings.HasSuffix(name, ".tar.xz"):
		return xz.NewReader(r)
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return gzip.NewReader(r)
	case strings.HasSuffix(name, ".tar"):
		return r, nil
	}
	return nil, fmt.Errorf("%w: unsupported archive format %q", ErrFetch, name)
}

func untar(r io.Reader, dir string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		rel, ok := stripRoot(hdr.Name)
		if !ok {
			continue
		}
		if !filepath.IsLocal(rel) {
			return fmt.Errorf("unsafe path %q in archive", hdr.Name)
		}
		target := filepath.Join(dir, rel)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(hdr.Linkname) {
				return fmt.Errorf("unsafe link target %q in archive", hdr.Linkname)
			}
			if err := linkEntry(target, func(target string) error {
				return os.Symlink(hdr.Linkname, target)
			}); err != nil {
				return err
			}
		case tar.TypeLink:
			source, ok := stripRoot(hdr.Linkname)
			if !ok || !filepath.IsLocal(source) {
				return fmt.Errorf("unsafe link target %q in archive", hdr.Linkname)
			}
			if err := linkEntry(target, func(target string) error {
				return os.Link(filepath.Join(dir, source), target)
			}); err != nil {
				return err
			}
		}
	}
}

// Writes one regular file entry, keeping the archived permissions so
// configure scripts stay executable.
func writeEntry(target string, content io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), paths.DefaultDirMode); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, content); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Creates a link entry, replacing any stale one from a prior extract.
func linkEntry(target string, link func(target string) error) error {
	if err := os.MkdirAll(filepath.Dir(target), paths.DefaultDirMode); err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return link(target)
}

// Drops the archive's leading path element, so an entry like
// binutils-2.42/configure lands at configure. Entries with nothing
// below the root are skipped.
func stripRoot(name string) (string, bool) {
	_, rest, found := strings.Cut(path.Clean(name), "/")
	if !found || rest == "" {
		return "", false
	}
	return rest, true
}
