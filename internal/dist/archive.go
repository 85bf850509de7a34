package dist

import (
	"archive/tar"
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
)

// writeZip writes files, relative to dir, into a zip archive under the
// release directory.
func writeZip(out io.Writer, dir, release string, files []string) error {
	w := zip.NewWriter(out)
	for _, file := range files {
		if err := addZip(w, dir, release, file); err != nil {
			return err
		}
	}
	return w.Close()
}

func addZip(w *zip.Writer, dir, release, file string) error {
	path := filepath.Join(dir, filepath.FromSlash(file))
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return nil
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = entryName(release, file)
	header.Method = zip.Deflate

	writer, err := w.CreateHeader(header)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(writer, f)
	return err
}

// writeTarXZ writes files, relative to dir, into an xz compressed tar
// archive under the release directory.
func writeTarXZ(out io.Writer, dir, release string, files []string) error {
	xw, err := xz.NewWriter(out)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(xw)
	for _, file := range files {
		if err := addTar(tw, dir, release, file); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return xw.Close()
}

func addTar(tw *tar.Writer, dir, release, file string) error {
	path := filepath.Join(dir, filepath.FromSlash(file))
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return nil
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = entryName(release, file)

	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(tw, f)
	return err
}
