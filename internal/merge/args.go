package merge

import (
	"path/filepath"
	"strings"

	"submerge/internal/registry"
)

// OutputPath derives the merged container path: the video's directory and
// base name with its extension replaced by ".<suffix>.<ext>". A name that is
// only a leading dot segment (".hidden") counts as having no extension.
func OutputPath(videoPath, suffix, ext string) string {
	dir := filepath.Dir(videoPath)
	base := filepath.Base(videoPath)
	if oldExt := filepath.Ext(base); oldExt != "" && oldExt != base {
		base = strings.TrimSuffix(base, oldExt)
	}
	suffix = strings.Trim(strings.TrimSpace(suffix), ".")
	ext = strings.Trim(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = "mkv"
	}
	name := base
	if suffix != "" {
		name += "." + suffix
	}
	name += "." + ext
	return filepath.Join(dir, name)
}

// BuildArgs returns the mkvmerge argument vector. Each --language flag binds
// to track 0 of the file that immediately follows it.
func BuildArgs(req registry.MergeRequest, outputPath string) []string {
	lang := "0:" + req.Language()
	return []string{
		"-o", outputPath,
		"--language", lang,
		req.VideoPath(),
		"--language", lang,
		req.SubtitlePath(),
	}
}
