package parser

import (
	"errors"
	"path"
	"strings"

	"github.com/mapmedia/mapview/internal/model/core"
	"github.com/mapmedia/mapview/internal/util"
)

var (
	errMediaPathMissing = errors.New("media path is empty")
	errMediaPathEscapes = errors.New("media path escapes the media root")
)

var imageExts = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {},
	".tiff": {}, ".tif": {}, ".heic": {}, ".webp": {},
}

var videoMIME = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".wmv":  "video/x-ms-wmv",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".ogv":  "video/ogg",
}

// MediaKind classifies a media reference by its extension.
func MediaKind(ref string) core.Kind {
	ext := strings.ToLower(path.Ext(ref))
	if _, ok := imageExts[ext]; ok {
		return core.KindImage
	}
	if _, ok := videoMIME[ext]; ok {
		return core.KindVideo
	}
	return core.KindOther
}

// VideoMIME returns the MIME type for a video reference, or "" for other
// files.
func VideoMIME(ref string) string {
	return videoMIME[strings.ToLower(path.Ext(ref))]
}

// VideoTypes returns a copy of the extension -> MIME table for videos.
func VideoTypes() map[string]string {
	out := make(map[string]string, len(videoMIME))
	for k, v := range videoMIME {
		out[k] = v
	}
	return out
}

// NormalizeMediaRef turns a raw media_path cell into a slash-separated path
// relative to root. Absolute paths under root are made relative; other
// absolute paths keep only the file name. Relative paths that climb out of
// root are rejected.
func NormalizeMediaRef(root, raw string) (string, error) {
	p := util.SlashPath(strings.TrimSpace(raw))
	if p == "" {
		return "", errMediaPathMissing
	}

	if isAbs(p) {
		r := util.SlashPath(strings.TrimSpace(root))
		if r != "" && isAbs(r) {
			r = path.Clean(r)
			cp := path.Clean(p)
			if strings.HasPrefix(strings.ToLower(cp), strings.ToLower(r)+"/") {
				return cp[len(r)+1:], nil
			}
		}
		if base := path.Base(p); base != "/" && base != "." {
			return base, nil
		}
		return "", errMediaPathMissing
	}

	cp := path.Clean(p)
	if cp == ".." || strings.HasPrefix(cp, "../") {
		return "", errMediaPathEscapes
	}
	// exports often repeat the root directory name
	if r := path.Base(util.SlashPath(root)); r != "" && r != "." && r != "/" {
		cp = strings.TrimPrefix(cp, r+"/")
	}
	if cp == "." {
		return "", errMediaPathMissing
	}
	return cp, nil
}

// isAbs reports whether p is rooted, including Windows drive paths.
func isAbs(p string) bool {
	if strings.HasPrefix(p, "/") {
		return true
	}
	return len(p) >= 3 && p[1] == ':' && p[2] == '/' &&
		((p[0] >= 'a' && p[0] <= 'z') || (p[0] >= 'A' && p[0] <= 'Z'))
}
