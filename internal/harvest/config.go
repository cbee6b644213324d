package harvest

import (
	"path"
	"path/filepath"
	"strings"
)

// Config bounds one harvest pass over a directory tree (§4.G): which
// paths to skip, how big a file can be before it's skipped outright, how
// many top-level functions a file must contain to be worth harvesting,
// and the overall per-run file cap.
type Config struct {
	IgnorePatterns       []string
	MaxFileSizeBytes     int64
	MinFunctionsPerFile  int
	MaxFiles             int
}

// DefaultConfig matches §4.G's defaults.
func DefaultConfig() Config {
	return Config{
		IgnorePatterns:      []string{".git", "vendor", "node_modules", "dist", "build"},
		MaxFileSizeBytes:    50 * 1024,
		MinFunctionsPerFile: 1,
		MaxFiles:            200,
	}
}

func normalizePattern(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimSuffix(p, "/")
	p = strings.TrimSuffix(p, "\\")
	return filepath.ToSlash(p)
}

// isIgnored reports whether a workspace-relative path should be skipped,
// matching either a bare name, a path prefix, or a glob pattern.
func isIgnored(rel, name string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	for _, raw := range patterns {
		p := normalizePattern(raw)
		if p == "" {
			continue
		}
		if strings.ContainsAny(p, "*?[]") {
			if ok, _ := path.Match(p, rel); ok {
				return true
			}
			if strings.HasSuffix(p, "/*") {
				prefix := strings.TrimSuffix(p, "/*")
				if strings.HasPrefix(rel, prefix+"/") {
					return true
				}
			}
			continue
		}
		if name == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	return false
}
