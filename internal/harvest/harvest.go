// Package harvest walks a local directory tree and turns its top-level
// functions into harvested
// candidate patterns (§4.G). Traversal order is deterministic -- lexical
// path order -- so repeated harvests of an unchanged tree produce
// identical candidate sets.
package harvest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codenerd/internal/lexical"
	"codenerd/internal/logging"
	"codenerd/internal/model"
)

// Cloner fetches a remote repository into a local directory. GitCloner
// implements it by running the git binary. Scan does not clone: it walks
// only the local root it is given and never calls a Cloner.
type Cloner interface {
	Clone(ctx context.Context, url, ref, destDir string) error
}

var extToLanguage = map[string]model.Language{
	".js": model.LanguageJS, ".jsx": model.LanguageJS, ".mjs": model.LanguageJS,
	".ts": model.LanguageTS, ".tsx": model.LanguageTS,
	".py": model.LanguagePy,
	".go": model.LanguageGo,
	".rs": model.LanguageRust,
}

func languageForPath(path string) model.Language {
	return LanguageForExt(path)
}

// LanguageForExt maps a file path's extension to a supported language,
// falling back to LanguageOther for anything unrecognized. Exported so
// callers outside the scan loop (e.g. a single-file submit command) can
// reuse the same extension table.
func LanguageForExt(path string) model.Language {
	if lang, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return model.LanguageOther
}

// Harvested is one top-level function pulled out of a file during a scan.
type Harvested struct {
	Path     string
	Name     string
	Code     string
	Language model.Language
}

// Scan walks root in deterministic lexical order, skipping ignored
// directories and over-size files, and extracts every top-level function
// span from every recognized source file, up to cfg.MaxFiles files.
func Scan(root string, cfg Config) ([]Harvested, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if info.IsDir() {
			if isIgnored(rel, info.Name(), cfg.IgnorePatterns) && rel != "." {
				return filepath.SkipDir
			}
			return nil
		}
		if isIgnored(rel, info.Name(), cfg.IgnorePatterns) {
			return nil
		}
		if languageForPath(path) == model.LanguageOther {
			return nil
		}
		if info.Size() > cfg.MaxFileSizeBytes {
			logging.HarvestDebug("skipping oversize file %s (%d bytes)", rel, info.Size())
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("harvest: walk %s: %w", root, err)
	}

	sort.Strings(files)
	if len(files) > cfg.MaxFiles {
		logging.Get(logging.CategoryHarvest).Warn("harvest: %d files exceed max %d, truncating", len(files), cfg.MaxFiles)
		files = files[:cfg.MaxFiles]
	}

	var out []Harvested
	for _, path := range files {
		lang := languageForPath(path)
		src, err := os.ReadFile(path)
		if err != nil {
			logging.Get(logging.CategoryHarvest).Warn("harvest: read %s: %v", path, err)
			continue
		}

		spans, err := lexical.ExtractFunctionSpans(string(src), lang)
		if err != nil {
			logging.HarvestDebug("harvest: malformed span in %s: %v", path, err)
			continue
		}
		if len(spans) < cfg.MinFunctionsPerFile {
			continue
		}
		for _, span := range spans {
			out = append(out, Harvested{
				Path:     path,
				Name:     span.Name,
				Code:     string(src)[span.Start:span.End],
				Language: lang,
			})
		}
	}

	logging.Harvest("harvested %d functions from %d files under %s", len(out), len(files), root)
	return out, nil
}

// ToCandidate builds a submission-ready candidate from a harvested
// function, tagging its provenance with the source file path.
func ToCandidate(h Harvested, id string) model.Candidate {
	return model.Candidate{
		Pattern: model.Pattern{
			ID:       id,
			Name:     h.Name,
			Code:     h.Code,
			Language: h.Language,
			Provenance: &model.Provenance{
				SourceFile: h.Path,
			},
		},
		GenerationMethod: model.MethodHarvest,
		TestStatus:       model.TestAbsent,
		State:            model.StateSubmitted,
	}
}
