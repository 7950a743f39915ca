package status

import "github.com/mogaika/glevel_browser/pack/glevel"

// LevelInfoFor summarizes a parse outcome. res may be nil when err is set.
func LevelInfoFor(name string, res *glevel.Result, err error) LevelInfo {
	info := LevelInfo{Name: name}
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Warnings = len(res.Diagnostics.Warnings)
	info.UnresolvedTiles = res.Diagnostics.UnresolvedTiles
	info.SkippedPairs = res.Diagnostics.SkippedPairs
	return info
}
