package fingerprint

import (
	"regexp"
	"strings"
)

// excludePatterns mirrors the build-artifact exclusion list a compiled
// Android/JVM classes tree needs before it can be fingerprinted
// deterministically: generated resource/DI glue and dex output never
// contributes to the integrity surface.
var excludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^R\.class$`),
	regexp.MustCompile(`^R\$.*\.class$`),
	regexp.MustCompile(`^BuildConfig\.class$`),
	regexp.MustCompile(`^.*\$\$.*\.class$`),
	regexp.MustCompile(`^.*_Factory\.class$`),
	regexp.MustCompile(`^.*_MembersInjector\.class$`),
	regexp.MustCompile(`^Hilt_.*\.class$`),
}

// isExcluded reports whether a class-file base name (or full relative path,
// for the META-INF/.dex checks) should be left out of the fingerprint.
// extra is the union of user-supplied patterns configured on top of the
// defaults above; a class file matching any of them is also excluded.
func isExcluded(baseName, relPath string, extra []*regexp.Regexp) bool {
	if strings.Contains(relPath, "META-INF") {
		return true
	}
	if strings.HasSuffix(relPath, ".dex") {
		return true
	}
	for _, pattern := range excludePatterns {
		if pattern.MatchString(baseName) {
			return true
		}
	}
	for _, pattern := range extra {
		if pattern.MatchString(baseName) {
			return true
		}
	}
	return false
}
