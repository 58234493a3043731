package sandbox

import (
	"fmt"
	"regexp"
)

// saveCallPattern matches the artifact-save call generated scripts are
// instructed to make: save_artifact("<literal path>"). The literal is what
// gets redirected.
var saveCallPattern = regexp.MustCompile(`save_artifact\(\s*["'][^"']*["']\s*\)`)

// InjectOutputPath rewrites the script so its artifact-save call targets
// outputPath. Every save_artifact call with a literal filename is
// redirected; if the script contains no such call, one is appended so the
// executor's artifact check has something to verify.
func InjectOutputPath(script, outputPath string) string {
	redirected := fmt.Sprintf("save_artifact(%q)", outputPath)
	if saveCallPattern.MatchString(script) {
		return saveCallPattern.ReplaceAllString(script, redirected)
	}
	return script + "\n" + redirected + "\n"
}
