package runner

import "regexp"

var (
	sudoPattern        = regexp.MustCompile(`(^|[\s;&|(])sudo\s`)
	sudoRewritePattern = regexp.MustCompile(`(^|[\s;&|(])sudo\s+(?:-S\s+)?`)
)

func usesSudo(command string) bool {
	return sudoPattern.MatchString(command)
}

// withSudoStdin makes every sudo invocation read its password from stdin.
func withSudoStdin(command string) string {
	return sudoRewritePattern.ReplaceAllString(command, "${1}sudo -S ")
}
