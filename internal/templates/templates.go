package templates

import (
	"embed"
	"fmt"
	"strings"

	"github.com/aymerick/raymond"
)

//go:embed scripts
var Scripts embed.FS

const (
	HiveRouteScript      = "scripts/hive/route.hbs"
	HiveTunnelScript     = "scripts/hive/tunnel.hbs"
	HiveDisconnectScript = "scripts/hive/disconnect.hbs"
	OCMTokenScript       = "scripts/ocm/token.hbs"
	OCMLoginScript       = "scripts/ocm/login.hbs"
	OCMWhoAmIScript      = "scripts/ocm/whoami.hbs"
	OCWhoAmIScript       = "scripts/ocm/oc_whoami.hbs"
	TestEnvScript        = "scripts/env/testenv.hbs"
	OpenURLScript        = "scripts/open/url.hbs"
)

func init() {
	raymond.RegisterHelper("quote", func(value string) raymond.SafeString {
		return raymond.SafeString(ShellQuote(value))
	})
}

// ShellQuote quotes s for POSIX shells. Plain words are left untouched.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}

	if strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("@%+=:,./-_", r))
	}) < 0 {
		return s
	}

	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// Render executes the handlebars template at path with ctx.
func Render(path string, ctx map[string]interface{}) (string, error) {
	source, err := Scripts.ReadFile(path)

	if err != nil {
		return "", err
	}

	if ctx == nil {
		ctx = map[string]interface{}{}
	}

	tpl, err := raymond.Parse(string(source))

	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", path, err)
	}

	out, err := tpl.Exec(ctx)

	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", path, err)
	}

	return out, nil
}
