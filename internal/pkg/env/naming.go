package env

import (
	"github.com/iancoleman/strcase"

	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// Prefix of all ENV variables used by the CLI and the daemon.
const Prefix = "X10_"

// StaticRootKey points the web server and the collectstatic operation
// to the directory with the collected static files.
const StaticRootKey = "X10_STATIC_ROOT"

type NamingConvention struct {
	prefix string
}

func NewNamingConvention(prefix string) *NamingConvention {
	return &NamingConvention{prefix: prefix}
}

// FlagToEnv converts a flag name to an ENV variable name,
// for example "static-root" -> "X10_STATIC_ROOT".
func (n *NamingConvention) FlagToEnv(flagName string) string {
	if len(flagName) == 0 {
		panic(errors.New("flag name cannot be empty"))
	}

	return n.prefix + strcase.ToScreamingSnake(flagName)
}

// Files lists the supported dotenv files, the first ones take precedence.
func Files() []string {
	// https://github.com/bkeepers/dotenv#what-other-env-files-can-i-use
	return []string{
		".env.development.local",
		".env.test.local",
		".env.production.local",
		".env.local",
		".env.development",
		".env.test",
		".env.production",
		".env",
	}
}
