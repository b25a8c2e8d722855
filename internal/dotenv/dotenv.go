package dotenv

import (
	"regexp"
	"slices"
	"strings"

	"cf-pages-cli/internal/envvars"
)

// bareValue matches values safe to emit without quoting.
var bareValue = regexp.MustCompile(`^[A-Za-z0-9_./:@+-]*$`)

// quoteEscaper prepares a value for the double-quoted form. $ must be
// escaped because dotenv parsers expand $NAME inside double quotes.
var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "\n", `\n`, "\r", `\r`)

// Render converts one environment of a variables document into dotenv
// format: one KEY=VALUE line per variable, keys sorted. With namesOnly every
// value is dropped and rendered as an empty quoted string, which is useful
// for committing a variable manifest without its secrets.
func Render(doc *envvars.Document, env envvars.Environment, namesOnly bool) (string, error) {
	vars := doc.Vars(env)
	if vars == nil {
		return "", &envvars.EnvironmentUnavailableError{Environment: env}
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		if namesOnly {
			b.WriteString(`=""`)
		} else {
			b.WriteByte('=')
			b.WriteString(renderValue(vars[name]))
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// renderValue picks the simplest form a dotenv parser reads back verbatim:
// bare where possible, single quotes (fully literal) for most of the rest,
// double quotes with backslash escapes for values single quotes cannot hold
// (an embedded single quote, a line break, or a trailing backslash, which
// dotenv parsers read as an escaped closing quote).
func renderValue(value string) string {
	if bareValue.MatchString(value) {
		return value
	}
	if !strings.ContainsAny(value, "'\n\r") && !strings.HasSuffix(value, `\`) {
		return "'" + value + "'"
	}
	return `"` + quoteEscaper.Replace(value) + `"`
}
