package command

import "strings"

// token is one rendered element: a flag (with optional value) or a
// positional argument.
type token struct {
	name  string
	value string
	flag  bool
}

// Command describes one external tool invocation as an ordered token list.
// Tokens appear in the exact order the caller appended them; nothing is
// sorted or deduplicated, so rendered command lines are stable for logs and
// test assertions.
type Command struct {
	// Program is the tool name or path.
	Program string

	tokens []token
}

// New returns a command for the given program.
func New(program string) *Command {
	return &Command{Program: program}
}

// WithFlag appends a flag with a value and returns the command for chaining.
func (c *Command) WithFlag(name, value string) *Command {
	c.tokens = append(c.tokens, token{name: name, value: value, flag: true})

	return c
}

// WithSwitch appends a bare flag without a value.
func (c *Command) WithSwitch(name string) *Command {
	c.tokens = append(c.tokens, token{name: name, flag: true})

	return c
}

// WithArgs appends positional arguments (e.g. a subcommand verb or the
// output path).
func (c *Command) WithArgs(args ...string) *Command {
	for _, arg := range args {
		c.tokens = append(c.tokens, token{name: arg})
	}

	return c
}

// Argv returns the full argument vector, program excluded.
func (c *Command) Argv() []string {
	argv := make([]string, 0, len(c.tokens)*2)

	for _, tok := range c.tokens {
		argv = append(argv, tok.name)
		if tok.flag && tok.value != "" {
			argv = append(argv, tok.value)
		}
	}

	return argv
}

// Render returns the invocation as a single shell-style line with values
// quoted when needed. Identical commands always render identically.
func (c *Command) Render() string {
	var b strings.Builder

	b.WriteString(quote(c.Program))

	for _, tok := range c.Argv() {
		b.WriteByte(' ')
		b.WriteString(quote(tok))
	}

	return b.String()
}

// shellSpecials are characters that force quoting of a rendered token.
const shellSpecials = " \t\n\"'`$&|;<>()[]{}*?#~\\"

// quote wraps a token in single quotes when it contains whitespace or shell
// metacharacters, escaping embedded single quotes the POSIX way.
func quote(s string) string {
	if s == "" {
		return "''"
	}

	if !strings.ContainsAny(s, shellSpecials) {
		return s
	}

	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
