package player

// ParseArgs splits a string of command-line arguments, respecting quotes.  A quote only closes on the same
// character that opened it, so "it's" inside double quotes is preserved.
func ParseArgs(argsString string) []string {
	var args []string
	var quote rune
	current := ""
	inArg := false

	for _, r := range argsString {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current += string(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, current)
				current = ""
				inArg = false
			}
		default:
			current += string(r)
			inArg = true
		}
	}

	if inArg {
		args = append(args, current)
	}

	return args
}
