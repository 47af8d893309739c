package parser

import "os"

// AssembleFile reads and assembles a single source file, returning the raw
// source alongside the result so callers can render VM diagnostics against
// the same source lines. There is no preprocessor: this ISA's assembler is a
// single, self-contained pass over one file (spec.md §4.3 names no
// .include/.ifdef directives).
func AssembleFile(filePath string) (*Result, string, error) {
	content, err := os.ReadFile(filePath) // #nosec G304 -- user-provided assembly file path
	if err != nil {
		return nil, "", err
	}
	source := string(content)
	return Assemble(filePath, source), source, nil
}
