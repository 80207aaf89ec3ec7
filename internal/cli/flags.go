package cli

import (
	"codeberg.org/tkimura/transflow/internal/budget"
	"codeberg.org/tkimura/transflow/internal/memory"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile      string
	InputFile    string
	SourceLang   string
	TargetLangs  []string
	OutputDir    string
	PreserveTags bool
	EnglishFirst bool
	Assess       bool
	ShowStats    bool

	// Budget flags
	BudgetJPY float64

	// Memory flags
	MemoryPath string
	MemoryMax  int

	// Glossary flags
	GlossaryFile string

	// Provider model overrides (empty means built-in default)
	GrokModel   string
	GeminiModel string
	ClaudeModel string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		SourceLang:   "ja",
		TargetLangs:  []string{"en"},
		OutputDir:    ".",
		PreserveTags: true,
		BudgetJPY:    budget.DefaultCeilingJPY,
		MemoryMax:    memory.DefaultMaxEntries,
	}
}
