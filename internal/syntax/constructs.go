package syntax

import (
	"cmp"
	"slices"

	"escheck/internal/ecma"
)

// Construct is a piece of syntax gated on the edition that introduced it.
type Construct struct {
	Name  string
	Since ecma.Version
}

var (
	ArrowFunction        = Construct{"arrow function", ecma.ES2015}
	Class                = Construct{"class", ecma.ES2015}
	TemplateLiteral      = Construct{"template literal", ecma.ES2015}
	LetConst             = Construct{"let/const declaration", ecma.ES2015}
	SpreadElement        = Construct{"spread element", ecma.ES2015}
	RestElement          = Construct{"rest element", ecma.ES2015}
	Destructuring        = Construct{"destructuring", ecma.ES2015}
	ForOf                = Construct{"for...of loop", ecma.ES2015}
	Generator            = Construct{"generator", ecma.ES2015}
	ShorthandMethod      = Construct{"shorthand method", ecma.ES2015}
	ShorthandProperty    = Construct{"shorthand property", ecma.ES2015}
	ComputedProperty     = Construct{"computed property name", ecma.ES2015}
	ModuleSyntax         = Construct{"import/export declaration", ecma.ES2015}
	NewTarget            = Construct{"new.target", ecma.ES2015}
	DefaultValue         = Construct{"default value", ecma.ES2015}
	BinaryOctalLiteral   = Construct{"binary/octal literal", ecma.ES2015}
	CodePointEscape      = Construct{"unicode code point escape", ecma.ES2015}
	RegexpUnicodeSticky  = Construct{"regexp u/y flag", ecma.ES2015}
	Exponentiation       = Construct{"exponentiation operator", ecma.ES2016}
	AsyncFunction        = Construct{"async function", ecma.ES2017}
	TrailingCommaParams  = Construct{"trailing comma in parameter list", ecma.ES2017}
	TrailingCommaArgs    = Construct{"trailing comma in argument list", ecma.ES2017}
	AsyncGenerator       = Construct{"async generator", ecma.ES2018}
	ForAwait             = Construct{"for await...of loop", ecma.ES2018}
	ObjectSpread         = Construct{"object spread", ecma.ES2018}
	ObjectRest           = Construct{"object rest", ecma.ES2018}
	RegexpDotAll         = Construct{"regexp s flag", ecma.ES2018}
	RegexpLookbehind     = Construct{"regexp lookbehind", ecma.ES2018}
	RegexpNamedGroup     = Construct{"regexp named capture group", ecma.ES2018}
	RegexpPropertyEscape = Construct{"regexp unicode property escape", ecma.ES2018}
	OptionalCatchBinding = Construct{"optional catch binding", ecma.ES2019}
	OptionalChaining     = Construct{"optional chaining", ecma.ES2020}
	NullishCoalescing    = Construct{"nullish coalescing", ecma.ES2020}
	BigIntLiteral        = Construct{"BigInt literal", ecma.ES2020}
	DynamicImport        = Construct{"dynamic import", ecma.ES2020}
	ImportMeta           = Construct{"import.meta", ecma.ES2020}
	ExportStarAs         = Construct{"export * as namespace", ecma.ES2020}
	LogicalAssignment    = Construct{"logical assignment", ecma.ES2021}
	NumericSeparator     = Construct{"numeric separator", ecma.ES2021}
	ClassField           = Construct{"class field", ecma.ES2022}
	PrivateMember        = Construct{"private class member", ecma.ES2022}
	ClassStaticBlock     = Construct{"class static block", ecma.ES2022}
	TopLevelAwait        = Construct{"top-level await", ecma.ES2022}
	StringModuleName     = Construct{"string module export name", ecma.ES2022}
	RegexpIndices        = Construct{"regexp d flag", ecma.ES2022}
	Hashbang             = Construct{"hashbang", ecma.ES2023}
	RegexpUnicodeSets    = Construct{"regexp v flag", ecma.ES2024}
)

var constructs = []Construct{
	ArrowFunction, Class, TemplateLiteral, LetConst, SpreadElement, RestElement,
	Destructuring, ForOf, Generator, ShorthandMethod, ShorthandProperty,
	ComputedProperty, ModuleSyntax, NewTarget, DefaultValue, BinaryOctalLiteral,
	CodePointEscape, RegexpUnicodeSticky, Exponentiation, AsyncFunction,
	TrailingCommaParams, TrailingCommaArgs, AsyncGenerator, ForAwait, ObjectSpread,
	ObjectRest, RegexpDotAll, RegexpLookbehind, RegexpNamedGroup,
	RegexpPropertyEscape, OptionalCatchBinding, OptionalChaining,
	NullishCoalescing, BigIntLiteral, DynamicImport, ImportMeta, ExportStarAs,
	LogicalAssignment, NumericSeparator, ClassField, PrivateMember,
	ClassStaticBlock, TopLevelAwait, StringModuleName, RegexpIndices, Hashbang,
	RegexpUnicodeSets,
}

// Constructs returns every gated construct ordered by edition, then name.
func Constructs() []Construct {
	out := slices.Clone(constructs)
	slices.SortStableFunc(out, func(a, b Construct) int {
		if c := cmp.Compare(a.Since, b.Since); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Unsupported lists the constructs a grammar version rejects.
func Unsupported(v ecma.Version) []Construct {
	var out []Construct
	for _, c := range Constructs() {
		if c.Since > v {
			out = append(out, c)
		}
	}
	return out
}
