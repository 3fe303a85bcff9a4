package syntax

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// scope is the walker state detection depends on.
type scope struct {
	functions int
}

var functionTypes = map[string]bool{
	"function":                       true,
	"function_expression":            true,
	"function_declaration":           true,
	"generator_function":             true,
	"generator_function_declaration": true,
	"arrow_function":                 true,
	"method_definition":              true,
	"class_static_block":             true,
}

// detect returns the newest construct node n itself introduces. Constructs
// of descendants are found when the walk reaches them.
func detect(n *sitter.Node, parent string, src []byte, sc scope) (Construct, bool) {
	var best Construct
	found := false
	use := func(c Construct) {
		if !found || c.Since > best.Since {
			best, found = c, true
		}
	}

	switch n.Type() {
	case "arrow_function":
		use(ArrowFunction)
		if hasToken(n, "async") {
			use(AsyncFunction)
		}
	case "class", "class_declaration":
		use(Class)
	case "template_string":
		use(TemplateLiteral)
	case "lexical_declaration":
		use(LetConst)
	case "spread_element":
		if parent == "object" {
			use(ObjectSpread)
		} else {
			use(SpreadElement)
		}
	case "rest_pattern":
		if parent == "object_pattern" {
			use(ObjectRest)
		} else {
			use(RestElement)
		}
	case "object_pattern", "array_pattern":
		use(Destructuring)
	case "for_in_statement":
		if hasToken(n, "let") || hasToken(n, "const") {
			use(LetConst)
		}
		if hasToken(n, "of") {
			use(ForOf)
		}
		if hasToken(n, "await") {
			use(ForAwait)
		}
	case "generator_function", "generator_function_declaration":
		use(Generator)
		if hasToken(n, "async") {
			use(AsyncGenerator)
		}
	case "function", "function_expression", "function_declaration":
		if hasToken(n, "async") {
			use(AsyncFunction)
		}
	case "method_definition":
		async, star := hasToken(n, "async"), hasToken(n, "*")
		switch {
		case async && star:
			use(AsyncGenerator)
		case async:
			use(AsyncFunction)
		case star:
			use(Generator)
		case parent == "object" && !hasToken(n, "get") && !hasToken(n, "set"):
			use(ShorthandMethod)
		}
	case "shorthand_property_identifier":
		use(ShorthandProperty)
	case "computed_property_name":
		use(ComputedProperty)
	case "import_statement":
		use(ModuleSyntax)
	case "export_statement":
		use(ModuleSyntax)
		// older grammars inline the namespace export into the statement
		if hasToken(n, "*") && hasToken(n, "as") {
			use(ExportStarAs)
		}
	case "namespace_export":
		use(ExportStarAs)
	case "string":
		switch parent {
		case "export_specifier", "import_specifier", "namespace_export":
			use(StringModuleName)
		}
	case "meta_property":
		switch strings.Join(strings.Fields(n.Content(src)), "") {
		case "new.target":
			use(NewTarget)
		case "import.meta":
			use(ImportMeta)
		}
	case "assignment_pattern":
		use(DefaultValue)
	case "number":
		detectNumber(strings.ToLower(n.Content(src)), use)
	case "escape_sequence":
		if strings.HasPrefix(n.Content(src), `\u{`) {
			use(CodePointEscape)
		}
	case "regex":
		detectRegex(n, src, use)
	case "binary_expression":
		switch operator(n) {
		case "**":
			use(Exponentiation)
		case "??":
			use(NullishCoalescing)
		}
	case "augmented_assignment_expression":
		switch operator(n) {
		case "**=":
			use(Exponentiation)
		case "&&=", "||=", "??=":
			use(LogicalAssignment)
		}
	case "await_expression":
		if sc.functions == 0 {
			use(TopLevelAwait)
		}
	case "formal_parameters":
		if trailingComma(n) {
			use(TrailingCommaParams)
		}
	case "arguments":
		if trailingComma(n) {
			use(TrailingCommaArgs)
		}
	case "catch_clause":
		if n.ChildByFieldName("parameter") == nil {
			use(OptionalCatchBinding)
		}
	case "optional_chain", "?.":
		use(OptionalChaining)
	case "call_expression":
		if fn := n.ChildByFieldName("function"); fn != nil && fn.Type() == "import" {
			use(DynamicImport)
		}
	case "field_definition":
		use(ClassField)
	case "private_property_identifier":
		use(PrivateMember)
	case "class_static_block":
		use(ClassStaticBlock)
	case "hash_bang_line":
		use(Hashbang)
	}
	return best, found
}

func detectNumber(lit string, use func(Construct)) {
	if strings.HasPrefix(lit, "0b") || strings.HasPrefix(lit, "0o") {
		use(BinaryOctalLiteral)
	}
	if strings.HasSuffix(lit, "n") {
		use(BigIntLiteral)
	}
	if strings.Contains(lit, "_") {
		use(NumericSeparator)
	}
}

func detectRegex(n *sitter.Node, src []byte, use func(Construct)) {
	var pattern, flags string
	if p := n.ChildByFieldName("pattern"); p != nil {
		pattern = p.Content(src)
	}
	if f := n.ChildByFieldName("flags"); f != nil {
		flags = f.Content(src)
	}
	if strings.ContainsAny(flags, "uy") {
		use(RegexpUnicodeSticky)
	}
	if strings.Contains(flags, "s") {
		use(RegexpDotAll)
	}
	if strings.Contains(flags, "d") {
		use(RegexpIndices)
	}
	if strings.Contains(flags, "v") {
		use(RegexpUnicodeSets)
	}
	if strings.Contains(pattern, "(?<=") || strings.Contains(pattern, "(?<!") {
		use(RegexpLookbehind)
	}
	if namedGroup(pattern) || strings.Contains(pattern, `\k<`) {
		use(RegexpNamedGroup)
	}
	if strings.ContainsAny(flags, "uv") && (strings.Contains(pattern, `\p{`) || strings.Contains(pattern, `\P{`)) {
		use(RegexpPropertyEscape)
	}
}

// namedGroup finds "(?<name" that is not a lookbehind.
func namedGroup(pattern string) bool {
	for rest := pattern; ; {
		i := strings.Index(rest, "(?<")
		if i < 0 || i+3 >= len(rest) {
			return false
		}
		if c := rest[i+3]; c != '=' && c != '!' {
			return true
		}
		rest = rest[i+3:]
	}
}

func hasToken(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && !c.IsNamed() && c.Type() == typ {
			return true
		}
	}
	return false
}

func operator(n *sitter.Node) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return op.Type()
	}
	return ""
}

// trailingComma reports a "," right before the closing parenthesis.
func trailingComma(n *sitter.Node) bool {
	count := int(n.ChildCount())
	if count < 3 {
		return false
	}
	last, prev := n.Child(count-1), n.Child(count-2)
	return last != nil && prev != nil && last.Type() == ")" && prev.Type() == ","
}
