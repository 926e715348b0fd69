package highlight

// PythonLexer returns the built-in Python lexer.
func PythonLexer() *Lexer {
	l := NewLexer("python", ".py", ".pyw")

	l.Span(`"""`, `"""`, TokenString, StateTripleDouble)
	l.Span(`'''`, `'''`, TokenString, StateTripleSingle)

	l.Rule(`#.*$`, TokenComment)
	l.Rule(`"(?:[^"\\]|\\.)*"`, TokenString)
	l.Rule(`'(?:[^'\\]|\\.)*'`, TokenString)
	l.Rule(`\b0[xX][0-9a-fA-F]+\b`, TokenNumber)
	l.Rule(`\b\d+\.?\d*(?:[eE][+-]?\d+)?j?\b`, TokenNumber)
	l.Rule(`@\w+`, TokenPreproc)

	l.Keywords(TokenKeyword,
		"if", "elif", "else", "for", "while", "break", "continue",
		"return", "try", "except", "finally", "raise", "with", "as",
		"def", "class", "lambda", "async", "await", "import", "from",
		"global", "nonlocal", "pass", "yield", "assert", "del",
		"in", "is", "not", "and", "or", "match", "case")
	l.Keywords(TokenConstant, "True", "False", "None")
	l.Keywords(TokenTypeName,
		"int", "float", "str", "bool", "list", "dict", "set", "tuple",
		"bytes", "object", "type")
	l.Keywords(TokenBuiltin,
		"print", "len", "range", "enumerate", "zip", "map", "filter",
		"open", "input", "isinstance", "sorted", "reversed", "sum",
		"min", "max", "abs", "round", "all", "any", "repr", "super")

	return l
}

// CLexer returns the built-in C lexer.
func CLexer() *Lexer {
	l := NewLexer("c", ".c", ".h")

	l.Span("/*", "*/", TokenComment, StateBlockComment)

	l.Rule(`//.*$`, TokenComment)
	l.Rule(`^\s*#\s*\w+`, TokenPreproc)
	l.Rule(`"(?:[^"\\]|\\.)*"`, TokenString)
	l.Rule(`'(?:[^'\\]|\\.)'`, TokenString)
	l.Rule(`\b0[xX][0-9a-fA-F]+[uUlL]*\b`, TokenNumber)
	l.Rule(`\b\d+\.?\d*(?:[eE][+-]?\d+)?[fFuUlL]*\b`, TokenNumber)

	l.Keywords(TokenKeyword,
		"if", "else", "for", "while", "do", "switch", "case", "default",
		"break", "continue", "return", "goto", "sizeof", "typedef",
		"struct", "union", "enum", "static", "extern", "const",
		"volatile", "register", "inline", "restrict")
	l.Keywords(TokenTypeName,
		"void", "char", "short", "int", "long", "float", "double",
		"signed", "unsigned", "size_t", "ssize_t", "int8_t", "int16_t",
		"int32_t", "int64_t", "uint8_t", "uint16_t", "uint32_t",
		"uint64_t", "bool", "FILE")
	l.Keywords(TokenConstant, "NULL", "true", "false", "EOF")
	l.Keywords(TokenBuiltin,
		"printf", "fprintf", "sprintf", "snprintf", "scanf", "malloc",
		"calloc", "realloc", "free", "memcpy", "memset", "strlen",
		"strcmp", "strcpy", "fopen", "fclose", "fread", "fwrite", "exit")

	return l
}

// CppLexer returns the built-in C++ lexer.
func CppLexer() *Lexer {
	l := NewLexer("cpp", ".cpp", ".cc", ".cxx", ".hpp")

	l.Span("/*", "*/", TokenComment, StateBlockComment)

	l.Rule(`//.*$`, TokenComment)
	l.Rule(`^\s*#\s*\w+`, TokenPreproc)
	l.Rule(`"(?:[^"\\]|\\.)*"`, TokenString)
	l.Rule(`'(?:[^'\\]|\\.)'`, TokenString)
	l.Rule(`\b0[xX][0-9a-fA-F]+[uUlL]*\b`, TokenNumber)
	l.Rule(`\b\d+\.?\d*(?:[eE][+-]?\d+)?[fFuUlL]*\b`, TokenNumber)

	l.Keywords(TokenKeyword,
		"if", "else", "for", "while", "do", "switch", "case", "default",
		"break", "continue", "return", "goto", "sizeof", "typedef",
		"struct", "union", "enum", "static", "extern", "const",
		"volatile", "inline", "class", "public", "private", "protected",
		"virtual", "override", "final", "new", "delete", "this",
		"namespace", "using", "template", "typename", "try", "catch",
		"throw", "operator", "friend", "explicit", "constexpr", "auto",
		"decltype", "mutable", "noexcept", "static_cast", "dynamic_cast",
		"const_cast", "reinterpret_cast")
	l.Keywords(TokenTypeName,
		"void", "char", "short", "int", "long", "float", "double",
		"signed", "unsigned", "bool", "wchar_t", "size_t", "string",
		"vector", "map", "set", "pair", "array", "deque", "list",
		"unordered_map", "unordered_set", "shared_ptr", "unique_ptr")
	l.Keywords(TokenConstant, "NULL", "nullptr", "true", "false")
	l.Keywords(TokenBuiltin, "cout", "cin", "cerr", "endl", "std")

	return l
}

// JavaLexer returns the built-in Java lexer.
func JavaLexer() *Lexer {
	l := NewLexer("java", ".java")

	l.Span("/*", "*/", TokenComment, StateBlockComment)

	l.Rule(`//.*$`, TokenComment)
	l.Rule(`"(?:[^"\\]|\\.)*"`, TokenString)
	l.Rule(`'(?:[^'\\]|\\.)'`, TokenString)
	l.Rule(`\b0[xX][0-9a-fA-F]+[lL]?\b`, TokenNumber)
	l.Rule(`\b\d+\.?\d*(?:[eE][+-]?\d+)?[fFdDlL]?\b`, TokenNumber)
	l.Rule(`@\w+`, TokenPreproc)

	l.Keywords(TokenKeyword,
		"if", "else", "for", "while", "do", "switch", "case", "default",
		"break", "continue", "return", "try", "catch", "finally",
		"throw", "throws", "class", "interface", "enum", "extends",
		"implements", "new", "this", "super", "public", "private",
		"protected", "static", "final", "abstract", "synchronized",
		"volatile", "transient", "native", "instanceof", "package",
		"import", "assert", "strictfp", "record", "sealed", "permits",
		"var", "yield")
	l.Keywords(TokenTypeName,
		"void", "boolean", "byte", "char", "short", "int", "long",
		"float", "double", "String", "Object", "Integer", "Long",
		"Double", "Boolean", "Character", "List", "Map", "Set",
		"ArrayList", "HashMap", "HashSet", "Optional")
	l.Keywords(TokenConstant, "null", "true", "false")
	l.Keywords(TokenBuiltin, "System", "Math", "Arrays", "Collections", "Objects")

	return l
}
