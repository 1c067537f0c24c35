package highlight

// highlightQueries maps grammar names to their capture queries. Capture
// names are the syntax kinds of the theme; KindAt settles overlaps.
var highlightQueries = map[string]string{
	"go": `
(comment) @comment
[(interpreted_string_literal) (raw_string_literal) (rune_literal)] @string
[(int_literal) (float_literal) (imaginary_literal)] @number
[(nil) (true) (false) (iota)] @constant
[
  "break" "case" "chan" "const" "continue" "default" "defer" "else"
  "fallthrough" "for" "func" "go" "goto" "if" "import" "interface"
  "map" "package" "range" "return" "select" "struct" "switch"
  "type" "var"
] @keyword
((identifier) @builtin (#match? @builtin "^(append|cap|close|copy|delete|len|make|new|panic|recover)$"))
[(type_identifier) (package_identifier)] @type
(function_declaration name: (identifier) @function)
(method_declaration name: (field_identifier) @function)
(call_expression function: (identifier) @function)
(call_expression function: (selector_expression field: (field_identifier) @function))
(field_identifier) @field
(parameter_declaration (identifier) @parameter)
(identifier) @variable
["=" ":=" "==" "!=" "<-" "&&" "||" "!"] @operator
["(" ")" "{" "}" "[" "]"] @punctuation
`,
	"yaml": `
(comment) @comment
[(string_scalar) (double_quote_scalar) (single_quote_scalar)] @string
[(integer_scalar) (float_scalar)] @number
[(null_scalar) (boolean_scalar)] @constant
(block_mapping_pair key: (_) @field)
[(anchor_name) (alias_name)] @keyword
(tag) @type
`,
	"toml": `
(comment) @comment
[(string) (local_date) (local_time) (local_date_time) (offset_date_time)] @string
[(integer) (float)] @number
(boolean) @constant
[(bare_key) (quoted_key)] @field
(table (bare_key) @type)
(table (dotted_key) @type)
(table_array_element (bare_key) @type)
`,
	"bash": `
(comment) @comment
[(string) (raw_string) (heredoc_body)] @string
(number) @number
[(variable_name) (special_variable_name)] @variable
(command_name) @function
(function_definition name: (word) @function)
[
  "if" "then" "else" "elif" "fi" "case" "esac" "for" "while" "until"
  "do" "done" "in" "function"
] @keyword
`,
}
